/*
Copyright 2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
)

const (
	// phonePrefix is the operator prefix used for generated phone numbers.
	phonePrefix = "015025"
	defaultNID  = "123456789"
)

// UserPayloadBuilder builds create user payloads for testing.
type UserPayloadBuilder struct {
	payload CreateUserRequest
}

// NewUserPayload creates a builder for a merchant with a unique name, email
// and phone number.
func NewUserPayload(config *TestConfig) *UserPayloadBuilder {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]

	return &UserPayloadBuilder{
		payload: CreateUserRequest{
			Name:        fmt.Sprintf("Test user %s", suffix),
			Email:       types.Email(fmt.Sprintf("testautomation-%s@example.com", suffix)),
			Password:    config.Password,
			PhoneNumber: GeneratePhoneNumber(),
			NID:         defaultNID,
			Role:        RoleMerchant,
		},
	}
}

func (b *UserPayloadBuilder) WithName(name string) *UserPayloadBuilder {
	b.payload.Name = name
	return b
}

func (b *UserPayloadBuilder) WithEmail(email string) *UserPayloadBuilder {
	b.payload.Email = types.Email(email)
	return b
}

func (b *UserPayloadBuilder) WithPassword(password string) *UserPayloadBuilder {
	b.payload.Password = password
	return b
}

func (b *UserPayloadBuilder) WithPhoneNumber(phoneNumber string) *UserPayloadBuilder {
	b.payload.PhoneNumber = phoneNumber
	return b
}

func (b *UserPayloadBuilder) WithRole(role string) *UserPayloadBuilder {
	b.payload.Role = role
	return b
}

// Build returns the completed payload.
func (b *UserPayloadBuilder) Build() CreateUserRequest {
	return b.payload
}

// NewCredentials returns a login body.
func NewCredentials(email, password string) Credentials {
	return Credentials{
		Email:    email,
		Password: password,
	}
}

// GeneratePhoneNumber returns the operator prefix followed by five random digits.
func GeneratePhoneNumber() string {
	//nolint:gosec // test data, not security sensitive
	return fmt.Sprintf("%s%05d", phonePrefix, 10000+rand.IntN(90000))
}
