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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oapi-codegen/runtime/types"
)

// Roles accepted by the user service.
const (
	RoleAdmin    = "Admin"
	RoleAgent    = "Agent"
	RoleCustomer = "Customer"
	RoleMerchant = "merchant"
)

// UserID identifies a user. The service emits ids as JSON numbers, but they
// are only ever used as path segments so they are held as strings.
type UserID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding user id: %w", err)
		}

		*id = UserID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding user id: %w", err)
	}

	*id = UserID(n.String())

	return nil
}

func (id UserID) String() string {
	return string(id)
}

// User is a user as returned by the service.
type User struct {
	ID          UserID `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	NID         string `json:"nid,omitempty"`
	Role        string `json:"role"`
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest is the body of a create request.
type CreateUserRequest struct {
	Name        string      `json:"name"`
	Email       types.Email `json:"email"`
	Password    string      `json:"password"`
	PhoneNumber string      `json:"phone_number"`
	NID         string      `json:"nid"`
	Role        string      `json:"role"`
}

// MessageResponse is the envelope common to every response.
type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role,omitempty"`
}

type UserListResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	Users   []User `json:"users"`
}

// UserResponse is returned by create and search. The user object is kept
// verbatim so it can be recorded as a fixture exactly as the service sent it.
type UserResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user,omitempty"`
}

// DecodeUser decodes the embedded user object.
func (r *UserResponse) DecodeUser() (*User, error) {
	if len(r.User) == 0 {
		return nil, fmt.Errorf("%w: response carries no user", ErrMalformedResponse)
	}

	var user User
	if err := json.Unmarshal(r.User, &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	return &user, nil
}

// Result is a successful (2xx) response.
type Result[T any] struct {
	StatusCode int
	// Message is the top level "message" field, present on every response.
	Message string
	TraceID string
	Body    T
}
