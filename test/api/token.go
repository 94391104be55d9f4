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
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotJWT is raised when a bearer token is not a JSON Web Token.
	ErrNotJWT = errors.New("token is not a JWT")
)

// TokenInfo describes a bearer token as far as can be known without the
// signing key.
type TokenInfo struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt *time.Time
}

// Expired reports whether the token has an expiry that has passed.
func (t *TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// InspectToken decodes the claims of a bearer token without verifying its
// signature. It is only used for diagnostics.
func InspectToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJWT, err)
	}

	info := &TokenInfo{}

	if subject, err := claims.GetSubject(); err == nil {
		info.Subject = subject
	}

	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
		info.ExpiresAt = &expiry.Time
	}

	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}

	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}

	return info, nil
}
