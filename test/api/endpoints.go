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
	"net/url"
	"strconv"

	"github.com/oapi-codegen/runtime"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

func (e *Endpoints) Login() string {
	return "/user/login"
}

func (e *Endpoints) ListUsers(limit int) string {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	return "/user/list?" + query.Encode()
}

func (e *Endpoints) CreateUser() string {
	return "/user/create"
}

func (e *Endpoints) SearchUser(id string) (string, error) {
	param, err := pathParam("id", id)
	if err != nil {
		return "", err
	}

	return "/user/search/id/" + param, nil
}

func (e *Endpoints) DeleteUser(id string) (string, error) {
	param, err := pathParam("id", id)
	if err != nil {
		return "", err
	}

	return "/user/delete/" + param, nil
}

// pathParam encodes a simple style path parameter.
func pathParam(name, value string) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", fmt.Errorf("encoding path parameter %s: %w", name, err)
	}

	return param, nil
}
