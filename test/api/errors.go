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
)

var (
	// ErrMalformedResponse is raised when a response cannot be interpreted.
	ErrMalformedResponse = errors.New("malformed response")
)

// ResponseError is returned for any non-2xx response. It carries the
// response so callers can assert on an anticipated failure.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
	TraceID    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected status code: %s %s returned %d, message: %q (trace ID: %s)", e.Method, e.Path, e.StatusCode, e.Message, e.TraceID)
}

// TransportError is returned when no response was received at all, for
// example on connection refused or a client timeout.
type TransportError struct {
	Method  string
	Path    string
	TraceID string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("http request failed: %s %s (trace ID: %s): %v", e.Method, e.Path, e.TraceID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err means no response was received.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// AsResponseError returns the ResponseError in err's chain, if any.
func AsResponseError(err error) (*ResponseError, bool) {
	var target *ResponseError
	if errors.As(err, &target) {
		return target, true
	}

	return nil, false
}
