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

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
)

const (
	// SecretKeyHeader authorizes privileged operations (create and delete).
	SecretKeyHeader = "X-Auth-Secret-Key"
)

// Auth carries the credentials presented with a request.
type Auth struct {
	Token     string
	SecretKey string
}

type APIClient struct {
	baseURL   string
	client    Doer
	config    *TestConfig
	endpoints *Endpoints
	schema    *Schema
	logger    logr.Logger
}

// Option customises an APIClient.
type Option func(*APIClient)

// WithDoer replaces the HTTP client used to send requests.
func WithDoer(doer Doer) Option {
	return func(c *APIClient) {
		c.client = doer
	}
}

// WithLogger replaces the default Ginkgo logger.
func WithLogger(logger logr.Logger) Option {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithSchema validates every response against schema.
func WithSchema(schema *Schema) Option {
	return func(c *APIClient) {
		c.schema = schema
	}
}

// NewAPIClient creates a client for baseURL, falling back to the configured
// base URL when it is empty. When VALIDATE_RESPONSES is set and no schema is
// provided, the embedded OpenAPI document is loaded.
func NewAPIClient(ctx context.Context, config *TestConfig, baseURL string, options ...Option) (*APIClient, error) {
	if baseURL == "" {
		baseURL = config.BaseURL
	}

	c := &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config:    config,
		endpoints: NewEndpoints(),
		logger:    ginkgo.GinkgoLogr,
	}

	for _, o := range options {
		o(c)
	}

	if config.ValidateResponses && c.schema == nil {
		schema, err := LoadSchema(ctx, c.baseURL)
		if err != nil {
			return nil, err
		}

		c.schema = schema
	}

	return c, nil
}

// NewAPIClientWithConfig creates a client for the configured base URL.
func NewAPIClientWithConfig(ctx context.Context, config *TestConfig, options ...Option) (*APIClient, error) {
	return NewAPIClient(ctx, config, config.BaseURL, options...)
}

// BaseURL returns the service root requests are sent to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// logTraceContext logs the trace context information.
func (c *APIClient) logTraceContext(traceParent string) {
	c.logger.Info("TRACE CONTEXT: use the trace ID to search service logs for this request", "traceID", extractTraceID(traceParent))
}

// generateTraceID creates a new W3C trace ID.
// Every request gets its own so a failure can be found in the service logs.
func generateTraceID() string {
	id := uuid.New()

	return hex.EncodeToString(id[:])
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	id := uuid.New()

	return hex.EncodeToString(id[:8])
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// exchange is a completed request/response pair.
type exchange struct {
	statusCode int
	body       []byte
	traceID    string
}

// doRequest sends a request and reads the whole response. A request that
// gets no response yields a TransportError; a non-2xx response yields a
// ResponseError.
//
//nolint:cyclop // test code complexity is acceptable
func (c *APIClient) doRequest(ctx context.Context, method, path string, body any, auth Auth) (*exchange, error) {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	traceID := extractTraceID(traceParent)

	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")
	req.Header.Set("Content-Type", "application/json")

	if auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}

	if auth.SecretKey != "" {
		req.Header.Set(SecretKeyHeader, auth.SecretKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error(err, "http request failed", "method", method, "path", path, "duration", duration, "traceparent", traceParent)
		c.logTraceContext(traceParent)

		return nil, &TransportError{Method: method, Path: path, TraceID: traceID, Err: err}
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error(err, "reading response body", "method", method, "path", path, "duration", duration, "status", resp.StatusCode, "traceparent", traceParent)
		c.logTraceContext(traceParent)

		return nil, &TransportError{Method: method, Path: path, TraceID: traceID, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if c.config.LogRequests {
		c.logger.Info("request complete", "method", method, "path", path, "status", resp.StatusCode, "duration", duration, "traceparent", traceParent)
	} else {
		c.logger.V(1).Info("request complete", "method", method, "path", path, "status", resp.StatusCode, "duration", duration)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		c.logger.Info("response body", "method", method, "path", path, "body", string(respBody))
	}

	if c.schema != nil {
		if err := c.schema.ValidateResponse(ctx, req, resp.StatusCode, resp.Header, respBody); err != nil {
			c.logTraceContext(traceParent)
			return nil, err
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var message MessageResponse

		// The body may not be JSON at all, the status is what matters then.
		_ = json.Unmarshal(respBody, &message)

		c.logger.Info("UNEXPECTED STATUS", "method", method, "path", path, "status", resp.StatusCode, "body", string(respBody), "traceparent", traceParent)

		return nil, &ResponseError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    message.Message,
			Body:       respBody,
			TraceID:    traceID,
		}
	}

	return &exchange{
		statusCode: resp.StatusCode,
		body:       respBody,
		traceID:    traceID,
	}, nil
}

// decodeResult unmarshals a successful exchange into T.
func decodeResult[T any](ex *exchange) (*Result[T], error) {
	result := &Result[T]{
		StatusCode: ex.statusCode,
		TraceID:    ex.traceID,
	}

	if err := json.Unmarshal(ex.body, &result.Body); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response (trace ID: %s): %w", ErrMalformedResponse, ex.traceID, err)
	}

	var message MessageResponse
	if err := json.Unmarshal(ex.body, &message); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling message (trace ID: %s): %w", ErrMalformedResponse, ex.traceID, err)
	}

	result.Message = message.Message

	return result, nil
}

// Login exchanges credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, credentials Credentials) (*Result[LoginResponse], error) {
	ex, err := c.doRequest(ctx, http.MethodPost, c.endpoints.Login(), credentials, Auth{})
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	return decodeResult[LoginResponse](ex)
}

// ListUsers returns up to limit users.
func (c *APIClient) ListUsers(ctx context.Context, auth Auth, limit int) (*Result[UserListResponse], error) {
	ex, err := c.doRequest(ctx, http.MethodGet, c.endpoints.ListUsers(limit), nil, Auth{Token: auth.Token})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return decodeResult[UserListResponse](ex)
}

// CreateUser creates a user. This is a privileged operation.
func (c *APIClient) CreateUser(ctx context.Context, auth Auth, payload CreateUserRequest) (*Result[UserResponse], error) {
	ex, err := c.doRequest(ctx, http.MethodPost, c.endpoints.CreateUser(), payload, auth)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return decodeResult[UserResponse](ex)
}

// SearchUser looks a user up by id.
func (c *APIClient) SearchUser(ctx context.Context, auth Auth, id string) (*Result[UserResponse], error) {
	path, err := c.endpoints.SearchUser(id)
	if err != nil {
		return nil, err
	}

	ex, err := c.doRequest(ctx, http.MethodGet, path, nil, Auth{Token: auth.Token})
	if err != nil {
		return nil, fmt.Errorf("searching user %s: %w", id, err)
	}

	return decodeResult[UserResponse](ex)
}

// DeleteUser deletes a user by id. This is a privileged operation.
func (c *APIClient) DeleteUser(ctx context.Context, auth Auth, id string) (*Result[MessageResponse], error) {
	path, err := c.endpoints.DeleteUser(id)
	if err != nil {
		return nil, err
	}

	ex, err := c.doRequest(ctx, http.MethodDelete, path, nil, auth)
	if err != nil {
		return nil, fmt.Errorf("deleting user %s: %w", id, err)
	}

	return decodeResult[MessageResponse](ex)
}
