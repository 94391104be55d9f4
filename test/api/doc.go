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

// Package api provides integration test utilities for the Dmoney user
// management API.
//
// # Separate Client Implementation
//
// The user service publishes no client library, so this package carries a
// hand-written HTTP client (APIClient). Keeping it independent of the service
// code means the suite checks the wire contract as a consumer sees it:
//   - W3C trace context propagation for request correlation
//   - Detailed error logging with trace IDs for debugging
//   - Non-2xx responses surfaced as ResponseError with the decoded message
//   - Network failures surfaced as TransportError, with no response attached
//   - Optional validation of every response against an embedded OpenAPI document
//
// # Run State
//
// Values produced by one case and consumed by a later one (the bearer token,
// the id of the user created by the run) live in an EnvStore. Users created
// by the run are recorded in a FixtureStore, a JSON array on disk that is
// rewritten after every append.
package api
