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

package runner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

var (
	// ErrAnticipatedFailure marks a failure response a case expected and
	// asserted on.
	ErrAnticipatedFailure = errors.New("anticipated failure asserted")

	// ErrNoResponse marks a case whose request got no response at all.
	ErrNoResponse = errors.New("no response received")

	// ErrInvalidCase is raised for a case that cannot be executed.
	ErrInvalidCase = errors.New("invalid case")
)

// AnticipatedFailure wraps err to record that the case expected it.
func AnticipatedFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrAnticipatedFailure, err)
}

// NoResponse wraps err to record that the service never answered.
func NoResponse(err error) error {
	return fmt.Errorf("%w: %w", ErrNoResponse, err)
}

// Outcome is the terminal state of a case.
type Outcome int

const (
	// Passed means the case got the response it wanted.
	Passed Outcome = iota
	// ExpectedFailure means the case asserted an anticipated error response.
	ExpectedFailure
	// TransportError means the request got no response.
	TransportError
	// Failed means an assertion or an unexpected error failed the case.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case ExpectedFailure:
		return "expected-failure"
	case TransportError:
		return "transport-error"
	case Failed:
		return "failed"
	}

	return fmt.Sprintf("outcome(%d)", int(o))
}

// TransportPolicy decides how TransportError outcomes affect a run.
type TransportPolicy int

const (
	// TolerateTransport reports transport errors without failing the run.
	TolerateTransport TransportPolicy = iota
	// FailOnTransport treats transport errors as failures.
	FailOnTransport
)

// Result is the outcome of one case.
type Result struct {
	Group    string
	Case     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// FullName joins the group and case names.
func (r Result) FullName() string {
	return r.Group + " " + r.Case
}

// Fails reports whether the result fails a run under policy.
func (r Result) Fails(policy TransportPolicy) bool {
	return r.Outcome == Failed || (r.Outcome == TransportError && policy == FailOnTransport)
}

// Report collects the results of a run in execution order.
type Report struct {
	Policy  TransportPolicy
	Results []Result
}

// Count returns the number of results with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0

	for _, result := range r.Results {
		if result.Outcome == o {
			n++
		}
	}

	return n
}

// Find returns the result of the named case.
func (r *Report) Find(group, name string) (Result, bool) {
	for _, result := range r.Results {
		if result.Group == group && result.Case == name {
			return result, true
		}
	}

	return Result{}, false
}

// Err aggregates every result that fails the run, or returns nil.
func (r *Report) Err() error {
	var errs []error

	for _, result := range r.Results {
		if !result.Fails(r.Policy) {
			continue
		}

		errs = append(errs, fmt.Errorf("%s: %w", result.FullName(), result.Err))
	}

	return utilerrors.NewAggregate(errs)
}

// Summary renders one line per outcome class followed by every case that
// did not pass.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d cases: %d passed, %d expected failures, %d transport errors, %d failed\n",
		len(r.Results), r.Count(Passed), r.Count(ExpectedFailure), r.Count(TransportError), r.Count(Failed))

	for _, result := range r.Results {
		if result.Outcome == TransportError || result.Outcome == Failed {
			fmt.Fprintf(&b, "  [%s] %s: %v\n", result.Outcome, result.FullName(), result.Err)
		}
	}

	return b.String()
}
