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

// Package runner sequences groups of API test cases.
//
// Cases run strictly one at a time in declaration order, because later
// cases consume state produced by earlier ones. After every case an
// AfterEach hook runs and a Pacer decides when the next case may start.
// A case that fails is recorded and the run carries on.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/onsi/gomega"
)

// Action performs one case against the state of the run. It asserts with g;
// a failed assertion aborts the action and marks the case as failed.
type Action[S any] func(ctx context.Context, g gomega.Gomega, state S) error

// Case is one request-plus-assertion scenario.
type Case[S any] struct {
	Name   string
	Action Action[S]
}

// Group is a named, ordered list of cases.
type Group[S any] struct {
	Name  string
	Cases []Case[S]
}

// Hooks run at fixed points of a run. Any of them may be nil.
type Hooks[S any] struct {
	// OnStart runs once before the first case. An error aborts the run.
	OnStart func(ctx context.Context, state S) error
	// AfterEach runs after every case, before pacing.
	AfterEach func(ctx context.Context, state S, result Result)
	// OnFinish runs once after the last case.
	OnFinish func(ctx context.Context, state S, report *Report)
}

// Options configure a Sequencer.
type Options struct {
	// Pacer delays the start of the next case. Defaults to DefaultInterval.
	Pacer Pacer
	// TransportPolicy decides whether cases that got no response fail the run.
	TransportPolicy TransportPolicy
	Logger          logr.Logger
}

// Sequencer runs groups of cases in order. A Sequencer drives one run at a
// time; it must not be shared between concurrent runs.
type Sequencer[S any] struct {
	groups  []Group[S]
	hooks   Hooks[S]
	pacer   Pacer
	policy  TransportPolicy
	logger  logr.Logger
	report  *Report
	started bool
}

// New creates a Sequencer over groups.
func New[S any](groups []Group[S], hooks Hooks[S], options Options) *Sequencer[S] {
	pacer := options.Pacer
	if pacer == nil {
		pacer = Interval(DefaultInterval)
	}

	logger := options.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Sequencer[S]{
		groups: groups,
		hooks:  hooks,
		pacer:  pacer,
		policy: options.TransportPolicy,
		logger: logger,
	}
}

// Groups returns the groups in run order.
func (s *Sequencer[S]) Groups() []Group[S] {
	return s.groups
}

// Run executes every case of every group, then returns the report. The
// error is non-nil only if the run could not complete, i.e. OnStart failed
// or ctx was cancelled; case failures are reported through Report.Err.
func (s *Sequencer[S]) Run(ctx context.Context, state S) (*Report, error) {
	if err := s.Start(ctx, state); err != nil {
		return nil, err
	}

	for _, group := range s.groups {
		for _, c := range group.Cases {
			result := s.RunCase(ctx, group.Name, c, state)

			if err := s.After(ctx, state, result); err != nil {
				return s.report, err
			}
		}
	}

	return s.Finish(ctx, state), nil
}

// Start begins a run and invokes the OnStart hook.
func (s *Sequencer[S]) Start(ctx context.Context, state S) error {
	s.report = &Report{
		Policy: s.policy,
	}
	s.started = true

	if r, ok := s.pacer.(resetter); ok {
		r.reset()
	}

	if s.hooks.OnStart != nil {
		if err := s.hooks.OnStart(ctx, state); err != nil {
			return fmt.Errorf("starting run: %w", err)
		}
	}

	return nil
}

// RunCase executes a single case and records its result.
func (s *Sequencer[S]) RunCase(ctx context.Context, group string, c Case[S], state S) Result {
	if !s.started {
		s.report = &Report{
			Policy: s.policy,
		}
		s.started = true
	}

	result := Result{
		Group: group,
		Case:  c.Name,
	}

	start := time.Now()
	err := execute(ctx, c, state)
	result.Duration = time.Since(start)
	result.Outcome = classify(err)
	result.Err = err

	s.report.Results = append(s.report.Results, result)

	log := s.logger.WithValues("group", group, "case", c.Name, "outcome", result.Outcome.String(), "duration", result.Duration)

	switch result.Outcome {
	case Failed:
		log.Error(err, "case failed")
	case TransportError:
		log.Info("case got no response from the service", "error", err.Error())
	default:
		log.Info("case complete")
	}

	return result
}

// After invokes the AfterEach hook for result, then waits on the Pacer.
func (s *Sequencer[S]) After(ctx context.Context, state S, result Result) error {
	if s.hooks.AfterEach != nil {
		s.hooks.AfterEach(ctx, state, result)
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("pacing after %s: %w", result.FullName(), err)
	}

	return nil
}

// Finish invokes the OnFinish hook and returns the report for the run.
func (s *Sequencer[S]) Finish(ctx context.Context, state S) *Report {
	report := s.report
	if report == nil {
		report = &Report{
			Policy: s.policy,
		}
	}

	if s.hooks.OnFinish != nil {
		s.hooks.OnFinish(ctx, state, report)
	}

	s.started = false

	return report
}

// assertionFailure carries a failed gomega assertion out of an action.
type assertionFailure struct {
	message string
}

func (f *assertionFailure) Error() string {
	return f.message
}

// execute runs the action with a Gomega that aborts it on the first failed
// assertion.
func execute[S any](ctx context.Context, c Case[S], state S) (err error) {
	defer func() {
		if r := recover(); r != nil {
			failure, ok := r.(*assertionFailure)
			if !ok {
				panic(r)
			}

			err = failure
		}
	}()

	g := gomega.NewGomega(func(message string, _ ...int) {
		panic(&assertionFailure{message: message})
	})

	if c.Action == nil {
		return fmt.Errorf("%w: case %q has no action", ErrInvalidCase, c.Name)
	}

	return c.Action(ctx, g, state)
}

// classify maps the error returned by an action to an outcome.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return Passed
	case errors.Is(err, ErrAnticipatedFailure):
		return ExpectedFailure
	case errors.Is(err, ErrNoResponse):
		return TransportError
	default:
		return Failed
	}
}
