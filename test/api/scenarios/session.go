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

// Package scenarios declares the user management cases and the state they
// share during a run.
package scenarios

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"

	"github.com/dmoney/user-api-test/test/api"
	"github.com/dmoney/user-api-test/test/api/runner"
)

// Session is the state of one run. It is built once and handed to every
// case in turn.
type Session struct {
	Config   *api.TestConfig
	Client   *api.APIClient
	Env      *api.EnvStore
	Fixtures *api.FixtureStore
	Logger   logr.Logger
}

// NewSession builds the run state from configuration. The EnvStore is seeded
// from the configuration environment and, with PERSIST_ENV, writes back to
// the .env file it was loaded from.
func NewSession(ctx context.Context, config *api.TestConfig, logger logr.Logger, options ...api.Option) (*Session, error) {
	var env *api.EnvStore

	if config.PersistEnv && config.EnvFile != "" {
		env = api.NewPersistentEnvStore(config.EnvFile, config.Environment)
	} else {
		env = api.NewEnvStore(config.Environment)
	}

	fixtureFile := config.FixtureFile
	if !filepath.IsAbs(fixtureFile) && config.EnvFile != "" {
		fixtureFile = filepath.Join(filepath.Dir(config.EnvFile), fixtureFile)
	}

	fixtures, err := api.OpenFixtureStore(fixtureFile)
	if err != nil {
		return nil, fmt.Errorf("opening fixtures: %w", err)
	}

	options = append([]api.Option{api.WithLogger(logger)}, options...)

	client, err := api.NewAPIClient(ctx, config, env.Value(api.KeyBaseURL), options...)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	return &Session{
		Config:   config,
		Client:   client,
		Env:      env,
		Fixtures: fixtures,
		Logger:   logger,
	}, nil
}

// Auth returns the credentials currently held by the run.
func (s *Session) Auth() api.Auth {
	return api.Auth{
		Token:     s.Env.Value(api.KeyToken),
		SecretKey: s.Env.Value(api.KeySecretKey),
	}
}

// NewSequencer returns a Sequencer over Groups, paced and with a transport
// policy as configured.
func NewSequencer(config *api.TestConfig, logger logr.Logger) *runner.Sequencer[*Session] {
	return runner.New(Groups(), Hooks(), Options(config, logger))
}

// Options derives Sequencer options from configuration. CASE_RATE, when
// set, takes precedence over CASE_INTERVAL.
func Options(config *api.TestConfig, logger logr.Logger) runner.Options {
	pacer := runner.Interval(config.CaseInterval)
	if config.CaseRate > 0 {
		pacer = runner.Limit(rate.Limit(config.CaseRate), 1)
	}

	policy := runner.TolerateTransport
	if config.FailOnTransportError {
		policy = runner.FailOnTransport
	}

	return runner.Options{
		Pacer:           pacer,
		TransportPolicy: policy,
		Logger:          logger,
	}
}

// Hooks emit progress markers around the run.
func Hooks() runner.Hooks[*Session] {
	return runner.Hooks[*Session]{
		OnStart: func(_ context.Context, s *Session) error {
			s.Logger.Info("Test starting", "baseURL", s.Client.BaseURL(), "fixtures", s.Fixtures.Len())
			return nil
		},
		AfterEach: func(_ context.Context, s *Session, result runner.Result) {
			s.Logger.Info("Starting next test", "previous", result.FullName(), "outcome", result.Outcome.String())
		},
		OnFinish: func(_ context.Context, s *Session, report *runner.Report) {
			s.Logger.Info("All Test complete",
				"passed", report.Count(runner.Passed),
				"expectedFailures", report.Count(runner.ExpectedFailure),
				"transportErrors", report.Count(runner.TransportError),
				"failed", report.Count(runner.Failed))
		},
	}
}
