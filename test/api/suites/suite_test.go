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

//nolint:revive,testpackage // dot imports and package naming standard for Ginkgo
package suites

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmoney/user-api-test/test/api"
	"github.com/dmoney/user-api-test/test/api/runner"
	"github.com/dmoney/user-api-test/test/api/scenarios"
)

var (
	ctx       context.Context
	config    *api.TestConfig
	session   *scenarios.Session
	sequencer *runner.Sequencer[*scenarios.Session]
	policy    runner.TransportPolicy
)

var _ = BeforeSuite(func() {
	ctx = context.Background()

	var err error

	config, err = api.LoadTestConfig()
	Expect(err).NotTo(HaveOccurred())

	if config.SkipIntegration {
		Skip("SKIP_INTEGRATION is set")
	}

	logger := GinkgoLogr
	if config.DebugLogging {
		logger = api.NewLogger(config, GinkgoWriter)
	}

	session, err = scenarios.NewSession(ctx, config, logger)
	Expect(err).NotTo(HaveOccurred())

	sequencer = scenarios.NewSequencer(config, logger)
	policy = scenarios.Options(config, logger).TransportPolicy
})

func TestSuites(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Test Suites")
}
