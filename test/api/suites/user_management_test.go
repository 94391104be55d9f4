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
	. "github.com/onsi/ginkgo/v2"

	"github.com/dmoney/user-api-test/test/api/runner"
	"github.com/dmoney/user-api-test/test/api/scenarios"
)

var _ = Describe("Dmoney Api Test", Ordered, ContinueOnFailure, func() {
	var last *runner.Result

	BeforeAll(func() {
		if err := sequencer.Start(ctx, session); err != nil {
			Fail(err.Error())
		}
	})

	AfterEach(func() {
		if last == nil {
			return
		}

		result := *last
		last = nil

		if err := sequencer.After(ctx, session, result); err != nil {
			Fail(err.Error())
		}
	})

	AfterAll(func() {
		report := sequencer.Finish(ctx, session)
		AddReportEntry("user management summary", report.Summary())
	})

	for _, group := range scenarios.Groups() {
		Describe(group.Name, func() {
			for _, c := range group.Cases {
				It(c.Name, func() {
					result := sequencer.RunCase(ctx, group.Name, c, session)
					last = &result

					switch {
					case result.Outcome == runner.TransportError && !result.Fails(policy):
						GinkgoWriter.Printf("no response from the service: %v\n", result.Err)
					case result.Fails(policy):
						Fail(result.Err.Error())
					}
				})
			}
		})
	}
})
