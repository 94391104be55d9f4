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

package scenarios

import (
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"

	"github.com/dmoney/user-api-test/test/api"
	"github.com/dmoney/user-api-test/test/api/runner"
)

// expectSuccess asserts a 2xx response. Any error fails the case.
func expectSuccess[T any](g gomega.Gomega, result *api.Result[T], err error, status int, message types.GomegaMatcher) {
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(result.Message).To(message)
	g.Expect(result.StatusCode).To(gomega.Equal(status))
}

// expectFailure asserts an anticipated error response. The failure may
// arrive as a normal result or attached to a ResponseError; both are checked
// against the same status and message. When no response arrived at all the
// case is reported as a transport error rather than asserted.
func expectFailure[T any](g gomega.Gomega, result *api.Result[T], err error, status int, message types.GomegaMatcher) error {
	if err == nil {
		g.Expect(result.Message).To(message)
		g.Expect(result.StatusCode).To(gomega.Equal(status))

		return nil
	}

	if responseErr, ok := api.AsResponseError(err); ok {
		g.Expect(responseErr.Message).To(message)
		g.Expect(responseErr.StatusCode).To(gomega.Equal(status))

		return runner.AnticipatedFailure(err)
	}

	if api.IsTransportError(err) {
		return runner.NoResponse(err)
	}

	return err
}
