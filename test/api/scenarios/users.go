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
	"context"
	"fmt"
	"net/http"

	"github.com/onsi/gomega"

	"github.com/dmoney/user-api-test/test/api"

	"k8s.io/utils/ptr"
)

func listUsers(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.ListUsers(ctx, s.Auth(), s.Config.ListLimit)
	expectSuccess(g, result, err, http.StatusOK, gomega.Equal(MessageUserList))
	g.Expect(len(result.Body.Users)).To(gomega.BeNumerically("<=", s.Config.ListLimit))

	s.Logger.Info("users", "users", result.Body.Users)

	return nil
}

// createUser creates a merchant, keeps its id for the search and delete
// cases and records it as a fixture.
func createUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	payload := api.NewUserPayload(s.Config).Build()

	result, err := s.Client.CreateUser(ctx, s.Auth(), payload)
	expectSuccess(g, result, err, http.StatusCreated, gomega.ContainSubstring(MessageUserCreated))

	user, err := result.Body.DecodeUser()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(user.ID.String()).NotTo(gomega.BeEmpty(), "created user has no id")

	if err := s.Env.Set(api.KeyUserID, ptr.To(user.ID.String())); err != nil {
		return err
	}

	if err := s.Fixtures.Append(result.Body.User); err != nil {
		return fmt.Errorf("recording created user %s: %w", user.ID, err)
	}

	return nil
}

func searchUnknownUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.SearchUser(ctx, s.Auth(), UnknownSearchID)

	return expectFailure(g, result, err, http.StatusNotFound, gomega.Equal(MessageUserNotFound))
}

func searchCreatedUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	id := s.Env.Value(api.KeyUserID)
	g.Expect(id).NotTo(gomega.BeEmpty(), "no user id was captured by an earlier case")

	result, err := s.Client.SearchUser(ctx, s.Auth(), id)
	expectSuccess(g, result, err, http.StatusOK, gomega.Equal(MessageUserFound))

	return nil
}

func deleteUnknownUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.DeleteUser(ctx, s.Auth(), UnknownDeleteID)

	return expectFailure(g, result, err, http.StatusNotFound, gomega.Equal(MessageUserNotFound))
}

// deleteCreatedUser removes the user made by createUser and forgets its id.
// The fixture record is kept.
func deleteCreatedUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	id := s.Env.Value(api.KeyUserID)
	g.Expect(id).NotTo(gomega.BeEmpty(), "no user id was captured by an earlier case")

	result, err := s.Client.DeleteUser(ctx, s.Auth(), id)
	expectSuccess(g, result, err, http.StatusOK, gomega.Equal(MessageUserDeleted))

	return s.Env.Set(api.KeyUserID, nil)
}
