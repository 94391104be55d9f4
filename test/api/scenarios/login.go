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
	"net/http"

	"github.com/onsi/gomega"

	"github.com/dmoney/user-api-test/test/api"
	"github.com/dmoney/user-api-test/test/api/runner"

	"k8s.io/utils/ptr"
)

// Group names.
const (
	GroupLogin  = "User login"
	GroupList   = "User List"
	GroupCreate = "User create"
	GroupSearch = "User Search"
	GroupDelete = "Delete user"
)

// Messages returned by the service.
const (
	MessageUserNotFound      = "User not found"
	MessageLoginSuccessful   = "Login successful"
	MessagePasswordIncorrect = "Password incorrect"
	MessageUserList          = "User list"
	MessageUserCreated       = "User created"
	MessageUserFound         = "User found"
	MessageUserDeleted       = "User deleted successfully"
)

const (
	unknownUserEmail  = "user@roadtocareer.net"
	unknownAdminEmail = "adminn@roadtocareer.net"
	wrongPassword     = "12345"

	// UnknownSearchID and UnknownDeleteID name no user.
	UnknownSearchID = "001"
	UnknownDeleteID = "002"
)

// Groups returns the cases in the order they must run.
func Groups() []runner.Group[*Session] {
	return []runner.Group[*Session]{
		{
			Name: GroupLogin,
			Cases: []runner.Case[*Session]{
				{Name: "User login with wrong crad", Action: loginUnknownUser},
				{Name: "User login with valid crad", Action: loginAgent},
				{Name: "Admin login with wrong password", Action: loginAdminWrongPassword},
				{Name: "Admin login with wrong Email", Action: loginAdminWrongEmail},
				{Name: "Admin login with valid crad", Action: loginAdmin},
			},
		},
		{
			Name: GroupList,
			Cases: []runner.Case[*Session]{
				{Name: "user list", Action: listUsers},
			},
		},
		{
			Name: GroupCreate,
			Cases: []runner.Case[*Session]{
				{Name: "create user", Action: createUser},
			},
		},
		{
			Name: GroupSearch,
			Cases: []runner.Case[*Session]{
				{Name: "search user with wrong ID", Action: searchUnknownUser},
				{Name: "search user with valid ID", Action: searchCreatedUser},
			},
		},
		{
			Name: GroupDelete,
			Cases: []runner.Case[*Session]{
				{Name: "delete user with wrong ID", Action: deleteUnknownUser},
				{Name: "delete user with valid ID", Action: deleteCreatedUser},
			},
		},
	}
}

func loginUnknownUser(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.Login(ctx, api.NewCredentials(unknownUserEmail, s.Config.Password))

	return expectFailure(g, result, err, http.StatusNotFound, gomega.ContainSubstring(MessageUserNotFound))
}

func loginAgent(ctx context.Context, g gomega.Gomega, s *Session) error {
	return login(ctx, g, s, s.Config.AgentEmail)
}

func loginAdminWrongPassword(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.Login(ctx, api.NewCredentials(s.Config.AdminEmail, wrongPassword))

	return expectFailure(g, result, err, http.StatusUnauthorized, gomega.ContainSubstring(MessagePasswordIncorrect))
}

func loginAdminWrongEmail(ctx context.Context, g gomega.Gomega, s *Session) error {
	result, err := s.Client.Login(ctx, api.NewCredentials(unknownAdminEmail, s.Config.Password))

	return expectFailure(g, result, err, http.StatusNotFound, gomega.ContainSubstring(MessageUserNotFound))
}

func loginAdmin(ctx context.Context, g gomega.Gomega, s *Session) error {
	return login(ctx, g, s, s.Config.AdminEmail)
}

// login signs in as email and keeps the token for the cases that follow.
func login(ctx context.Context, g gomega.Gomega, s *Session, email string) error {
	result, err := s.Client.Login(ctx, api.NewCredentials(email, s.Config.Password))
	expectSuccess(g, result, err, http.StatusOK, gomega.ContainSubstring(MessageLoginSuccessful))
	g.Expect(result.Body.Token).NotTo(gomega.BeEmpty(), "login response carries no token")

	if info, err := api.InspectToken(result.Body.Token); err == nil {
		s.Logger.V(1).Info("captured bearer token", "email", email, "subject", info.Subject, "role", info.Role, "expiresAt", info.ExpiresAt)
	} else {
		s.Logger.V(1).Info("captured opaque bearer token", "email", email)
	}

	return s.Env.Set(api.KeyToken, ptr.To(result.Body.Token))
}
