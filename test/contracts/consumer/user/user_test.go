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

package user_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive
	"github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"

	"github.com/dmoney/user-api-test/test/api"
)

var testingT *testing.T //nolint:gochecknoglobals

const (
	secretKey = "ROADTOSDET"
	token     = "eyJhbGciOiJIUzI1NiJ9.e30.signature"
)

func TestContracts(t *testing.T) { //nolint:paralleltest
	testingT = t

	RegisterFailHandler(Fail)
	RunSpecs(t, "User Consumer Contract Suite")
}

// createUserClient creates a user service client for the mock server.
func createUserClient(ctx context.Context, config consumer.MockServerConfig) (*api.APIClient, error) {
	url := fmt.Sprintf("http://%s", net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port)))

	testConfig, err := api.ParseTestConfig(map[string]string{
		api.KeyBaseURL: url,
	})
	if err != nil {
		return nil, err
	}

	return api.NewAPIClientWithConfig(ctx, testConfig, api.WithLogger(GinkgoLogr))
}

func bearer() matchers.Matcher {
	return matchers.Regex("Bearer "+token, `^Bearer \S+$`)
}

func userBody(id int, email string) map[string]interface{} {
	return map[string]interface{}{
		"id":           matchers.Integer(id),
		"name":         matchers.String("Test User"),
		"email":        matchers.String(email),
		"phone_number": matchers.String("01502512345"),
		"role":         matchers.String("merchant"),
	}
}

var _ = Describe("User Service Contract", func() {
	var (
		pact *consumer.V4HTTPMockProvider
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		pact, err = consumer.NewV4Pact(consumer.MockHTTPProviderConfig{
			Consumer: "dmoney-api-test",
			Provider: "dmoney-user-service",
			PactDir:  "../pacts",
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	Describe("Login", func() {
		Context("when the credentials are valid", func() {
			It("returns a token", func() {
				pact.AddInteraction().
					Given("an admin account exists").
					UponReceiving("a login request with valid credentials").
					WithRequest(http.MethodPost, "/user/login", func(b *consumer.V4RequestBuilder) {
						b.Header("Content-Type", matchers.String("application/json"))
						b.JSONBody(map[string]interface{}{
							"email":    matchers.String("admin@roadtocareer.net"),
							"password": matchers.String("1234"),
						})
					}).
					WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
						b.JSONBody(map[string]interface{}{
							"message": matchers.String("Login successful"),
							"token":   matchers.String(token),
							"role":    matchers.String("Admin"),
						})
					})

				test := func(config consumer.MockServerConfig) error {
					client, err := createUserClient(ctx, config)
					if err != nil {
						return fmt.Errorf("creating user client: %w", err)
					}

					result, err := client.Login(ctx, api.NewCredentials("admin@roadtocareer.net", "1234"))
					if err != nil {
						return fmt.Errorf("logging in: %w", err)
					}

					Expect(result.StatusCode).To(Equal(http.StatusOK))
					Expect(result.Message).To(ContainSubstring("Login successful"))
					Expect(result.Body.Token).To(Equal(token))

					return nil
				}

				Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
			})
		})

		Context("when the user does not exist", func() {
			It("returns not found", func() {
				pact.AddInteraction().
					Given("no account exists for the email").
					UponReceiving("a login request for an unknown user").
					WithRequest(http.MethodPost, "/user/login", func(b *consumer.V4RequestBuilder) {
						b.JSONBody(map[string]interface{}{
							"email":    matchers.String("user@roadtocareer.net"),
							"password": matchers.String("1234"),
						})
					}).
					WillRespondWith(http.StatusNotFound, func(b *consumer.V4ResponseBuilder) {
						b.JSONBody(map[string]interface{}{
							"message": matchers.String("User not found"),
						})
					})

				test := func(config consumer.MockServerConfig) error {
					client, err := createUserClient(ctx, config)
					if err != nil {
						return fmt.Errorf("creating user client: %w", err)
					}

					_, err = client.Login(ctx, api.NewCredentials("user@roadtocareer.net", "1234"))

					responseErr, ok := api.AsResponseError(err)
					Expect(ok).To(BeTrue())
					Expect(responseErr.StatusCode).To(Equal(http.StatusNotFound))
					Expect(responseErr.Message).To(Equal("User not found"))

					return nil
				}

				Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
			})
		})
	})

	Describe("ListUsers", func() {
		It("returns a page of users", func() {
			pact.AddInteraction().
				Given("users exist").
				UponReceiving("a request to list users").
				WithRequest(http.MethodGet, "/user/list", func(b *consumer.V4RequestBuilder) {
					b.Query("limit", matchers.String("2"))
					b.Header("Authorization", bearer())
				}).
				WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
					b.JSONBody(map[string]interface{}{
						"message": matchers.String("User list"),
						"count":   matchers.Integer(2),
						"users":   matchers.EachLike(userBody(1000, "agent@roadtocareer.net"), 1),
					})
				})

			test := func(config consumer.MockServerConfig) error {
				client, err := createUserClient(ctx, config)
				if err != nil {
					return fmt.Errorf("creating user client: %w", err)
				}

				result, err := client.ListUsers(ctx, api.Auth{Token: token}, 2)
				if err != nil {
					return fmt.Errorf("listing users: %w", err)
				}

				Expect(result.Message).To(Equal("User list"))
				Expect(result.Body.Users).NotTo(BeEmpty())

				return nil
			}

			Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
		})
	})

	Describe("CreateUser", func() {
		It("creates a user with the secret key", func() {
			pact.AddInteraction().
				Given("the secret key is valid").
				UponReceiving("a request to create a user").
				WithRequest(http.MethodPost, "/user/create", func(b *consumer.V4RequestBuilder) {
					b.Header("Authorization", bearer())
					b.Header(api.SecretKeyHeader, matchers.String(secretKey))
					b.JSONBody(map[string]interface{}{
						"name":         matchers.String("Test User"),
						"email":        matchers.String("testautomation-contract@example.com"),
						"password":     matchers.String("1234"),
						"phone_number": matchers.String("01502512345"),
						"nid":          matchers.String("123456789"),
						"role":         matchers.String("merchant"),
					})
				}).
				WillRespondWith(http.StatusCreated, func(b *consumer.V4ResponseBuilder) {
					b.JSONBody(map[string]interface{}{
						"message": matchers.String("User created"),
						"user":    userBody(1002, "testautomation-contract@example.com"),
					})
				})

			test := func(config consumer.MockServerConfig) error {
				client, err := createUserClient(ctx, config)
				if err != nil {
					return fmt.Errorf("creating user client: %w", err)
				}

				payload := api.NewUserPayload(&api.TestConfig{}).
					WithName("Test User").
					WithEmail("testautomation-contract@example.com").
					WithPassword("1234").
					WithPhoneNumber("01502512345").
					Build()

				result, err := client.CreateUser(ctx, api.Auth{Token: token, SecretKey: secretKey}, payload)
				if err != nil {
					return fmt.Errorf("creating user: %w", err)
				}

				Expect(result.StatusCode).To(Equal(http.StatusCreated))

				user, err := result.Body.DecodeUser()
				Expect(err).NotTo(HaveOccurred())
				Expect(user.ID.String()).To(Equal("1002"))

				return nil
			}

			Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
		})
	})

	Describe("SearchUser", func() {
		It("finds a user by id", func() {
			pact.AddInteraction().
				Given("user 1002 exists").
				UponReceiving("a request to search for a user").
				WithRequest(http.MethodGet, "/user/search/id/1002", func(b *consumer.V4RequestBuilder) {
					b.Header("Authorization", bearer())
				}).
				WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
					b.JSONBody(map[string]interface{}{
						"message": matchers.String("User found"),
						"user":    userBody(1002, "testautomation-contract@example.com"),
					})
				})

			test := func(config consumer.MockServerConfig) error {
				client, err := createUserClient(ctx, config)
				if err != nil {
					return fmt.Errorf("creating user client: %w", err)
				}

				result, err := client.SearchUser(ctx, api.Auth{Token: token}, "1002")
				if err != nil {
					return fmt.Errorf("searching user: %w", err)
				}

				Expect(result.Message).To(Equal("User found"))

				return nil
			}

			Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
		})
	})

	Describe("DeleteUser", func() {
		It("reports unknown users as not found", func() {
			pact.AddInteraction().
				Given("user 002 does not exist").
				UponReceiving("a request to delete an unknown user").
				WithRequest(http.MethodDelete, "/user/delete/002", func(b *consumer.V4RequestBuilder) {
					b.Header("Authorization", bearer())
					b.Header(api.SecretKeyHeader, matchers.String(secretKey))
				}).
				WillRespondWith(http.StatusNotFound, func(b *consumer.V4ResponseBuilder) {
					b.JSONBody(map[string]interface{}{
						"message": matchers.String("User not found"),
					})
				})

			test := func(config consumer.MockServerConfig) error {
				client, err := createUserClient(ctx, config)
				if err != nil {
					return fmt.Errorf("creating user client: %w", err)
				}

				_, err = client.DeleteUser(ctx, api.Auth{Token: token, SecretKey: secretKey}, "002")

				responseErr, ok := api.AsResponseError(err)
				Expect(ok).To(BeTrue())
				Expect(responseErr.StatusCode).To(Equal(http.StatusNotFound))

				return nil
			}

			Expect(pact.ExecuteTest(testingT, test)).To(Succeed())
		})
	})
})
