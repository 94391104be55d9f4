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

package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmoney/user-api-test/test/api"
)

func TestParseTestConfigDefaults(t *testing.T) {
	t.Parallel()

	config, err := api.ParseTestConfig(map[string]string{
		"base_url":  "https://dmoney.example.com",
		"secretKey": "s3cret",
	})
	require.NoError(t, err)

	require.Equal(t, "https://dmoney.example.com", config.BaseURL)
	require.Equal(t, "s3cret", config.SecretKey)
	require.Equal(t, "userData.json", config.FixtureFile)
	require.Equal(t, 30*time.Second, config.RequestTimeout)
	require.Equal(t, time.Second, config.CaseInterval)
	require.Equal(t, "agent@roadtocareer.net", config.AgentEmail)
	require.Equal(t, "admin@roadtocareer.net", config.AdminEmail)
	require.Equal(t, "1234", config.Password)
	require.Equal(t, 2, config.ListLimit)
	require.False(t, config.FailOnTransportError)
	require.Equal(t, "s3cret", config.Environment["secretKey"])
}

func TestParseTestConfigOverrides(t *testing.T) {
	t.Parallel()

	config, err := api.ParseTestConfig(map[string]string{
		"base_url":                "http://localhost:3000",
		"CASE_INTERVAL":           "250ms",
		"CASE_RATE":               "2.5",
		"FAIL_ON_TRANSPORT_ERROR": "true",
		"LIST_LIMIT":              "5",
	})
	require.NoError(t, err)

	require.Equal(t, 250*time.Millisecond, config.CaseInterval)
	require.InDelta(t, 2.5, config.CaseRate, 0.0001)
	require.True(t, config.FailOnTransportError)
	require.Equal(t, 5, config.ListLimit)
}

func TestParseTestConfigMissingBaseURL(t *testing.T) {
	t.Parallel()

	_, err := api.ParseTestConfig(map[string]string{})
	require.ErrorIs(t, err, api.ErrMissingConfiguration)
	require.ErrorContains(t, err, "base_url")
}

func TestParseTestConfigSkipIntegration(t *testing.T) {
	t.Parallel()

	config, err := api.ParseTestConfig(map[string]string{
		"SKIP_INTEGRATION": "true",
	})
	require.NoError(t, err)
	require.True(t, config.SkipIntegration)
}

func TestParseTestConfigInvalidDuration(t *testing.T) {
	t.Parallel()

	_, err := api.ParseTestConfig(map[string]string{
		"base_url":        "http://localhost:3000",
		"REQUEST_TIMEOUT": "soon",
	})
	require.Error(t, err)
}
