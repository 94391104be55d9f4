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

package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var (
	// ErrMissingConfiguration is raised when required values are absent.
	ErrMissingConfiguration = errors.New("missing required configuration")
)

type TestConfig struct {
	// Values shared with the EnvStore, named as the service's .env files name them.
	BaseURL   string `env:"base_url"`
	AuthToken string `env:"token"`
	UserID    string `env:"id"`
	SecretKey string `env:"secretKey"`

	FixtureFile          string        `env:"FIXTURE_FILE" envDefault:"userData.json"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CaseInterval         time.Duration `env:"CASE_INTERVAL" envDefault:"1s"`
	CaseRate             float64       `env:"CASE_RATE"`
	FailOnTransportError bool          `env:"FAIL_ON_TRANSPORT_ERROR" envDefault:"false"`
	ValidateResponses    bool          `env:"VALIDATE_RESPONSES" envDefault:"false"`
	PersistEnv           bool          `env:"PERSIST_ENV" envDefault:"false"`
	AgentEmail           string        `env:"AGENT_EMAIL" envDefault:"agent@roadtocareer.net"`
	AdminEmail           string        `env:"ADMIN_EMAIL" envDefault:"admin@roadtocareer.net"`
	Password             string        `env:"USER_PASSWORD" envDefault:"1234"`
	ListLimit            int           `env:"LIST_LIMIT" envDefault:"2"`
	SkipIntegration      bool          `env:"SKIP_INTEGRATION" envDefault:"false"`
	DebugLogging         bool          `env:"DEBUG_LOGGING" envDefault:"false"`
	LogRequests          bool          `env:"LOG_REQUESTS" envDefault:"false"`
	LogResponses         bool          `env:"LOG_RESPONSES" envDefault:"false"`

	// EnvFile is the .env file the configuration was read from, if any.
	EnvFile string

	// Environment is the merged view of the .env file and the process
	// environment that the configuration was parsed from.
	Environment map[string]string
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Process environment variables take precedence over the .env file.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	envFile := findEnvFile()

	values := map[string]string{}

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}

		for key, value := range fileValues {
			values[key] = value
		}
	}

	for _, pair := range os.Environ() {
		key, value, ok := strings.Cut(pair, "=")
		if ok {
			values[key] = value
		}
	}

	config, err := ParseTestConfig(values)
	if err != nil {
		return nil, err
	}

	config.EnvFile = envFile

	return config, nil
}

// ParseTestConfig builds a configuration from an explicit set of values.
func ParseTestConfig(values map[string]string) (*TestConfig, error) {
	config := &TestConfig{}

	if err := env.ParseWithOptions(config, env.Options{Environment: values}); err != nil {
		return nil, fmt.Errorf("parsing test configuration: %w", err)
	}

	config.Environment = values

	// Validate required fields
	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// findEnvFile returns the absolute path of the first .env file found, or an
// empty string when there is none.
func findEnvFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if absPath, err := filepath.Abs(path); err == nil {
			return absPath
		}

		return path
	}

	envPaths := []string{
		"../../../.env", // From test/api/suites directory
		"../../.env",
		".env",
	}

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
		}
	}

	// .env file not found - this is OK in CI/CD where env vars are set directly
	return ""
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	if config.SkipIntegration {
		return nil
	}

	var missing []string

	if config.BaseURL == "" {
		missing = append(missing, "base_url")
	}

	if config.ListLimit <= 0 {
		missing = append(missing, "LIST_LIMIT (must be positive)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s. Please set these environment variables or add them to a .env file", ErrMissingConfiguration, strings.Join(missing, ", "))
	}

	return nil
}
