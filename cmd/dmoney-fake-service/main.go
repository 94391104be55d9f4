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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/dmoney/user-api-test/test/api"
	"github.com/dmoney/user-api-test/test/api/fake"
)

type options struct {
	listenAddress string
	secretKey     string
	signingKey    string
	debug         bool
}

func (o *options) addFlags(f *pflag.FlagSet) {
	f.StringVar(&o.listenAddress, "listen-address", ":8080", "API listener address.")
	f.StringVar(&o.secretKey, "secret-key", fake.DefaultSecretKey, "Secret key required to create and delete users.")
	f.StringVar(&o.signingKey, "signing-key", "", "Key used to sign issued tokens.")
	f.BoolVar(&o.debug, "debug", false, "Enable debug logging.")
}

func main() {
	var o options

	o.addFlags(pflag.CommandLine)

	pflag.Parse()

	logger := api.NewLogger(&api.TestConfig{DebugLogging: o.debug}, os.Stderr).WithName("init")

	if err := run(logger, o); err != nil {
		logger.Error(err, "service failed")
		os.Exit(1)
	}
}

// run serves the fake until SIGINT or SIGTERM.
func run(logger logr.Logger, o options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := fake.New(fake.Options{
		SecretKey:  o.secretKey,
		SigningKey: []byte(o.signingKey),
	})

	server := &http.Server{
		Addr:              o.listenAddress,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "server shutdown failed")
		}
	}()

	logger.Info("service starting", "address", o.listenAddress, "accounts", service.Len())

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving on %s: %w", o.listenAddress, err)
	}

	logger.Info("service stopped", "requests", service.Requests())

	return nil
}
