// Copyright 2026 The Weft Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weft

import (
	"log/slog"
	"time"
)

// Option defines functional options for App configuration.
type Option func(*App)

// WithLogger sets the application logger. It is used for dispatch failures,
// server lifecycle events, and as the request-scoped logger on Context.
// Defaults to a no-op logger.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	app := weft.MustNew(weft.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithObservability sets the observability recorder invoked around each
// request. See Observer for the lifecycle contract.
//
// Example:
//
//	obs, _ := weft.NewOTelObserver(weft.WithPrometheusExporter())
//	app := weft.MustNew(weft.WithObservability(obs))
func WithObservability(obs Observer) Option {
	return func(a *App) {
		a.observer = obs
	}
}

// WithH2C enables HTTP/2 Cleartext support on Serve.
//
// ⚠️ Only use in development or behind a trusted load balancer; do not enable
// on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(a *App) {
		a.enableH2C = enable
	}
}

// WithServerTimeouts configures HTTP server timeouts used by Serve. All four
// values must be positive or New returns ErrServerTimeoutInvalid.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s  - Time to read request headers
//	ReadTimeout:       15s - Time to read entire request
//	WriteTimeout:      30s - Time to write response
//	IdleTimeout:       60s - Keep-alive idle time
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(a *App) {
		a.timeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}
