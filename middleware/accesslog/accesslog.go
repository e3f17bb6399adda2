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

// Package accesslog provides structured access logging middleware.
//
// One canonical log line is emitted per request after the rest of the chain
// has run, carrying method, path, matched route pattern, status, and elapsed
// time.
package accesslog

import (
	"log/slog"
	"time"

	"github.com/weft-http/weft"
)

// Option defines functional options for accesslog middleware configuration.
type Option func(*config)

// config holds the configuration for the accesslog middleware.
type config struct {
	logger    *slog.Logger
	skipPaths map[string]struct{}
}

func defaultConfig() *config {
	return &config{
		skipPaths: make(map[string]struct{}),
	}
}

// WithLogger sets the logger used for access log lines. Defaults to the
// request-scoped logger on the Context.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSkipPaths excludes exact request paths from access logging, typically
// health and metrics endpoints.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}

// New returns a middleware that logs one structured line per request.
//
// The line is emitted in the after phase, so it observes the status of the
// response the deeper chain finalized. Dispatch errors are logged at error
// level and propagated unchanged.
//
// Example:
//
//	app := weft.MustNew(weft.WithLogger(logger))
//	app.Use(accesslog.New(accesslog.WithSkipPaths("/health")))
func New(opts ...Option) weft.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *weft.Context, next weft.Next) error {
		start := time.Now()
		err := next()
		elapsed := time.Since(start)

		req := c.Request()
		if _, skip := cfg.skipPaths[req.URL.Path]; skip {
			return err
		}

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		status := 0
		if resp := c.Response(); resp != nil {
			status = resp.Status()
		}

		attrs := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", c.RoutePattern(),
			"status", status,
			"elapsed", elapsed,
		}

		if err != nil {
			logger.Error("request", append(attrs, "error", err)...)
		} else {
			logger.Info("request", attrs...)
		}

		return err
	}
}
