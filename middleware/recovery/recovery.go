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

// Package recovery provides panic-recovery middleware: a panic anywhere
// deeper in the chain becomes a 500 response instead of tearing down the
// connection.
//
// Dispatcher protocol violations (next() called twice, chain completed
// without finalizing) are re-panicked: they indicate malformed middleware
// and must stay fatal.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/weft-http/weft"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// logger receives the panic value and captured stack.
	logger func(c *weft.Context, v any, stack []byte)

	// handler finalizes the response for a recovered panic.
	handler func(c *weft.Context, v any)
}

func defaultConfig() *config {
	return &config{
		logger:  defaultLogger,
		handler: defaultHandler,
	}
}

func defaultLogger(c *weft.Context, v any, stack []byte) {
	c.Logger().Error("panic recovered",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"panic", v,
		"stack", string(stack),
	)
}

func defaultHandler(c *weft.Context, v any) {
	// First finalization wins; if the panicking handler already finalized,
	// its response stands and this is a no-op.
	_ = c.JSON(http.StatusInternalServerError, map[string]string{
		"error": http.StatusText(http.StatusInternalServerError),
	})
}

// WithLogger sets a custom logger for recovered panics.
func WithLogger(fn func(c *weft.Context, v any, stack []byte)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.logger = fn
		}
	}
}

// WithHandler sets a custom handler that finalizes the response for a
// recovered panic. The handler must finalize the Context or the dispatcher
// will treat the chain as unfinalized.
func WithHandler(fn func(c *weft.Context, v any)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.handler = fn
		}
	}
}

// New returns a middleware that recovers panics from deeper in the chain,
// logs them with a stack trace, and finalizes a 500 response.
//
// Example:
//
//	app := weft.MustNew()
//	app.Use(recovery.New())
func New(opts ...Option) weft.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *weft.Context, next weft.Next) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				if weft.IsProtocolViolation(rec) {
					panic(rec)
				}
				cfg.logger(c, rec, debug.Stack())
				cfg.handler(c, rec)
				err = nil
			}
		}()

		return next()
	}
}
