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

// Package requestid provides request-correlation middleware: every request
// gets a unique ID, stored on the Context and echoed in a response header.
//
// The response header is staged through the Context's deferred-header table,
// so it lands on the response no matter how deep in the chain the response
// was finalized.
package requestid

import (
	"github.com/google/uuid"

	"github.com/weft-http/weft"
)

// Header is the default header carrying the request ID.
const Header = "X-Request-ID"

// ContextKey is the Context key the request ID is stored under.
const ContextKey = "request_id"

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    Header,
		generator:     uuid.NewString,
		allowClientID: true,
	}
}

// WithHeader sets the header name used to read and echo the request ID.
func WithHeader(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.headerName = name
		}
	}
}

// WithGenerator sets the ID generator. Defaults to random UUIDv4 strings.
func WithGenerator(fn func() string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.generator = fn
		}
	}
}

// WithAllowClientID controls whether an inbound request-ID header is trusted
// and reused. When false a fresh ID is always generated.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// New returns a middleware that attaches a request ID to each request.
//
// Example:
//
//	app.Use(requestid.New())
//
//	app.GET("/work", func(c *weft.Context) (*weft.Response, error) {
//	    id := requestid.FromContext(c)
//	    c.Logger().Info("working", "request_id", id)
//	    return nil, c.NoContent(http.StatusAccepted)
//	})
func New(opts ...Option) weft.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *weft.Context, next weft.Next) error {
		var id string
		if cfg.allowClientID {
			id = c.RequestHeader(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Set(ContextKey, id)
		c.Header(cfg.headerName, id)

		return next()
	}
}

// FromContext returns the request ID stored by the middleware, or the empty
// string when the middleware did not run.
func FromContext(c *weft.Context) string {
	if v, ok := c.Get(ContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
