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

// Package cors provides Cross-Origin Resource Sharing middleware.
//
// The origin policy is a small sum type — exact origin, origin list, or
// predicate function — resolved once when the middleware is constructed,
// never re-derived per request. The default configuration allows no origins.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/weft-http/weft"
)

// originPolicy decides whether a request Origin is allowed and what value to
// emit in Access-Control-Allow-Origin. Exactly one variant is selected at
// construction time.
type originPolicy interface {
	allow(origin string) (value string, ok bool)
}

// exactOrigin allows a single origin.
type exactOrigin string

func (o exactOrigin) allow(origin string) (string, bool) {
	if origin == string(o) {
		return origin, true
	}
	return "", false
}

// originList allows any origin in a fixed list.
type originList []string

func (o originList) allow(origin string) (string, bool) {
	if slices.Contains(o, origin) {
		return origin, true
	}
	return "", false
}

// originPredicate delegates the decision to a user function.
type originPredicate func(string) bool

func (o originPredicate) allow(origin string) (string, bool) {
	if o(origin) {
		return origin, true
	}
	return "", false
}

// allowAllOrigins allows every origin with a wildcard header value.
type allowAllOrigins struct{}

func (allowAllOrigins) allow(string) (string, bool) { return "*", true }

// denyAllOrigins is the restrictive default when no origin option is given.
type denyAllOrigins struct{}

func (denyAllOrigins) allow(string) (string, bool) { return "", false }

// Option defines functional options for cors middleware configuration.
type Option func(*config)

// config holds the configuration for the cors middleware.
type config struct {
	exact     string
	list      []string
	predicate func(string) bool
	allowAll  bool

	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
}

func defaultConfig() *config {
	return &config{
		allowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// resolvePolicy collapses the configured origin options into one policy
// variant. Precedence: predicate, then allow-all, then list, then exact.
func (cfg *config) resolvePolicy() originPolicy {
	switch {
	case cfg.predicate != nil:
		return originPredicate(cfg.predicate)
	case cfg.allowAll:
		return allowAllOrigins{}
	case len(cfg.list) > 0:
		return originList(cfg.list)
	case cfg.exact != "":
		return exactOrigin(cfg.exact)
	default:
		return denyAllOrigins{}
	}
}

// WithOrigin allows a single exact origin.
func WithOrigin(origin string) Option {
	return func(cfg *config) {
		cfg.exact = origin
	}
}

// WithOrigins allows any origin in the given list.
func WithOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.list = append(cfg.list, origins...)
	}
}

// WithOriginFunc allows origins for which fn returns true.
func WithOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) {
		cfg.predicate = fn
	}
}

// WithAllowAllOrigins allows every origin. Avoid together with credentials;
// the wildcard is not valid for credentialed requests.
func WithAllowAllOrigins() Option {
	return func(cfg *config) {
		cfg.allowAll = true
	}
}

// WithAllowedMethods replaces the allowed method list used in preflight
// responses.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.allowedMethods = methods
	}
}

// WithAllowedHeaders replaces the allowed request header list used in
// preflight responses.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.allowedHeaders = headers
	}
}

// WithExposedHeaders sets the response headers exposed to browser scripts.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.exposedHeaders = headers
	}
}

// WithAllowCredentials permits credentialed cross-origin requests. The
// allow-origin value is then always the echoed origin, never the wildcard.
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) {
		cfg.allowCredentials = allow
	}
}

// WithMaxAge sets the preflight cache lifetime in seconds.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) {
		cfg.maxAge = seconds
	}
}

// New returns a CORS middleware.
//
// Preflight requests (OPTIONS with Access-Control-Request-Method) from an
// allowed origin are finalized directly with 204 and the preflight headers;
// deeper middleware and the handler never run. Disallowed preflights get
// 403. Simple requests from an allowed origin have the CORS headers staged
// on the Context and proceed down the chain.
//
// Example:
//
//	app.Use(cors.New(
//	    cors.WithOrigins("https://app.example.com"),
//	    cors.WithAllowCredentials(true),
//	))
func New(opts ...Option) weft.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	policy := cfg.resolvePolicy()
	allowMethods := strings.Join(cfg.allowedMethods, ", ")
	allowHeaders := strings.Join(cfg.allowedHeaders, ", ")
	exposeHeaders := strings.Join(cfg.exposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.maxAge)

	return func(c *weft.Context, next weft.Next) error {
		origin := c.RequestHeader("Origin")
		if origin == "" {
			// Same-origin or non-browser request.
			return next()
		}

		// Every response below depends on the Origin header, the deny
		// branches included; caches must not replay them across origins.
		c.Header("Vary", "Origin")

		allowValue, allowed := policy.allow(origin)
		if allowed && cfg.allowCredentials && allowValue == "*" {
			allowValue = origin
		}

		preflight := c.Request().Method == http.MethodOptions &&
			c.RequestHeader("Access-Control-Request-Method") != ""

		if preflight {
			if !allowed {
				return c.NoContent(http.StatusForbidden)
			}

			resp := weft.NewResponse(http.StatusNoContent)
			h := resp.Header()
			h.Set("Access-Control-Allow-Origin", allowValue)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			if cfg.allowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			c.Finalize(resp)
			return nil
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", allowValue)
			if exposeHeaders != "" {
				c.Header("Access-Control-Expose-Headers", exposeHeaders)
			}
			if cfg.allowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		return next()
	}
}
