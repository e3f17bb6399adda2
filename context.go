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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// paramKeyPrefix namespaces route parameters inside the context's internal
// store so they cannot collide with user keys set via Context.Set.
const paramKeyPrefix = "param:"

// Context is the single mutable surface shared by a request's middleware and
// handler chain. It wraps the inbound request, carries arbitrary key/value
// state, accumulates deferred response headers, and holds at most one
// finalized Response.
//
// Finalization is exactly-once: the first response-producing call (JSON, Text,
// HTML, Redirect, Stream, NoContent, or Finalize) wins and every later attempt
// is a silent no-op. That rule is what makes early returns from middleware
// work — an auth middleware can finalize a 401 and skip next(), and a deeper
// handler's response flows back up through outer middleware unchanged unless
// one of them explicitly replaces it before it is set.
//
// ⚠️ THREAD SAFETY: Context is NOT thread-safe. It is bound to a single
// request and must only be touched by the goroutine handling that request.
// Copy any needed values out before starting goroutines.
type Context struct {
	request *http.Request

	// store holds user state (Set/Get) and framework state such as route
	// parameters under "param:<name>" keys.
	store map[string]any

	// deferred accumulates headers staged via Header() before a Response
	// exists. The dispatcher merges them into the finalized Response after
	// the chain completes, which is how after-phase header injection works.
	deferred http.Header

	// response is nil while the context is pending, non-nil once finalized.
	response *Response

	logger       *slog.Logger
	routePattern string
}

// newContext creates a pending Context for one inbound request.
// Traversal state is always request-local; contexts are never pooled or
// shared across requests.
func newContext(req *http.Request, logger *slog.Logger) *Context {
	if logger == nil {
		logger = noopLogger
	}
	return &Context{
		request: req,
		store:   make(map[string]any),
		logger:  logger,
	}
}

// Request returns the inbound HTTP request.
func (c *Context) Request() *http.Request { return c.request }

// Logger returns the request-scoped structured logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// RoutePattern returns the raw path pattern of the matched route
// (for example "/users/:id"), or the not-found sentinel when no route
// matched. Use it instead of the raw URL path for metrics and log keys to
// avoid cardinality explosions.
func (c *Context) RoutePattern() string { return c.routePattern }

// Set stores a value under key for later retrieval with Get or MustGet.
// Typical use is middleware attaching auth payloads or request IDs.
func (c *Context) Set(key string, value any) {
	c.store[key] = value
}

// Get retrieves a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// MustGet retrieves a value stored with Set and panics if it is absent.
func (c *Context) MustGet(key string) any {
	v, ok := c.store[key]
	if !ok {
		panic(fmt.Sprintf("context key %q not set", key))
	}
	return v
}

// Param returns the route parameter bound by the matched pattern.
//
// Absence is an error (wrapping ErrMissingRouteParameter), which keeps
// "parameter not present" distinguishable from a parameter that is present
// with an empty value. A non-string value smuggled under a "param:" key via
// Set is treated as absent rather than panicking the handler.
func (c *Context) Param(name string) (string, error) {
	v, ok := c.store[paramKeyPrefix+name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingRouteParameter, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingRouteParameter, name)
	}
	return s, nil
}

// setParams injects resolved route parameters before the chain runs.
func (c *Context) setParams(params Params) {
	for name, value := range params {
		c.store[paramKeyPrefix+name] = value
	}
}

// Header stages a response header without requiring a Response to exist yet.
// Staged headers are merged into whatever Response ends up finalized, after
// finalization, so middleware running after next() can still inject headers
// into a response a deeper handler already produced.
func (c *Context) Header(name, value string) {
	if c.deferred == nil {
		c.deferred = make(http.Header)
	}
	c.deferred.Add(name, value)
}

// Finalized reports whether a Response has been set on the context.
func (c *Context) Finalized() bool { return c.response != nil }

// Response returns the finalized Response, or nil while the context is
// pending. Middleware observing the response of a deeper handler after
// next() returns should read it here.
func (c *Context) Response() *Response { return c.response }

// Finalize adopts an externally constructed Response. Like every other
// finalization path it is first-wins: if a Response is already set the call
// is a no-op and reports false.
func (c *Context) Finalize(resp *Response) bool {
	if c.response != nil || resp == nil {
		return false
	}
	c.response = resp
	return true
}

// JSON finalizes the response with a JSON-encoded body.
//
// Encoding happens before finalization, so an encoding failure leaves the
// context pending and returns an error the caller can surface.
func (c *Context) JSON(status int, v any) error {
	if c.response != nil {
		return nil
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding JSON response for type %T: %w", v, err)
	}

	resp := NewResponse(status).SetBodyBytes(body)
	resp.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response = resp

	return nil
}

// Text finalizes the response with a plain text body.
func (c *Context) Text(status int, body string) error {
	if c.response != nil {
		return nil
	}

	resp := NewResponse(status).SetBodyString(body)
	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response = resp

	return nil
}

// HTML finalizes the response with an HTML body.
func (c *Context) HTML(status int, body string) error {
	if c.response != nil {
		return nil
	}

	resp := NewResponse(status).SetBodyString(body)
	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response = resp

	return nil
}

// Redirect finalizes the response with a redirect to location.
// The status should be a 3xx code such as http.StatusFound.
func (c *Context) Redirect(status int, location string) error {
	if c.response != nil {
		return nil
	}

	resp := NewResponse(status)
	resp.Header().Set("Location", location)
	c.response = resp

	return nil
}

// NoContent finalizes the response with the given status and no body.
func (c *Context) NoContent(status int) error {
	if c.response != nil {
		return nil
	}
	c.response = NewResponse(status)
	return nil
}

// Stream finalizes the response with a lazy body stream. The stream is read
// exactly once, when the response is written to the transport; if it is also
// an io.Closer it is closed afterwards.
func (c *Context) Stream(status int, contentType string, r io.Reader) error {
	if c.response != nil {
		return nil
	}

	resp := NewResponse(status).SetBodyStream(r)
	if contentType != "" {
		resp.Header().Set("Content-Type", contentType)
	}
	c.response = resp

	return nil
}

// finalResponse returns the Response that should be sent to the transport:
// the finalized Response with any deferred headers merged on top. Returns nil
// while the context is pending.
func (c *Context) finalResponse() *Response {
	if c.response == nil {
		return nil
	}
	return c.response.withMergedHeaders(c.deferred)
}
