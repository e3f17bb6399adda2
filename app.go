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
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// patternNotFound is the route pattern reported to observability when no
// route matched. A sentinel keeps unmatched paths from exploding metric
// cardinality.
const patternNotFound = "_not_found"

// ErrorHandler receives an error raised during dispatch together with a
// fresh, still-pending Context for the same request. It is expected to
// produce a Response, either by returning one or by calling a Context
// finalization method. If it fails too, the App falls back to a generic 500.
type ErrorHandler func(*Context, error) (*Response, error)

// App is the application façade. It owns the route table and middleware
// list, resolves a route for each inbound request, and runs the middleware
// chain dispatcher.
//
// Routes and middleware are registered during setup and treated as read-only
// once serving begins; per-request traversal state is always request-local,
// so the App is safe for concurrent use without additional locking.
//
// Example:
//
//	app := weft.MustNew()
//	app.GET("/users/:id", func(c *weft.Context) (*weft.Response, error) {
//	    id, err := c.Param("id")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return nil, c.JSON(http.StatusOK, map[string]string{"id": id})
//	})
//	app.Serve(":8080")
type App struct {
	routes     routeTable
	middleware []Middleware

	notFound   HandlerFunc
	errHandler ErrorHandler

	logger   *slog.Logger
	observer Observer

	enableH2C bool
	timeouts  *serverTimeouts
}

// New creates an App with optional configuration. Configuration is validated
// immediately so a misconfigured application fails at startup, not at
// request time.
//
// For a version that panics instead of returning an error, use MustNew.
func New(opts ...Option) (*App, error) {
	a := &App{
		logger:   noopLogger,
		timeouts: defaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// MustNew is like New but panics when configuration is invalid.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic("weft: " + err.Error())
	}
	return a
}

func (a *App) validate() error {
	t := a.timeouts
	if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
		return ErrServerTimeoutInvalid
	}
	return nil
}

// GET registers a route matching GET requests to the given path pattern.
// The optional metadata value is attached to the route opaquely.
//
// A malformed pattern (invalid inline regex constraint) panics with a
// *PatternError at registration time.
func (a *App) GET(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodGet, path, h, metadata...)
}

// POST registers a route matching POST requests to the given path pattern.
func (a *App) POST(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodPost, path, h, metadata...)
}

// PUT registers a route matching PUT requests to the given path pattern.
func (a *App) PUT(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodPut, path, h, metadata...)
}

// DELETE registers a route matching DELETE requests to the given path pattern.
func (a *App) DELETE(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodDelete, path, h, metadata...)
}

// PATCH registers a route matching PATCH requests to the given path pattern.
func (a *App) PATCH(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodPatch, path, h, metadata...)
}

// HEAD registers a route matching HEAD requests to the given path pattern.
func (a *App) HEAD(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodHead, path, h, metadata...)
}

// OPTIONS registers a route matching OPTIONS requests to the given path pattern.
func (a *App) OPTIONS(path string, h HandlerFunc, metadata ...any) *Route {
	return a.Handle(http.MethodOptions, path, h, metadata...)
}

// Handle registers a route for an arbitrary method string. The method is
// stored as given and matched by exact string comparison.
func (a *App) Handle(method, path string, h HandlerFunc, metadata ...any) *Route {
	if h == nil {
		panic(ErrNilHandler)
	}

	pattern, err := CompilePattern(path)
	if err != nil {
		// Fail fast: a malformed route is a startup bug, not a request error.
		panic(err)
	}

	r := &Route{Method: method, Pattern: pattern, Handler: h}
	if len(metadata) > 0 {
		r.Metadata = metadata[0]
	}
	a.routes.add(r)

	return r
}

// Use appends middleware to the global chain. Before-phase code runs in
// registration order, after-phase code in reverse registration order.
func (a *App) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// Route mounts a sub-application at basePath by copying every route from sub
// into this App with basePath prefixed onto each path string. Only the
// prefix is trailing-slash-normalized; route paths are taken verbatim.
//
// The sub-application's middleware is deliberately NOT carried over:
// middleware composition across mount boundaries is not automatic. Attach
// shared middleware to the parent, or bake it into the sub-app's handlers.
func (a *App) Route(basePath string, sub *App) {
	if sub == nil {
		return
	}

	prefix := strings.TrimSuffix(basePath, "/")

	for _, r := range sub.routes.routes {
		path := prefix + r.Pattern.Raw()
		if r.Pattern.Raw() == "/" {
			path = prefix
		}
		a.Handle(r.Method, path, r.Handler, r.Metadata)
	}
}

// NotFound sets the handler invoked when no route matches. Absent a custom
// handler, unmatched requests produce a plain 404 with the standard status
// text body.
func (a *App) NotFound(h HandlerFunc) {
	a.notFound = h
}

// OnError sets the handler invoked when dispatch returns an error or a
// handler panics. Absent a custom handler, such requests produce a plain 500.
func (a *App) OnError(h ErrorHandler) {
	a.errHandler = h
}

// Routes returns a snapshot of all registered routes in registration order.
func (a *App) Routes() []RouteInfo {
	return a.routes.info()
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// ServeHTTP implements http.Handler. For each request it:
//
//  1. Runs the observability start hook (context enrichment, span creation).
//  2. Creates a fresh Context and resolves a route; extracted parameters are
//     injected into the Context before the chain runs.
//  3. Dispatches the middleware chain with the route handler (or not-found
//     fallback) as the terminal step.
//  4. Routes dispatch errors and recovered handler panics through the error
//     path, guaranteeing a Response is always produced.
//  5. Writes the Response — status, headers (one wire line per value), and
//     the read-once body — back to the transport.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	ctx := req.Context()

	var obsState any
	if a.observer != nil {
		enriched, state := a.observer.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		obsState = state
	}

	c := newContext(req, a.logger)

	terminal := a.notFound
	if terminal == nil {
		terminal = defaultNotFound
	}
	pattern := patternNotFound

	if route, params := a.routes.resolve(req.Method, req.URL.Path); route != nil {
		c.setParams(params)
		terminal = route.Handler
		pattern = route.Pattern.Raw()
	}
	c.routePattern = pattern

	resp := a.dispatchRequest(c, terminal)
	a.writeResponse(w, resp)

	if a.observer != nil && obsState != nil {
		a.observer.OnRequestEnd(ctx, obsState, resp, pattern, time.Since(start))
	}
}

// dispatchRequest runs the chain and converts any failure into a Response.
// It always returns a non-nil Response.
func (a *App) dispatchRequest(c *Context, terminal HandlerFunc) *Response {
	resp, err := a.runChain(c, terminal)
	if err == nil {
		return resp
	}
	return a.handleError(c, err)
}

// runChain dispatches with top-level panic recovery. Handler panics become
// *PanicError values on the ordinary error path; the dispatcher's own
// protocol violations are re-panicked because they indicate malformed
// middleware, not a request-specific failure.
func (a *App) runChain(c *Context, terminal HandlerFunc) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if IsProtocolViolation(rec) {
				panic(rec)
			}
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	return dispatch(c, a.middleware, terminal)
}

// handleError produces the Response for a failed dispatch, per the
// propagation policy: the user error handler gets the error and a fresh
// pending Context; if it fails too — or produces nothing — both errors are
// logged and an unconditional generic 500 goes out.
func (a *App) handleError(c *Context, dispatchErr error) *Response {
	if a.errHandler == nil {
		a.logger.Error("request failed",
			"method", c.request.Method,
			"path", c.request.URL.Path,
			"error", dispatchErr,
		)
		return genericServerError()
	}

	ec := newContext(c.request, a.logger)
	ec.routePattern = c.routePattern

	resp, handlerErr := a.invokeErrorHandler(ec, dispatchErr)
	if handlerErr == nil {
		if resp != nil {
			ec.Finalize(resp)
		}
		if final := ec.finalResponse(); final != nil {
			return final
		}
		handlerErr = ErrChainNotFinalized
	}

	a.logger.Error("error handler failed",
		"method", c.request.Method,
		"path", c.request.URL.Path,
		"error", dispatchErr,
		"handler_error", handlerErr,
	)

	return genericServerError()
}

// invokeErrorHandler calls the user error handler with panic recovery, so a
// buggy error handler still results in a response being sent.
func (a *App) invokeErrorHandler(ec *Context, dispatchErr error) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	return a.errHandler(ec, dispatchErr)
}

// writeResponse translates the finalized Response back into platform-level
// output. Multi-valued headers keep their value slices, so http.Header
// emits one wire-level line per value (the Set-Cookie case).
func (a *App) writeResponse(w http.ResponseWriter, resp *Response) {
	h := w.Header()
	for k, vs := range resp.Header() {
		h[k] = vs
	}
	w.WriteHeader(resp.Status())

	body := resp.consumeBody()
	if body == nil {
		return
	}
	if _, err := io.Copy(w, body); err != nil {
		// Client disconnects land here; nothing to send anymore.
		a.logger.Debug("writing response body", "error", err)
	}
	if closer, ok := body.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Debug("closing response body", "error", err)
		}
	}
}

// defaultNotFound is the built-in fallback for unmatched routes.
func defaultNotFound(c *Context) (*Response, error) {
	return nil, c.Text(http.StatusNotFound, "404 "+http.StatusText(http.StatusNotFound))
}

// genericServerError builds the unconditional 500 used when error handling
// itself cannot produce a response.
func genericServerError() *Response {
	resp := NewResponse(http.StatusInternalServerError)
	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	return resp.SetBodyString("500 " + http.StatusText(http.StatusInternalServerError))
}
