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
	"errors"
	"fmt"
)

var (
	// ErrNextCalledTwice indicates that a middleware invoked next() more than once.
	// This is a framework-contract violation and is raised as a panic, never as a
	// returned error: the chain itself is malformed, not the request.
	ErrNextCalledTwice = errors.New("next() called multiple times")

	// ErrChainNotFinalized indicates that the middleware chain completed without
	// any middleware or handler finalizing a response. Like ErrNextCalledTwice,
	// it is raised as a panic.
	ErrChainNotFinalized = errors.New("middleware chain completed without finalizing a response")

	// ErrBodyConsumed indicates that a response body stream was read a second time.
	// Bodies are read-once; a second read is a programming error and panics.
	ErrBodyConsumed = errors.New("response body already consumed")

	// ErrInvalidStatusCode indicates that a response was constructed with a
	// status code below 100.
	ErrInvalidStatusCode = errors.New("response status code must be >= 100")

	// ErrMissingRouteParameter indicates that a required parameter for the route is missing.
	ErrMissingRouteParameter = errors.New("missing required route parameter")

	// ErrMissingQueryParameter indicates that a required query parameter is missing.
	ErrMissingQueryParameter = errors.New("missing required query parameter")

	// ErrServerTimeoutInvalid indicates that a server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")

	// ErrNilHandler indicates that a route was registered with a nil handler.
	ErrNilHandler = errors.New("route handler must not be nil")
)

// PatternError reports a route path that failed to compile, typically because
// an inline ":name(regex)" constraint contains invalid regular expression
// syntax. It is raised at registration time so a malformed route fails during
// application startup rather than on the first matching request.
type PatternError struct {
	// Path is the route path string that failed to compile.
	Path string

	// Err is the underlying cause: an unbalanced constraint, or a
	// *syntax.Error from regexp.Compile for invalid regex inside one.
	Err error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("compiling route pattern %q: %v", e.Path, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// PanicError wraps a recovered handler panic so it can travel the ordinary
// error-handler path while preserving the original panic value.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the goroutine stack captured at recovery time.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// IsProtocolViolation reports whether a recovered panic value is one of the
// dispatcher's framework-contract violations (ErrNextCalledTwice or
// ErrChainNotFinalized). Recovery wrappers, including the recovery middleware,
// must re-panic such values instead of converting them into HTTP errors.
func IsProtocolViolation(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	return errors.Is(err, ErrNextCalledTwice) || errors.Is(err, ErrChainNotFinalized)
}
