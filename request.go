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

// This file contains request-side accessors on Context: query parameters and
// request headers. Path parameters live in context.go next to their storage.

import "fmt"

// Query returns the first value of the named query parameter, or the empty
// string when absent. Use QueryParam when absence must be distinguishable.
func (c *Context) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

// QueryDefault returns the first value of the named query parameter, or def
// when the parameter is absent.
func (c *Context) QueryDefault(name, def string) string {
	values, ok := c.request.URL.Query()[name]
	if !ok || len(values) == 0 {
		return def
	}
	return values[0]
}

// QueryParam returns the first value of a required query parameter. Absence
// is a recoverable error wrapping ErrMissingQueryParameter, distinct from a
// parameter present with an empty value.
func (c *Context) QueryParam(name string) (string, error) {
	values, ok := c.request.URL.Query()[name]
	if !ok || len(values) == 0 {
		return "", fmt.Errorf("%w: %q", ErrMissingQueryParameter, name)
	}
	return values[0], nil
}

// RequestHeader returns the first value of the named request header, or the
// empty string when absent.
func (c *Context) RequestHeader(name string) string {
	return c.request.Header.Get(name)
}
