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
	"bytes"
	"io"
	"net/http"
)

// Response is the value a handler produces: a status code, headers, and an
// optional body. A Response is built either through Context finalization
// methods (Context.JSON and friends) or constructed directly and returned
// from a handler, in which case the dispatcher adopts it.
//
// The body is read-once. Reading it a second time panics with ErrBodyConsumed;
// that is a bug in the caller, not a recoverable condition.
//
// Headers are multi-valued via http.Header. The transport adapter writes one
// wire-level header line per value, which is what makes multiple Set-Cookie
// values come out correctly.
type Response struct {
	status   int
	header   http.Header
	body     io.Reader
	consumed bool
}

// NewResponse creates an empty Response with the given status code.
// Status codes below 100 are a programming error and panic with
// ErrInvalidStatusCode.
func NewResponse(status int) *Response {
	if status < 100 {
		panic(ErrInvalidStatusCode)
	}
	return &Response{
		status: status,
		header: make(http.Header),
	}
}

// Status returns the response status code.
func (r *Response) Status() int { return r.status }

// Header returns the response header map. Mutating it before the response is
// written to the transport is allowed.
func (r *Response) Header() http.Header { return r.header }

// SetBodyString sets the body to a fixed string and returns the Response for
// chaining.
func (r *Response) SetBodyString(s string) *Response {
	r.body = bytes.NewReader([]byte(s))
	return r
}

// SetBodyBytes sets the body to a fixed byte slice and returns the Response
// for chaining. The slice is not copied; the caller must not modify it after
// the call.
func (r *Response) SetBodyBytes(b []byte) *Response {
	r.body = bytes.NewReader(b)
	return r
}

// SetBodyStream sets the body to a lazy byte stream and returns the Response
// for chaining. If the reader is also an io.Closer it is closed after the
// body is written to the transport.
func (r *Response) SetBodyStream(rd io.Reader) *Response {
	r.body = rd
	return r
}

// HasBody reports whether a body source is attached.
func (r *Response) HasBody() bool { return r.body != nil }

// consumeBody hands out the body stream exactly once. A second call on a
// Response that carries a body panics with ErrBodyConsumed.
func (r *Response) consumeBody() io.Reader {
	if r.body == nil {
		return nil
	}
	if r.consumed {
		panic(ErrBodyConsumed)
	}
	r.consumed = true
	return r.body
}

// withMergedHeaders returns a Response identical to r except that the given
// deferred headers are merged on top, each value appended so repeated keys
// produce repeated wire lines. Body ownership moves to the returned Response;
// r itself is marked consumed.
func (r *Response) withMergedHeaders(deferred http.Header) *Response {
	if len(deferred) == 0 {
		return r
	}

	merged := &Response{
		status: r.status,
		header: make(http.Header, len(r.header)+len(deferred)),
		body:   r.consumeBody(),
	}
	for k, vs := range r.header {
		merged.header[k] = append([]string(nil), vs...)
	}
	for k, vs := range deferred {
		ck := http.CanonicalHeaderKey(k)
		merged.header[ck] = append(merged.header[ck], vs...)
	}

	return merged
}
