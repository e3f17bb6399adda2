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

// HandlerFunc is the terminal handler signature: the resolved route handler
// or the not-found fallback. A handler may finalize through Context methods
// and return (nil, nil), or construct and return a Response directly — the
// dispatcher adopts a returned Response when the context is still pending.
type HandlerFunc func(*Context) (*Response, error)

// Next resumes the rest of the middleware chain. Awaiting it (calling it)
// means "everything deeper has run". A middleware must call it at most once.
type Next func() error

// Middleware wraps the rest of the chain. Code before the next() call runs
// outside-in in registration order; code after it runs inside-out, in reverse
// registration order (the onion model). Each middleware must either call
// next() or finalize the context's response itself; doing both is allowed
// since finalization is first-wins.
type Middleware func(*Context, Next) error

// dispatcher executes one request's middleware chain. All of its state is
// request-local: the cursor, the context, and the deferred-header table live
// exactly as long as the request. The middleware slice itself is shared
// read-only state owned by the App.
type dispatcher struct {
	ctx      *Context
	chain    []Middleware
	terminal HandlerFunc

	// index is the highest chain position dispatched so far. It only moves
	// forward; a step at a position at or below it means some middleware
	// called next() twice.
	index int
}

// dispatch runs the middleware chain and terminal handler for a single
// request and returns the Response to send to the transport, with deferred
// headers merged on top of whatever Response was finalized.
//
// Errors returned by middleware or the handler propagate upward unmodified;
// the façade, not the dispatcher, decides what to do with them. The two
// framework-contract violations — next() called twice and a chain that
// completes without finalizing — panic with ErrNextCalledTwice and
// ErrChainNotFinalized respectively. They indicate malformed middleware, not
// a request-specific failure, and are never routed to the user error handler.
func dispatch(c *Context, chain []Middleware, terminal HandlerFunc) (*Response, error) {
	d := &dispatcher{ctx: c, chain: chain, terminal: terminal, index: -1}

	if err := d.step(0); err != nil {
		return nil, err
	}

	return c.finalResponse(), nil
}

// step dispatches the chain position pos and everything deeper.
func (d *dispatcher) step(pos int) error {
	// Re-entrancy guard: the cursor is monotonic. Revisiting a position means
	// a middleware invoked its continuation twice.
	if pos <= d.index {
		panic(ErrNextCalledTwice)
	}
	d.index = pos

	// Short-circuit: an earlier middleware already finalized a response, so
	// deeper middleware and the handler never run.
	if d.ctx.Finalized() {
		return nil
	}

	if pos < len(d.chain) {
		next := func() error { return d.step(pos + 1) }
		if err := d.chain[pos](d.ctx, next); err != nil {
			return err
		}
		// A middleware that returns cleanly must have finalized the response,
		// either itself or by calling next().
		if !d.ctx.Finalized() {
			panic(ErrChainNotFinalized)
		}
		return nil
	}

	// Terminal step: the middleware list is exhausted.
	resp, err := d.terminal(d.ctx)
	if err != nil {
		return err
	}
	if resp != nil {
		// Direct-return style: adopt the handler's Response unless a Context
		// finalization method already set one.
		d.ctx.Finalize(resp)
	}
	if !d.ctx.Finalized() {
		panic(ErrChainNotFinalized)
	}

	return nil
}
