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

// Package weft is an HTTP application framework built around three ideas:
// a route pattern compiler, an onion-model middleware chain, and an
// exactly-once response finalization protocol.
//
// Routes are path patterns compiled at registration time:
//
//	app := weft.MustNew()
//	app.GET("/users/:id(\\d+)", getUser)
//	app.GET("/static/*filepath", serveAsset)
//
// Literal patterns match by string equality; parameterized patterns compile
// to an anchored regular expression. Resolution is a first-match-wins linear
// scan in registration order — register specific paths before general ones.
//
// Middleware composes as an onion: code before next() runs outside-in, code
// after next() runs inside-out. A middleware either calls next() exactly
// once or finalizes the response itself:
//
//	app.Use(func(c *weft.Context, next weft.Next) error {
//	    start := time.Now()
//	    if err := next(); err != nil {
//	        return err
//	    }
//	    c.Header("X-Elapsed", time.Since(start).String())
//	    return nil
//	})
//
// The Header call above works even though a deeper handler already finalized
// the response: headers staged on the Context are merged into the finalized
// Response after the chain completes.
//
// A Context's response is finalized exactly once; the first finalization
// wins and later attempts are no-ops. That is what makes short-circuiting
// middleware (finalize, skip next) and direct-return handlers compose
// without special cases.
package weft
