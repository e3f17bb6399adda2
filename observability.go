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
	"context"
	"net/http"
	"time"
)

// Observer provides observability lifecycle hooks around each request.
// Implementations typically combine metrics, distributed tracing, and access
// logging; NewOTelObserver is the built-in OpenTelemetry implementation.
//
// Lifecycle:
//
//  1. The App calls OnRequestStart(ctx, req) before routing. The returned
//     context is always attached to the request, so context enrichment
//     (trace propagation for downstream calls) applies even to excluded
//     requests.
//  2. If the returned state is nil the request is excluded: OnRequestEnd is
//     not called and no metrics, spans, or access logs are recorded for it.
//  3. After the response is written, the App calls OnRequestEnd with the
//     opaque state, the Response that went out, the matched route pattern,
//     and the elapsed wall time.
//
// routePattern is the registered pattern ("/users/:id"), or "_not_found" when
// no route matched. Implementations should key metrics and spans on it, not
// on the raw path, to keep cardinality bounded.
//
// Thread safety: all methods must be safe for concurrent use.
type Observer interface {
	// OnRequestStart is called before routing begins. It returns an enriched
	// context and an opaque state token; nil state excludes the request from
	// end-of-request recording.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// OnRequestEnd is called after the response has been written, only when
	// OnRequestStart returned non-nil state.
	OnRequestEnd(ctx context.Context, state any, resp *Response, routePattern string, elapsed time.Duration)
}
