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

// Route is one registered (method, pattern, handler) entry. Routes are
// created at registration time and immutable afterwards; they live for the
// lifetime of the App.
type Route struct {
	// Method is matched by exact string comparison against the request
	// method; no normalization is applied beyond what the caller provides.
	Method string

	// Pattern is the compiled path pattern.
	Pattern *Pattern

	// Handler is the terminal handler invoked when the route matches.
	Handler HandlerFunc

	// Metadata is opaque data attached at registration. The core never
	// interprets it; collaborator middleware can read it via the resolved
	// route.
	Metadata any
}

// RouteInfo is a read-only snapshot of a registered route, for introspection
// and startup logging.
type RouteInfo struct {
	Method string
	Path   string
}

// routeTable is an ordered route list with first-match-wins resolution.
//
// Priority is registration order, not specificity: register "/users/me"
// before "/users/:id" or the parameter route shadows it. There is no trie or
// radix optimization — route tables are small (tens to low hundreds of
// entries) and request cost is dominated by I/O, not matching.
//
// The table is populated during setup and read-only once serving starts, so
// concurrent lookups need no lock.
type routeTable struct {
	routes []*Route
}

// add appends a route. No deduplication or conflict detection: shadowing is
// allowed and is the registrant's responsibility.
func (t *routeTable) add(r *Route) {
	t.routes = append(t.routes, r)
}

// resolve scans registered routes in order and returns the first whose method
// and pattern both match, along with the extracted parameters. Returns
// (nil, nil) when nothing matches.
func (t *routeTable) resolve(method, path string) (*Route, Params) {
	for _, r := range t.routes {
		if r.Method != method {
			continue
		}
		if params, ok := r.Pattern.Match(path); ok {
			return r, params
		}
	}
	return nil, nil
}

// info returns a snapshot of all registered routes in registration order.
func (t *routeTable) info() []RouteInfo {
	out := make([]RouteInfo, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, RouteInfo{Method: r.Method, Path: r.Pattern.Raw()})
	}
	return out
}
