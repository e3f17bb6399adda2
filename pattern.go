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
	"fmt"
	"regexp"
	"strings"
)

// Params holds the path parameters extracted by a successful pattern match,
// keyed by parameter name.
type Params map[string]string

// Pattern is a compiled route path. It is built once at registration time and
// never mutated afterwards; request-time code only calls Match, so concurrent
// matching needs no synchronization.
//
// Path grammar, per "/"-delimited segment:
//
//	users          literal segment, matched exactly
//	:id            parameter, matches one or more non-slash characters
//	:id(\d+)       parameter constrained to the inline regular expression
//	*              trailing wildcard, consumes the rest of the path (slashes included)
//	*filepath      trailing wildcard bound to the named parameter
//
// A wildcard is terminal: segments after it are ignored. Paths made up only of
// literal segments skip regex compilation entirely and match by plain string
// equality, which also sidesteps any regex escaping ambiguity.
//
// Trailing slashes are not normalized ("/users" and "/users/" are distinct
// patterns) and consecutive slashes must match literally.
type Pattern struct {
	raw      string
	params   []string       // parameter names in left-to-right declaration order
	re       *regexp.Regexp // nil for purely literal patterns
	wildcard bool
}

// CompilePattern compiles a route path string into a Pattern.
//
// An invalid inline constraint — unbalanced parentheses (":id([unclosed")
// or invalid regex syntax inside them (":id([)") — returns a *PatternError
// wrapping the underlying failure. Registration
// surfaces (App.GET and siblings) panic on that error so misconfigured
// routes fail during startup, not on the first matching request.
func CompilePattern(path string) (*Pattern, error) {
	p := &Pattern{raw: path}

	var (
		frags   []string
		dynamic bool
	)

	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "*") {
			dynamic = true
			p.wildcard = true
			if len(seg) > 1 {
				p.params = append(p.params, seg[1:])
				frags = append(frags, "(.*)")
			} else {
				frags = append(frags, ".*")
			}
			// Wildcard is terminal; anything after it is undefined and ignored.
			break
		}

		if strings.HasPrefix(seg, ":") {
			dynamic = true
			name, constraint, ok, err := splitConstraint(seg[1:])
			if err != nil {
				return nil, &PatternError{Path: path, Err: err}
			}
			if ok {
				p.params = append(p.params, name)
				frags = append(frags, "("+constraint+")")
			} else {
				p.params = append(p.params, seg[1:])
				frags = append(frags, "([^/]+)")
			}
			continue
		}

		frags = append(frags, regexp.QuoteMeta(seg))
	}

	// Purely literal path: match by string equality, skip the regex engine.
	if !dynamic {
		return p, nil
	}

	re, err := regexp.Compile("^" + strings.Join(frags, "/") + "$")
	if err != nil {
		return nil, &PatternError{Path: path, Err: err}
	}
	p.re = re

	return p, nil
}

// splitConstraint splits a ":name(regex)" parameter body into its name and
// inline constraint. ok is false for a bare ":name" parameter. A body that
// contains "(" but does not form a well-formed "name(regex)" constraint is
// malformed: it must not silently degrade into a bare parameter whose name
// contains regex syntax.
func splitConstraint(body string) (name, constraint string, ok bool, err error) {
	open := strings.IndexByte(body, '(')
	if open < 0 {
		return "", "", false, nil
	}
	if open == 0 || !strings.HasSuffix(body, ")") {
		return "", "", false, fmt.Errorf("malformed parameter constraint %q", body)
	}
	return body[:open], body[open+1 : len(body)-1], true, nil
}

// Match runs the pattern against a request path.
//
// On success it returns the extracted parameters: the Nth capture group is
// bound to the Nth declared parameter name. Literal patterns return an empty
// (non-nil) Params on exact equality. On failure it returns (nil, false).
func (p *Pattern) Match(path string) (Params, bool) {
	if p.re == nil {
		if path != p.raw {
			return nil, false
		}
		return Params{}, true
	}

	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(Params, len(p.params))
	for i, name := range p.params {
		params[name] = m[i+1]
	}

	return params, true
}

// Raw returns the original path string the pattern was compiled from.
func (p *Pattern) Raw() string { return p.raw }

// ParamNames returns the parameter names in declaration order.
// The returned slice must not be modified.
func (p *Pattern) ParamNames() []string { return p.params }

// HasWildcard reports whether the pattern ends in a wildcard segment.
func (p *Pattern) HasWildcard() bool { return p.wildcard }
