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

package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-http/weft"
	"github.com/weft-http/weft/middleware/requestid"
)

func newApp(opts ...requestid.Option) (*weft.App, *string) {
	var captured string
	app := weft.MustNew()
	app.Use(requestid.New(opts...))
	app.GET("/x", func(c *weft.Context) (*weft.Response, error) {
		captured = requestid.FromContext(c)
		return nil, c.NoContent(http.StatusOK)
	})
	return app, &captured
}

func TestRequestID_Generated(t *testing.T) {
	app, captured := newApp()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	id := rec.Header().Get(requestid.Header)
	require.NotEmpty(t, id)
	assert.Equal(t, id, *captured, "context value and response header agree")

	_, err := uuid.Parse(id)
	assert.NoError(t, err, "default generator produces UUIDs")
}

func TestRequestID_ClientProvidedReused(t *testing.T) {
	app, captured := newApp()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestid.Header, "client-id-123")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-123", rec.Header().Get(requestid.Header))
	assert.Equal(t, "client-id-123", *captured)
}

func TestRequestID_ClientIDDisallowed(t *testing.T) {
	app, captured := newApp(requestid.WithAllowClientID(false))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestid.Header, "untrusted")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.NotEqual(t, "untrusted", rec.Header().Get(requestid.Header))
	assert.NotEmpty(t, *captured)
}

func TestRequestID_CustomHeaderAndGenerator(t *testing.T) {
	app, captured := newApp(
		requestid.WithHeader("X-Correlation-ID"),
		requestid.WithGenerator(func() string { return "fixed" }),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "fixed", rec.Header().Get("X-Correlation-ID"))
	assert.Empty(t, rec.Header().Get(requestid.Header))
	assert.Equal(t, "fixed", *captured)
}

func TestRequestID_HeaderSurvivesDeepFinalization(t *testing.T) {
	// The handler finalizes before the middleware's after phase; the deferred
	// header table still delivers the ID onto the wire.
	app := weft.MustNew()
	app.Use(requestid.New(requestid.WithGenerator(func() string { return "deep" })))
	app.GET("/x", func(c *weft.Context) (*weft.Response, error) {
		return weft.NewResponse(http.StatusCreated).SetBodyString("done"), nil
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "deep", rec.Header().Get(requestid.Header))
}

func TestRequestID_FromContextWithoutMiddleware(t *testing.T) {
	app := weft.MustNew()
	app.GET("/x", func(c *weft.Context) (*weft.Response, error) {
		assert.Empty(t, requestid.FromContext(c))
		return nil, c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
