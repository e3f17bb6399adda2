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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target string) *Context {
	t.Helper()
	return newContext(httptest.NewRequest(method, target, nil), nil)
}

func TestContext_ExactlyOnceFinalization(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	require.False(t, c.Finalized())

	require.NoError(t, c.JSON(http.StatusOK, map[string]string{"a": "1"}))
	require.True(t, c.Finalized())

	// A second response-producing call is a silent no-op.
	require.NoError(t, c.Text(http.StatusTeapot, "nope"))

	resp := c.Response()
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.Status())
	assert.Equal(t, "application/json; charset=utf-8", resp.Header().Get("Content-Type"))

	data, err := io.ReadAll(resp.consumeBody())
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1"}`, string(data))
}

func TestContext_FinalizeAdoptsResponseOnce(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")

	first := NewResponse(http.StatusCreated)
	second := NewResponse(http.StatusAccepted)

	assert.True(t, c.Finalize(first))
	assert.False(t, c.Finalize(second), "later finalization attempts are no-ops")
	assert.Same(t, first, c.Response())
}

func TestContext_FinalizeNil(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	assert.False(t, c.Finalize(nil))
	assert.False(t, c.Finalized())
}

func TestContext_JSONEncodeFailureLeavesPending(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")

	err := c.JSON(http.StatusOK, make(chan int))
	require.Error(t, err)
	assert.False(t, c.Finalized(), "a failed encode must not finalize")
}

func TestContext_Text(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	require.NoError(t, c.Text(http.StatusOK, "hi"))

	resp := c.Response()
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
	data, _ := io.ReadAll(resp.consumeBody())
	assert.Equal(t, "hi", string(data))
}

func TestContext_HTML(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	require.NoError(t, c.HTML(http.StatusOK, "<h1>hi</h1>"))
	assert.Equal(t, "text/html; charset=utf-8", c.Response().Header().Get("Content-Type"))
}

func TestContext_Redirect(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/old")
	require.NoError(t, c.Redirect(http.StatusFound, "/new"))

	resp := c.Response()
	assert.Equal(t, http.StatusFound, resp.Status())
	assert.Equal(t, "/new", resp.Header().Get("Location"))
	assert.False(t, resp.HasBody())
}

func TestContext_NoContent(t *testing.T) {
	c := newTestContext(t, http.MethodDelete, "/x")
	require.NoError(t, c.NoContent(http.StatusNoContent))
	assert.Equal(t, http.StatusNoContent, c.Response().Status())
}

func TestContext_Stream(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	require.NoError(t, c.Stream(http.StatusOK, "application/octet-stream", strings.NewReader("raw")))

	resp := c.Response()
	assert.Equal(t, "application/octet-stream", resp.Header().Get("Content-Type"))
	data, _ := io.ReadAll(resp.consumeBody())
	assert.Equal(t, "raw", string(data))
}

func TestContext_Param(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/users/42")
	c.setParams(Params{"id": "42", "empty": ""})

	id, err := c.Param("id")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	// Present-but-empty is not an error; absence is.
	empty, err := c.Param("empty")
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	_, err = c.Param("missing")
	require.ErrorIs(t, err, ErrMissingRouteParameter)
}

func TestContext_SetGet(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")

	c.Set("user", "ada")
	v, ok := c.Get("user")
	require.True(t, ok)
	assert.Equal(t, "ada", v)
	assert.Equal(t, "ada", c.MustGet("user"))

	_, ok = c.Get("absent")
	assert.False(t, ok)
	assert.Panics(t, func() { c.MustGet("absent") })
}

func TestContext_ParamsDoNotCollideWithUserKeys(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	c.setParams(Params{"id": "7"})
	c.Set("id", "user-value")

	id, err := c.Param("id")
	require.NoError(t, err)
	assert.Equal(t, "7", id)

	v, ok := c.Get("id")
	require.True(t, ok)
	assert.Equal(t, "user-value", v)
}

func TestContext_ParamNonStringValueIsAbsent(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	c.Set(paramKeyPrefix+"id", 123)

	assert.NotPanics(t, func() {
		_, err := c.Param("id")
		require.ErrorIs(t, err, ErrMissingRouteParameter)
	})
}

func TestContext_DeferredHeaders(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")

	c.Header("X-Trace", "1")
	require.NoError(t, c.Text(http.StatusOK, "ok"))
	c.Header("X-After", "2")

	final := c.finalResponse()
	require.NotNil(t, final)
	assert.Equal(t, "1", final.Header().Get("X-Trace"))
	assert.Equal(t, "2", final.Header().Get("X-After"),
		"headers staged after finalization still land on the response")
}

func TestContext_FinalResponsePending(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	assert.Nil(t, c.finalResponse())
}

func TestContext_LoggerDefaultsToNoop(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/x")
	assert.Same(t, noopLogger, c.Logger())
}

func TestContext_QueryParams(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/search?q=weft&empty=")

	assert.Equal(t, "weft", c.Query("q"))
	assert.Equal(t, "", c.Query("absent"))
	assert.Equal(t, "fallback", c.QueryDefault("absent", "fallback"))
	assert.Equal(t, "", c.QueryDefault("empty", "fallback"),
		"present-but-empty must not trigger the default")

	q, err := c.QueryParam("q")
	require.NoError(t, err)
	assert.Equal(t, "weft", q)

	_, err = c.QueryParam("absent")
	require.ErrorIs(t, err, ErrMissingQueryParameter)

	empty, err := c.QueryParam("empty")
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestContext_RequestHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Custom", "yes")
	c := newContext(req, nil)

	assert.Equal(t, "yes", c.RequestHeader("X-Custom"))
	assert.Equal(t, "", c.RequestHeader("X-Missing"))
}
