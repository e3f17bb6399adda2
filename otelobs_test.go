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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTelObserver_Defaults(t *testing.T) {
	obs, err := NewOTelObserver()
	require.NoError(t, err)
	require.NotNil(t, obs)

	assert.Nil(t, obs.MetricsHandler(), "no registry without the prometheus exporter")
}

func TestNewOTelObserver_PrometheusScrape(t *testing.T) {
	obs, err := NewOTelObserver(WithPrometheusExporter())
	require.NoError(t, err)

	handler := obs.MetricsHandler()
	require.NotNil(t, handler)

	app := MustNew(WithObservability(obs))
	app.GET("/users/:id", textHandler(http.StatusOK, "ok"))

	doRequest(app, http.MethodGet, "/users/1")
	doRequest(app, http.MethodGet, "/users/2")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_server_request_count")
	assert.Contains(t, body, `http_route="/users/:id"`)
}

func TestOTelObserver_ExcludedPaths(t *testing.T) {
	obs, err := NewOTelObserver(WithExcludedPaths("/health"))
	require.NoError(t, err)

	ctx, state := obs.OnRequestStart(context.Background(),
		httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotNil(t, ctx)
	assert.Nil(t, state, "excluded paths produce no observer state")

	_, state = obs.OnRequestStart(context.Background(),
		httptest.NewRequest(http.MethodGet, "/work", nil))
	require.NotNil(t, state)

	// The end hook with real state must not panic even on the noop stack.
	resp := NewResponse(http.StatusOK)
	assert.NotPanics(t, func() {
		obs.OnRequestEnd(context.Background(), state, resp, "/work", time.Millisecond)
	})
}

func TestApp_ObserverExcludedPathSkipsEndHook(t *testing.T) {
	obs, err := NewOTelObserver(WithExcludedPaths("/health"))
	require.NoError(t, err)

	app := MustNew(WithObservability(obs))
	app.GET("/health", textHandler(http.StatusOK, "ok"))

	// Nil observer state means the App never calls the end hook; the request
	// itself is unaffected.
	rec := doRequest(app, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestObserver_NotFoundUsesSentinelPattern(t *testing.T) {
	var endPattern string
	obs := &recordingObserver{
		onEnd: func(pattern string) { endPattern = pattern },
	}

	app := MustNew(WithObservability(obs))
	doRequest(app, http.MethodGet, "/nowhere")

	assert.Equal(t, patternNotFound, endPattern,
		"unmatched paths report the sentinel, keeping metric cardinality bounded")
}

// recordingObserver is a minimal Observer for assertions on the hook wiring.
type recordingObserver struct {
	onEnd func(pattern string)
}

func (r *recordingObserver) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	return ctx, struct{}{}
}

func (r *recordingObserver) OnRequestEnd(ctx context.Context, state any, resp *Response, routePattern string, elapsed time.Duration) {
	r.onEnd(routePattern)
}
