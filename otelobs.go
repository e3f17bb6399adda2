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
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName identifies this library in meters and tracers.
const instrumentationName = "github.com/weft-http/weft"

// ObserverOption defines functional options for OTelObserver configuration.
type ObserverOption func(*otelObserverConfig)

type otelObserverConfig struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	usePrometheus  bool
	excludedPaths  []string
}

// WithMeterProvider sets the OpenTelemetry meter provider used for request
// metrics. Mutually exclusive with WithPrometheusExporter.
func WithMeterProvider(mp metric.MeterProvider) ObserverOption {
	return func(cfg *otelObserverConfig) {
		cfg.meterProvider = mp
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for
// per-request spans. When unset, spans are not recorded.
func WithTracerProvider(tp trace.TracerProvider) ObserverOption {
	return func(cfg *otelObserverConfig) {
		cfg.tracerProvider = tp
	}
}

// WithPrometheusExporter wires the observer's metrics to a dedicated
// Prometheus registry via the OpenTelemetry Prometheus exporter. Expose the
// scrape endpoint with (*OTelObserver).MetricsHandler.
func WithPrometheusExporter() ObserverOption {
	return func(cfg *otelObserverConfig) {
		cfg.usePrometheus = true
	}
}

// WithExcludedPaths excludes exact request paths (for example "/health",
// "/metrics") from metrics and spans. Context enrichment still applies on
// excluded paths.
func WithExcludedPaths(paths ...string) ObserverOption {
	return func(cfg *otelObserverConfig) {
		cfg.excludedPaths = append(cfg.excludedPaths, paths...)
	}
}

// OTelObserver is the built-in Observer. It records a request counter and a
// duration histogram keyed by method, route pattern, and status class, and
// opens a span per request when a tracer provider is configured.
type OTelObserver struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram

	registry *prometheus.Registry
	excluded map[string]struct{}
}

// otelState carries per-request observer state between the start and end
// hooks. It is opaque to the App.
type otelState struct {
	span   trace.Span
	method string
}

// NewOTelObserver builds an OpenTelemetry-backed Observer.
//
// Without options it records metrics against a no-op meter and no spans;
// pass WithPrometheusExporter (or WithMeterProvider) and WithTracerProvider
// to make it record for real.
func NewOTelObserver(opts ...ObserverOption) (*OTelObserver, error) {
	cfg := &otelObserverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	o := &OTelObserver{
		excluded: make(map[string]struct{}, len(cfg.excludedPaths)),
	}
	for _, p := range cfg.excludedPaths {
		o.excluded[p] = struct{}{}
	}

	mp := cfg.meterProvider
	if cfg.usePrometheus {
		o.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(o.registry))
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	var err error
	o.requests, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	o.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	if cfg.tracerProvider != nil {
		o.tracer = cfg.tracerProvider.Tracer(instrumentationName)
	} else {
		o.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	return o, nil
}

// MetricsHandler returns the Prometheus scrape handler backed by the
// observer's registry, or nil when the observer was not built with
// WithPrometheusExporter.
func (o *OTelObserver) MetricsHandler() http.Handler {
	if o.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// OnRequestStart implements Observer.
// Excluded paths get no span and nil state, so nothing is recorded for them.
func (o *OTelObserver) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if _, ok := o.excluded[req.URL.Path]; ok {
		return ctx, nil
	}

	ctx, span := o.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)

	return ctx, &otelState{span: span, method: req.Method}
}

// OnRequestEnd implements Observer.
func (o *OTelObserver) OnRequestEnd(ctx context.Context, state any, resp *Response, routePattern string, elapsed time.Duration) {
	st, ok := state.(*otelState)
	if !ok {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.request.method", st.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", resp.Status()),
	)
	o.requests.Add(ctx, 1, attrs)
	o.duration.Record(ctx, elapsed.Seconds(), attrs)

	st.span.SetName(routePattern)
	st.span.SetAttributes(
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", resp.Status()),
	)
	st.span.End()
}
