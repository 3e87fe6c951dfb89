// Package observe provides application-wide observability primitives for
// steamscout: OpenTelemetry metrics and HTTP middleware.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all steamscout metrics.
const meterName = "github.com/MrWong99/steamscout"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ToolCallDuration tracks end-to-end tool handler latency. Use with
	// attribute.String("tool", ...).
	ToolCallDuration metric.Float64Histogram

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// UpstreamRequests counts Steam API requests. Use with attributes:
	//   attribute.String("endpoint", ...), attribute.String("status", ...)
	UpstreamRequests metric.Int64Counter

	// UpstreamDuration tracks Steam API request latency by endpoint.
	UpstreamDuration metric.Float64Histogram

	// UpstreamErrors counts failed Steam API requests by endpoint.
	UpstreamErrors metric.Int64Counter

	// CacheLookups counts accessor cache lookups. Use with attributes:
	//   attribute.String("cache", ...), attribute.String("result", "hit"|"miss")
	CacheLookups metric.Int64Counter

	// HTTPRequestDuration tracks ops-endpoint request time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The upper
// buckets are generous because a cold full-catalog browse is paced by the
// Steam rate limit and can take minutes.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ToolCallDuration, err = m.Float64Histogram("steamscout.tool.duration",
		metric.WithDescription("End-to-end latency of MCP tool handlers."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.UpstreamDuration, err = m.Float64Histogram("steamscout.steam.request.duration",
		metric.WithDescription("Latency of Steam API requests by endpoint."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("steamscout.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ToolCalls, err = m.Int64Counter("steamscout.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamRequests, err = m.Int64Counter("steamscout.steam.requests",
		metric.WithDescription("Total Steam API requests by endpoint and status."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamErrors, err = m.Int64Counter("steamscout.steam.errors",
		metric.WithDescription("Total failed Steam API requests by endpoint."),
	); err != nil {
		return nil, err
	}
	if met.CacheLookups, err = m.Int64Counter("steamscout.cache.lookups",
		metric.WithDescription("Accessor cache lookups by cache name and result."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordToolCall records one tool invocation: a counter increment with the
// outcome status and a duration sample.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, d time.Duration) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
	m.ToolCallDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("tool", tool)),
	)
}

// RecordUpstreamRequest records one Steam API request with its outcome and
// latency, incrementing the error counter on failure.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, endpoint string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.UpstreamErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("endpoint", endpoint)),
		)
	}
	m.UpstreamRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		),
	)
	m.UpstreamDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("endpoint", endpoint)),
	)
}

// RecordCacheLookup records one accessor cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("cache", cache),
			attribute.String("result", result),
		),
	)
}
