package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// HTTPServerMetrics holds the http_server_* instruments
type HTTPServerMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Float64Histogram
	active       metric.Int64UpDownCounter
}

func NewHTTPServerMetrics(meter metric.Meter) (*HTTPServerMetrics, error) {
	in := &instruments{meter: meter}
	m := &HTTPServerMetrics{
		requests:     in.counter("http_server_request_total", "Total number of HTTP requests", "{request}"),
		duration:     in.histogram("http_server_request_duration_seconds", "HTTP request latency distribution in seconds", "s", httpDurationBuckets),
		responseSize: in.histogram("http_server_response_size_bytes", "HTTP response body size distribution in bytes", "By", sizeBuckets),
	}
	active, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		in.errs = append(in.errs, err)
	}
	m.active = active
	if err := in.err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Begin counts a request as in flight until the returned func is called
func (m *HTTPServerMetrics) Begin(ctx context.Context) func() {
	m.active.Add(ctx, 1)
	return func() { m.active.Add(ctx, -1) }
}

// Observe records one finished request. size is skipped when not positive.
func (m *HTTPServerMetrics) Observe(ctx context.Context, method, route string, status, size int, elapsed time.Duration) {
	routeAttrs := metric.WithAttributes(AttrHTTPMethod.String(method), AttrHTTPRoute.String(route))
	m.requests.Add(ctx, 1, metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.String(strconv.Itoa(status)),
	))
	m.duration.Record(ctx, elapsed.Seconds(), routeAttrs)
	if size > 0 {
		m.responseSize.Record(ctx, float64(size), routeAttrs)
	}
}
