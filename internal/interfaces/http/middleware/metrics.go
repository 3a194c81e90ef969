package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func passThrough(c *gin.Context) { c.Next() }

// HTTPMetrics records request count, latency and response size per route.
// It is a pass-through when metrics are disabled or the instruments fail.
func HTTPMetrics(mp *telemetry.MeterProvider, logger *zap.Logger) gin.HandlerFunc {
	if !mp.IsEnabled() {
		return passThrough
	}
	handler, err := HTTPMetricsWithMeter(mp.Meter("http.server"))
	if err != nil {
		logger.Warn("HTTP metrics disabled", zap.Error(err))
		return passThrough
	}
	return handler
}

// HTTPMetricsWithMeter builds the middleware on an explicit meter. Requests
// that match no route are labelled "unmatched" to bound cardinality.
func HTTPMetricsWithMeter(meter metric.Meter) (gin.HandlerFunc, error) {
	m, err := telemetry.NewHTTPServerMetrics(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		done := m.Begin(ctx)
		defer done()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(ctx, c.Request.Method, route, c.Writer.Status(), c.Writer.Size(), time.Since(start))
	}, nil
}
