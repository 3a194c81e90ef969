package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T, enabled bool) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	r := gin.New()
	r.Use(RequestID(), Tracing(TracingConfig{
		Enabled:        enabled,
		ServiceName:    "savings-test",
		TracerProvider: tp,
		SkipPaths:      []string{"/health"},
	}), SpanErrorMarker())
	r.Use(func(c *gin.Context) {
		c.Set(UserIDKey, "u-42")
		c.Next()
	}, SpanAttributes())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/groups/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			SetErrorCode(c, "GROUP_NOT_FOUND")
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})
	return r, sr
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestTracing_RecordsRouteSpan(t *testing.T) {
	r, sr := newTracedRouter(t, true)

	w := serve(r, http.MethodGet, "/groups/abc", map[string]string{RequestIDHeader: "req-7"})
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/groups/:id")
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "req-7", attrs["request_id"])
	assert.Equal(t, "u-42", attrs["user_id"])
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracing_MarksClientErrors(t *testing.T) {
	r, sr := newTracedRouter(t, true)

	serve(r, http.MethodGet, "/groups/missing", nil)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Not Found", spans[0].Status().Description)
	assert.Equal(t, "GROUP_NOT_FOUND", attrMap(spans[0].Attributes())["error.code"])
}

func TestTracing_SkipAndDisabled(t *testing.T) {
	r, sr := newTracedRouter(t, true)
	serve(r, http.MethodGet, "/health", nil)
	assert.Empty(t, sr.Ended())

	r, sr = newTracedRouter(t, false)
	serve(r, http.MethodGet, "/groups/abc", nil)
	assert.Empty(t, sr.Ended())
}
