package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// tracedRouter installs a recording provider before otelgin reads the global
func tracedRouter(t *testing.T, session *identity.Session, handler gin.HandlerFunc) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	router := gin.New()
	router.Use(RequestID(), Tracing("bizledger-test"), withSession(session), RequestContext(true))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/sales/:id", handler)
	return router, recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := map[attribute.Key]string{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestTracing_TagsCaller(t *testing.T) {
	session := newSession(identity.RoleManager)
	router, recorder := tracedRouter(t, session, func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/42", nil)
	req.Header.Set(RequestIDHeader, "req-trace")
	router.ServeHTTP(w, req)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := spanAttrs(ended[0])
	assert.Equal(t, "req-trace", attrs["request_id"])
	assert.Equal(t, session.TenantID.String(), attrs["tenant_id"])
	assert.Equal(t, session.UserID.String(), attrs["user_id"])
	assert.Equal(t, "MANAGER", attrs["user.role"])
}

func TestTracing_Anonymous(t *testing.T) {
	router, recorder := tracedRouter(t, nil, func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sales/1", nil))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := spanAttrs(ended[0])
	assert.NotEmpty(t, attrs["request_id"])
	assert.NotContains(t, attrs, attribute.Key("tenant_id"))
}

func TestTracing_SkipsHealth(t *testing.T) {
	router, recorder := tracedRouter(t, nil, func(c *gin.Context) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, recorder.Ended())
}

func TestRequestContext_ProfilingLabels(t *testing.T) {
	var route, method string
	router, _ := tracedRouter(t, nil, func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), "route")
		method, _ = pprof.Label(c.Request.Context(), "method")
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sales/7", nil))

	assert.Equal(t, "/api/v1/sales/:id", route)
	assert.Equal(t, http.MethodGet, method)
}

func TestUnobservedPath(t *testing.T) {
	for _, p := range []string{"/health", "/health/live", "/health/ready", "/metrics", "/swagger/index.html"} {
		assert.True(t, unobservedPath(p), p)
	}
	assert.False(t, unobservedPath("/api/v1/health-checks"))
}
