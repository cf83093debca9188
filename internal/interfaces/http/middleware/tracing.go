package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// unobservedPath reports probe, scrape and docs paths. They get no span,
// labels or request metrics.
func unobservedPath(path string) bool {
	switch path {
	case "/health", "/health/live", "/health/ready", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/swagger")
}

// Tracing starts a server span per request. Server errors mark the span
// failed.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool { return !unobservedPath(r.URL.Path) }),
	)
}

// RequestContext tags the request span with the request id and caller, and
// runs the rest of the chain under profiling labels of the route. It must
// run after Authenticate.
func RequestContext(profiling bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if unobservedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := []attribute.KeyValue{attribute.String("request_id", getRequestIDFromContext(c))}
			if s := GetSession(c); s != nil {
				attrs = append(attrs,
					telemetry.AttrTenantID.String(s.TenantID.String()),
					attribute.String("user_id", s.UserID.String()),
					attribute.String("user.role", string(s.Role)),
				)
			}
			span.SetAttributes(attrs...)
		}

		if !profiling {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		telemetry.WithProfilingLabels(c.Request.Context(), telemetry.HTTPRequestLabels(route, c.Request.Method), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
