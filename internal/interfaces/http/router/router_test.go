package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/infrastructure/cache"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenSessions maps bearer tokens straight to sessions
type tokenSessions map[string]*identity.Session

func (s tokenSessions) Resolve(_ context.Context, token string) (*identity.Session, error) {
	if session, ok := s[token]; ok {
		return session, nil
	}
	return nil, errors.New("unknown token")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func session(role identity.Role) *identity.Session {
	return &identity.Session{UserID: uuid.New(), TenantID: uuid.New(), Role: role, TokenID: uuid.NewString()}
}

// newEngine builds the full engine without handlers behind the gates; tests
// only reach paths the gate rejects
func newEngine(t *testing.T, mutate func(*Options)) *gin.Engine {
	t.Helper()
	opts := Options{
		ServiceName: "bizledger-test",
		CORS:        middleware.CORSConfig{AllowOrigins: []string{"https://app.example.com"}},
		MaxBodySize: 1 << 20,
		Sessions: tokenSessions{
			"user-token":    session(identity.RoleUser),
			"manager-token": session(identity.RoleManager),
		},
		Health: handler.NewHealthHandler("test", stubPinger{}),
	}
	if mutate != nil {
		mutate(&opts)
	}
	engine, err := New(opts)
	require.NoError(t, err)
	return engine
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestEngine_GatesEveryAPIRoute(t *testing.T) {
	engine := newEngine(t, nil)
	id := uuid.NewString()

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/customers"},
		{http.MethodDelete, "/api/v1/customers/" + id},
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/inventory/transfer"},
		{http.MethodPost, "/api/v1/sales/" + id + "/payments"},
		{http.MethodGet, "/api/v1/reports/executions/" + id + "/export"},
		{http.MethodPut, "/api/v1/dashboards/" + id},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
	}
	for _, p := range paths {
		w := serve(engine, p.method, p.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}

	w := serve(engine, http.MethodGet, "/api/v1/customers", "forged-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngine_RolePermissions(t *testing.T) {
	engine := newEngine(t, nil)
	id := uuid.NewString()

	tests := []struct {
		token, method, path string
	}{
		{"user-token", http.MethodDelete, "/api/v1/customers/" + id},
		{"user-token", http.MethodPost, "/api/v1/users"},
		{"user-token", http.MethodPost, "/api/v1/inventory/add"},
		{"user-token", http.MethodPost, "/api/v1/reports/definitions"},
		{"manager-token", http.MethodDelete, "/api/v1/sales/" + id},
		{"manager-token", http.MethodDelete, "/api/v1/users/" + id},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path, tt.token)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s %s", tt.token, tt.method, tt.path)
	}
}

func TestEngine_CommonHeaders(t *testing.T) {
	engine := newEngine(t, nil)

	w := serve(engine, http.MethodGet, "/api/v1/customers", "")

	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestEngine_Health(t *testing.T) {
	engine := newEngine(t, nil)
	w := serve(engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	down := newEngine(t, func(o *Options) {
		o.Health = handler.NewHealthHandler("test", stubPinger{err: errors.New("connection refused")})
	})
	w = serve(down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewHTTPMetrics(reg, "bizledger")
	require.NoError(t, err)
	engine := newEngine(t, func(o *Options) {
		o.Metrics = metrics
		o.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	})

	serve(engine, http.MethodGet, "/api/v1/customers", "")
	w := serve(engine, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `bizledger_http_requests_total{method="GET",route="/api/v1/customers",status="401"} 1`)
}

func TestEngine_NoMetricsEndpointByDefault(t *testing.T) {
	engine := newEngine(t, nil)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/metrics", "").Code)
}

func TestEngine_RateLimit(t *testing.T) {
	engine := newEngine(t, func(o *Options) {
		o.RateLimit = &RateLimitOptions{Counter: cache.NewMemoryWindowCounter(), Requests: 2, Window: time.Minute}
	})

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health/live", "").Code)
	w := serve(engine, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestEngine_InvalidTrustedProxy(t *testing.T) {
	_, err := New(Options{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}

func TestDomainGroup_GuardRunsFirst(t *testing.T) {
	engine := gin.New()
	var order []string
	guard := func(c *gin.Context) { order = append(order, "guard"); c.Next() }
	h := func(c *gin.Context) { order = append(order, "handler"); c.Status(http.StatusOK) }

	g := NewDomainGroup("/items").GET("/:id", guard, h).POST("", nil, h)
	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/items/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"guard", "handler"}, order)

	order = nil
	serve(engine, http.MethodPost, "/api/v2/items", "")
	assert.Equal(t, []string{"handler"}, order)
	assert.Equal(t, "/items", g.Prefix())
}
