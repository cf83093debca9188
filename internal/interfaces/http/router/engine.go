package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RateLimitOptions enables per-client request limiting
type RateLimitOptions struct {
	Counter  middleware.WindowCounter
	Requests int
	Window   time.Duration
}

// Options configures the engine built by New
type Options struct {
	Logger         *zap.Logger
	ServiceName    string
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	HSTS           bool

	// Tracing installs otelgin; Profiling adds route labels to profiles
	Tracing   bool
	Profiling bool

	// Metrics records request metrics; MetricsHandler serves /metrics
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler

	// RateLimit is nil when limiting is disabled
	RateLimit *RateLimitOptions

	Sessions middleware.SessionSource
	Gate     *middleware.Gate
	Health   *handler.HealthHandler
	Handlers Handlers
	Swagger  bool
}

// New builds the gin engine. The middleware order matters: the request id
// must exist before logging, the session before the request context and the
// gate, and the rate limiter runs last so rejected requests are still
// logged and traced.
func New(opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(opts.HSTS),
		middleware.CORS(opts.CORS),
	)
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}
	if opts.Tracing {
		engine.Use(middleware.Tracing(opts.ServiceName))
	}
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
	}
	engine.Use(middleware.Authenticate(opts.Sessions, log))
	if opts.Tracing || opts.Profiling {
		engine.Use(middleware.RequestContext(opts.Profiling))
	}
	if rl := opts.RateLimit; rl != nil && rl.Counter != nil && rl.Requests > 0 {
		engine.Use(middleware.RateLimit(rl.Counter, rl.Requests, rl.Window, log))
	}

	if opts.Health != nil {
		engine.GET("/health", opts.Health.Health)
		engine.GET("/health/live", opts.Health.Live)
	}
	if opts.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	gate := opts.Gate
	if gate == nil {
		gate = middleware.NewGate(log)
	}
	NewRouter(engine, WithAPIVersion("v1")).
		Register(APIGroups(gate, opts.Handlers)...).
		Setup()

	return engine, nil
}
