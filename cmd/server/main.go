package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	identityapp "github.com/bizledger/backend/internal/application/identity"
	inventoryapp "github.com/bizledger/backend/internal/application/inventory"
	partnerapp "github.com/bizledger/backend/internal/application/partner"
	reportapp "github.com/bizledger/backend/internal/application/report"
	tradeapp "github.com/bizledger/backend/internal/application/trade"
	"github.com/bizledger/backend/internal/infrastructure/auth"
	"github.com/bizledger/backend/internal/infrastructure/cache"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/internal/infrastructure/printing"
	"github.com/bizledger/backend/internal/infrastructure/scheduler"
	"github.com/bizledger/backend/internal/infrastructure/storage"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/bizledger/backend/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/bizledger/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			BizLedger API
//	@version		1.0
//	@description	Multi-tenant sales, inventory and reporting backend
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/bizledger/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the bridged logger is used everywhere below
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		TracesEnabled:     cfg.Telemetry.Enabled,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsExportInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, zapcore.InfoLevel)

	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
			ApplicationName: cfg.Telemetry.ServiceName,
			ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		}, log)
		if err != nil {
			log.Fatal("Failed to start profiler", zap.Error(err))
		}
		defer func() { _ = profiler.Stop() }()
		providers.EnableSpanProfiles()
	}

	log.Info("Starting BizLedger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	meter := providers.Meter("bizledger")
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TracingEnabled:     cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Redis backs token revocation and rate limiting; without it both fall
	// back to process memory
	var (
		revoked auth.RevocationList
		counter middleware.WindowCounter
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		revoked = auth.NewRedisRevocationList(client)
		counter = cache.NewRedisWindowCounter(client)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		revoked = auth.NewMemoryRevocationList()
		counter = cache.NewMemoryWindowCounter()
		log.Warn("Redis disabled, using in-memory revocation list and rate limiter")
	}

	var imageStorage catalogapp.ImageStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignTTL(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
		imageStorage = s3Storage
	}

	var pdf printing.PDFRenderer
	if cfg.Printing.PDFEnabled {
		pdf = printing.NewChromeRenderer(printing.ChromeOptions{
			Timeout:   cfg.Printing.Timeout,
			ExecPath:  cfg.Printing.ChromePath,
			NoSandbox: cfg.IsProduction(),
		}, log)
	}
	exporter := printing.NewReportExporter(printing.NewReportTemplate(cfg.Printing.Locale), pdf, log)
	defer func() { _ = exporter.Close() }()

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	productImageRepo := persistence.NewGormProductImageRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	recordRepo := persistence.NewGormInventoryRecordRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	definitionRepo := persistence.NewGormReportDefinitionRepository(db.DB)
	executionRepo := persistence.NewGormReportExecutionRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	reportData := persistence.NewGormReportDataRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:            meter,
		Logger:           log,
		LowStockProvider: telemetry.NewGormLowStockProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), 5*time.Minute)
	defer businessMetrics.Stop()

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(tenantRepo, userRepo, scope, jwtService, revoked, log)
	userService := identityapp.NewUserService(userRepo, revoked, jwtService.Expiration(), log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	vendorService := partnerapp.NewVendorService(vendorRepo)
	productService := catalogapp.NewProductService(productRepo, vendorRepo, scope, imageStorage, log)
	imageService := catalogapp.NewImageService(productRepo, productImageRepo, scope, imageStorage,
		catalogapp.DefaultImageServiceConfig(), log)
	locationService := inventoryapp.NewLocationService(locationRepo)
	ledgerService := inventoryapp.NewLedgerService(recordRepo, scope, log)
	ledgerService.SetMetrics(businessMetrics)
	saleService := tradeapp.NewSaleService(saleRepo, paymentRepo, scope, log)
	saleService.SetMetrics(businessMetrics)
	definitionService := reportapp.NewDefinitionService(definitionRepo, scope, log)
	dashboardService := reportapp.NewDashboardService(dashboardRepo, scope, log)
	engine := reportapp.NewEngine(definitionRepo, executionRepo, reportapp.DefaultGenerators(reportData), exporter, log)
	engine.SetMetrics(businessMetrics)

	if cfg.Report.ExecutionRetention > 0 {
		schedule, err := scheduler.ParseDailySchedule(cfg.Report.RetentionSchedule)
		if err != nil {
			log.Fatal("Invalid report retention schedule", zap.Error(err))
		}
		retention, err := scheduler.NewExecutionRetention(executionRepo, cfg.Report.ExecutionRetention, log)
		if err != nil {
			log.Fatal("Failed to create report retention task", zap.Error(err))
		}
		trigger, err := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{Schedule: schedule},
			retention, telemetry.NewGormTenantProvider(db.DB), log)
		if err != nil {
			log.Fatal("Failed to create report retention trigger", zap.Error(err))
		}
		trigger.Start(ctx)
		defer trigger.Stop()
	}

	var (
		httpMetrics    *middleware.HTTPMetrics
		metricsHandler http.Handler
	)
	if cfg.HTTP.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		httpMetrics, err = middleware.NewHTTPMetrics(reg, "bizledger")
		if err != nil {
			log.Fatal("Failed to register HTTP metrics", zap.Error(err))
		}
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	var rateLimit *router.RateLimitOptions
	if cfg.HTTP.RateLimitEnabled {
		rateLimit = &router.RateLimitOptions{
			Counter:  counter,
			Requests: cfg.HTTP.RateLimitRequests,
			Window:   cfg.HTTP.RateLimitWindow,
		}
	}

	app, err := router.New(router.Options{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		HSTS:           cfg.IsProduction(),
		Tracing:        cfg.Telemetry.Enabled,
		Profiling:      cfg.Telemetry.ProfilingEnabled,
		Metrics:        httpMetrics,
		MetricsHandler: metricsHandler,
		RateLimit:      rateLimit,
		Sessions:       auth.NewSessionResolver(jwtService, revoked),
		Gate:           middleware.NewGate(log),
		Health:         handler.NewHealthHandler(version, db),
		Handlers: router.Handlers{
			Auth:      handler.NewAuthHandler(authService),
			User:      handler.NewUserHandler(userService),
			Customer:  handler.NewCustomerHandler(customerService),
			Vendor:    handler.NewVendorHandler(vendorService),
			Product:   handler.NewProductHandler(productService, imageService),
			Location:  handler.NewLocationHandler(locationService),
			Inventory: handler.NewInventoryHandler(ledgerService),
			Sale:      handler.NewSaleHandler(saleService),
			Report:    handler.NewReportHandler(definitionService, engine),
			Dashboard: handler.NewDashboardHandler(dashboardService),
		},
		Swagger: cfg.Swagger.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        app,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
