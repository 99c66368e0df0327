package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/cache"
	"github.com/syncbridge/backend/internal/infrastructure/config"
	"github.com/syncbridge/backend/internal/infrastructure/connector"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
	"github.com/syncbridge/backend/internal/infrastructure/persistence"
	"github.com/syncbridge/backend/internal/infrastructure/telemetry"
	"github.com/syncbridge/backend/internal/interfaces/http/handler"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
	"github.com/syncbridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting SyncBridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	jobRepo := persistence.NewGormJobRepository(db.DB)
	cursorRepo := persistence.NewGormPullCursorRepository(db.DB)
	mappingRepo := persistence.NewGormEntityMappingRepository(db.DB)
	locationRepo := persistence.NewGormLocationMappingRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	ruleRepo := persistence.NewGormRuleRepository(db.DB)

	// Variant id cache: Redis when reachable, in-process fallback otherwise.
	var variantCache syncdomain.VariantCache
	redisCache, err := cache.NewRedisVariantCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Sync.VariantCacheTTL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory variant cache", zap.Error(err))
		variantCache = cache.NewInMemoryVariantCache(cfg.Sync.VariantCacheTTL)
	} else {
		variantCache = redisCache
		log.Info("Redis variant cache connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize OpenTelemetry (tracing + metrics) when enabled
	var (
		tracerProvider *telemetry.TracerProvider
		meterProvider  *telemetry.MeterProvider
		syncMetrics    *telemetry.SyncMetrics
	)
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		syncMetrics, err = telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
			Meter:  meterProvider.Meter("syncbridge/sync"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize sync metrics", zap.Error(err))
		}
		log.Info("Telemetry enabled",
			zap.String("endpoint", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Backend connectors. The concrete Source/Target HTTP clients are
	// registered per deployment; until then every call reports the backend
	// as unavailable.
	sourceClient := connector.NewUnconfiguredSource()
	targetClient := connector.NewUnconfiguredTarget()

	// Initialize application services
	ledger := appsync.NewJobLedger(jobRepo, log)
	pullService := appsync.NewPullService(ledger, cursorRepo, mappingRepo, ruleRepo, syncLogRepo, sourceClient, appsync.PullOptions{
		PageSize:             cfg.Source.PageSize,
		LivenessWindow:       cfg.Sync.CursorLiveness,
		IncrementalFreshness: cfg.Sync.IncrementalFreshness,
	}, log)
	pushService := appsync.NewPushService(ledger, mappingRepo, locationRepo, syncLogRepo, sourceClient, targetClient, variantCache, appsync.PushOptions{
		Executor: appsync.ExecutorOptions{
			Width:         cfg.Sync.BatchWidth,
			Delay:         cfg.Sync.BatchDelay,
			RecoveryDelay: cfg.Sync.RecoveryDelay,
		},
		DefaultLocationID: cfg.Target.DefaultLocationID,
	}, log)
	autoMatchService := appsync.NewAutoMatchService(ledger, mappingRepo, targetClient, appsync.ExecutorOptions{
		Width:         cfg.Sync.BatchWidth,
		Delay:         cfg.Sync.BatchDelay,
		RecoveryDelay: cfg.Sync.RecoveryDelay,
	}, log)
	webhookService := appsync.NewWebhookService(mappingRepo, locationRepo, ruleRepo, syncLogRepo, targetClient, cfg.Target.DefaultLocationID, log)
	jobService := appsync.NewJobService(jobRepo, syncLogRepo)
	mappingService := appsync.NewMappingService(mappingRepo, locationRepo, log)
	ruleService := appsync.NewRuleService(ruleRepo)

	if syncMetrics != nil {
		ledger.SetMetrics(syncMetrics)
		pushService.SetMetrics(syncMetrics)
		webhookService.SetMetrics(syncMetrics)
	}

	// Initialize HTTP handlers
	syncHandler := handler.NewSyncHandler(pullService, pushService, autoMatchService)
	jobHandler := handler.NewJobHandler(jobService)
	cursorHandler := handler.NewCursorHandler(pullService)
	mappingHandler := handler.NewMappingHandler(mappingService)
	ruleHandler := handler.NewRuleHandler(ruleService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing/Metrics - OpenTelemetry instrumentation (if enabled)
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       meterProvider.IsEnabled(),
		}))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Sync domain (bulk pulls, pushes, auto-match, cursors)
	syncRoutes := router.NewDomainGroup("syncs", "/syncs")
	syncRoutes.POST("/pull", syncHandler.StartPull)
	syncRoutes.POST("/push", syncHandler.StartPush)
	syncRoutes.POST("/automatch", syncHandler.StartAutoMatch)
	syncRoutes.GET("/cursors", cursorHandler.ListCursors)
	syncRoutes.DELETE("/cursors", cursorHandler.ResetCursorsByKind)
	syncRoutes.DELETE("/cursors/:fingerprint", cursorHandler.ResetCursor)

	// Job domain (job status, sync logs)
	jobRoutes := router.NewDomainGroup("jobs", "/jobs")
	jobRoutes.GET("", jobHandler.ListJobs)
	jobRoutes.GET("/:id", jobHandler.GetJob)
	jobRoutes.GET("/:id/logs", jobHandler.GetJobLogs)

	// Mapping domain (entity mappings, location mappings)
	mappingRoutes := router.NewDomainGroup("mappings", "/mappings")
	mappingRoutes.GET("", mappingHandler.ListMappings)
	mappingRoutes.GET("/stats", mappingHandler.GetStats)
	mappingRoutes.GET("/:id", mappingHandler.GetMapping)
	mappingRoutes.POST("", mappingHandler.MapEntity)
	mappingRoutes.POST("/:id/unmap", mappingHandler.UnmapEntity)
	mappingRoutes.POST("/:id/approve", mappingHandler.ApproveMapping)

	locationRoutes := router.NewDomainGroup("locations", "/locations")
	locationRoutes.GET("", mappingHandler.ListLocationMappings)
	locationRoutes.POST("", mappingHandler.SaveLocationMapping)
	locationRoutes.DELETE("/:id", mappingHandler.DeleteLocationMapping)

	// Rule domain (sync gating rules)
	ruleRoutes := router.NewDomainGroup("rules", "/rules")
	ruleRoutes.GET("", ruleHandler.ListRules)
	ruleRoutes.GET("/:id", ruleHandler.GetRule)
	ruleRoutes.POST("", ruleHandler.CreateRule)
	ruleRoutes.PUT("/:id", ruleHandler.UpdateRule)
	ruleRoutes.DELETE("/:id", ruleHandler.DeleteRule)

	// Webhook domain (inbound change events from the Source)
	webhookRoutes := router.NewDomainGroup("webhooks", "/webhooks")
	webhookRoutes.POST("/:kind", webhookHandler.HandleEvent)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(syncRoutes).
		Register(jobRoutes).
		Register(mappingRoutes).
		Register(locationRoutes).
		Register(ruleRoutes).
		Register(webhookRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
