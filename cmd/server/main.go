package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auditapp "github.com/shadeworks/backend/internal/application/audit"
	checkoutapp "github.com/shadeworks/backend/internal/application/checkout"
	eventapp "github.com/shadeworks/backend/internal/application/event"
	invoicingapp "github.com/shadeworks/backend/internal/application/invoicing"
	ledgerapp "github.com/shadeworks/backend/internal/application/ledger"
	orderingapp "github.com/shadeworks/backend/internal/application/ordering"
	"github.com/shadeworks/backend/internal/infrastructure/cache"
	"github.com/shadeworks/backend/internal/infrastructure/config"
	"github.com/shadeworks/backend/internal/infrastructure/documents"
	"github.com/shadeworks/backend/internal/infrastructure/event"
	"github.com/shadeworks/backend/internal/infrastructure/logger"
	"github.com/shadeworks/backend/internal/infrastructure/persistence"
	"github.com/shadeworks/backend/internal/infrastructure/scheduler"
	"github.com/shadeworks/backend/internal/infrastructure/signing"
	"github.com/shadeworks/backend/internal/infrastructure/telemetry"
	"github.com/shadeworks/backend/internal/interfaces/http/handler"
	"github.com/shadeworks/backend/internal/interfaces/http/middleware"
	"github.com/shadeworks/backend/internal/interfaces/http/router"

	_ "github.com/shadeworks/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Shadeworks Backend API
//	@version		1.0
//	@description	Order management and financial reconciliation API for made-to-order window shades

//	@contact.name	API Support
//	@contact.email	support@shadeworks.example.com

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

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

	log.Info("Starting Shadeworks Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize telemetry providers (no-ops when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
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

	// OTLP log export: when enabled, the zap core is teed into the OTel log
	// bridge so every log line also reaches the collector.
	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatal("Failed to bridge logger to OTLP", zap.Error(err))
		}
		log = bridged
		log.Info("Log export to collector enabled",
			zap.String("collector_endpoint", cfg.Telemetry.CollectorEndpoint),
		)
	}

	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           true,
			ServerAddress:     cfg.Telemetry.ProfilingServer,
			ApplicationName:   cfg.Telemetry.ServiceName,
			ProfileCPU:        true,
			ProfileInuseSpace: true,
		}, log)
		if err != nil {
			log.Warn("Failed to start continuous profiler", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}
	}

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database query tracing (otelgorm) when enabled
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:         "postgresql",
		WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Query and connection-pool metrics alongside the tracing plugin
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBMetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(context.Background())
		defer dbMetrics.Stop()
	}

	// Business metrics: order/payment counters plus a periodic receivables
	// gauge sourced from the invoices table.
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meterProvider.Meter("shadeworks-business"),
		Logger:          log,
		InvoiceProvider: telemetry.NewGormInvoiceMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
	defer businessMetrics.Stop()

	// Initialize event serializer and outbox publisher. Repositories save
	// domain events through the publisher in the same transaction as the
	// aggregate write.
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Initialize repositories
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB, outboxPublisher)
	historyRepo := persistence.NewGormOrderStatusHistoryRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB, outboxPublisher)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, outboxPublisher)
	auditRepo := persistence.NewGormAuditTrailRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Invoice document pipeline: HTML template -> headless Chrome PDF ->
	// archived object (local disk or S3)
	templateEngine, err := documents.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to initialize invoice templates", zap.Error(err))
	}
	pdfRenderer, err := documents.NewChromedpRenderer(&documents.ChromedpConfig{
		DefaultTimeout: cfg.Documents.PDFTimeout,
		NoSandbox:      cfg.App.Env != "production",
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	docStorage, err := documents.NewDocumentStorage(cfg.Documents, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	invoiceArchiver := documents.NewInvoiceArchiver(templateEngine, pdfRenderer, docStorage, cfg.Documents, log)

	// Share-link signer for customer-facing invoice URLs
	shareTokenSigner := signing.NewShareTokenService(cfg.Invoicing, cfg.Signing)

	// Initialize application services
	checkoutService := checkoutapp.NewCheckoutService(cartRepo, orderRepo, checkoutapp.Rules{
		TaxRate:        decimal.NewFromFloat(cfg.Checkout.TaxRate),
		SnapshotMaxAge: cfg.Checkout.SnapshotMaxAge,
		PriceTolerance: decimal.NewFromFloat(cfg.Checkout.PriceTolerance),
	}, log)
	statusService := orderingapp.NewStatusService(orderRepo, historyRepo, log)
	ledgerService := ledgerapp.NewLedgerService(ledgerRepo, orderRepo, log)
	invoiceService := invoicingapp.NewInvoiceService(
		invoiceRepo,
		orderRepo,
		invoiceArchiver,
		shareTokenSigner,
		invoicingapp.Config{DueDays: cfg.Invoicing.DueDays},
		log,
	)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers: Redis when available, in-memory
	// fallback for single-instance deployments
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// order.shipped -> realize manufacturer cost and profit in the ledger
	orderShippedHandler := ledgerapp.NewOrderShippedHandler(ledgerService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(orderShippedHandler, idempotencyStore, log))

	// every event -> append-only audit trail
	auditTrailHandler := auditapp.NewTrailHandler(auditRepo, log)
	eventBus.Subscribe(auditTrailHandler)

	log.Info("Event handlers registered",
		zap.Strings("order_shipped_events", orderShippedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start the outbox processor for guaranteed event delivery.
	// It reads events from the outbox table and publishes them to the bus.
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  time.Hour,
		}
		// The processor deserializes through the versioned serializer so
		// outbox rows written under an older event schema are upgraded
		// before they reach the bus.
		versionedSerializer := event.NewVersionedSerializer(log)
		event.RegisterAllEvents(versionedSerializer)
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, versionedSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Start the nightly maintenance run. The invoice backfill re-issues
	// customer invoices for orders that lost theirs to a crash or a
	// cancelled document.
	maintenanceScheduler := scheduler.NewMaintenanceScheduler(
		scheduler.DefaultConfig(),
		log,
		scheduler.NewInvoiceBackfillJob(invoiceService, log),
	)
	if err := maintenanceScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}
	defer func() {
		if err := maintenanceScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping maintenance scheduler", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(checkoutService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	orderHandler := handler.NewOrderHandler(statusService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	systemHandler := handler.NewSystemHandler()
	outboxHandler := handler.NewOutboxHandler(outboxService)

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
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - OpenTelemetry instrumentation
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
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

	// Health check endpoints (outside API versioning)
	engine.GET("/health", healthHandler(db, log))
	engine.GET("/ready", readyHandler(db))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(cartHandler).
		Register(checkoutHandler).
		Register(orderHandler).
		Register(ledgerHandler).
		Register(invoiceHandler).
		Register(systemHandler).
		Register(outboxHandler)
	r.Setup()

	// Simple ping at root API level for basic liveness checks
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

// readyHandler reports whether the service can take traffic
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	}
}
