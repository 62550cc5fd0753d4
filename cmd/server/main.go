package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/minimart/backend/internal/application/inventory"
	partnerapp "github.com/minimart/backend/internal/application/partner"
	purchasingapp "github.com/minimart/backend/internal/application/purchasing"
	reportapp "github.com/minimart/backend/internal/application/report"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/cache"
	"github.com/minimart/backend/internal/infrastructure/config"
	"github.com/minimart/backend/internal/infrastructure/event"
	"github.com/minimart/backend/internal/infrastructure/logger"
	"github.com/minimart/backend/internal/infrastructure/persistence"
	"github.com/minimart/backend/internal/infrastructure/telemetry"
	"github.com/minimart/backend/internal/interfaces/http/handler"
	"github.com/minimart/backend/internal/interfaces/http/middleware"
	"github.com/minimart/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Minimart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize telemetry providers
	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.Endpoint,
		ServiceName:       cfg.App.Name,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricInterval:    cfg.Telemetry.MetricInterval,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := telemetryProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if telemetryProvider.IsEnabled() {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.DBName, log); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	ledgerService := inventoryapp.NewLedgerService(txScope, movementRepo)
	orderService := purchasingapp.NewPurchaseOrderService(txScope, orderRepo, productRepo, supplierRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	reportService := reportapp.NewStockReportService(productRepo)

	// Business metrics fed from the event bus, low-stock gauge sampled
	// periodically from the catalog
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    telemetryProvider.Meter(telemetry.ScopeName),
		Logger:   log,
		LowStock: productRepo,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	if telemetryProvider.IsEnabled() {
		businessMetrics.StartPeriodicCollection(context.Background())
		defer businessMetrics.Stop()
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(inventoryapp.NewLowStockHandler(log))
	eventBus.Subscribe(purchasingapp.NewPurchaseOrderReceivedHandler(log))
	eventBus.Subscribe(telemetry.NewEventMetricsHandler(businessMetrics))

	// Inject event bus into services that publish events
	ledgerService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	supplierService.SetEventPublisher(eventBus)

	// Idempotency store: Redis when enabled, in-process fallback otherwise
	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize engine with middleware stack:
	// request ID -> recovery -> logging -> tracing -> body limit -> idempotency
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     telemetryProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingEnrichment())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Idempotency(idempotencyStore, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}, log))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewPurchaseOrderHandler(orderService)).
		Register(handler.NewInventoryHandler(ledgerService)).
		Register(handler.NewSupplierHandler(supplierService)).
		Register(handler.NewReportHandler(reportService)).
		Register(handler.NewSystemHandler(db)).
		Setup()

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

// newIdempotencyStore prefers Redis and degrades to the in-memory store when
// Redis is disabled or unreachable. Losing dedup state on restart is an
// accepted trade-off for staying available.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err == nil {
			log.Info("Idempotency store using Redis", zap.String("addr", cfg.Redis.Addr()))
			return store
		}
		log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	return cache.NewInMemoryIdempotencyStore()
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn", "warning":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
