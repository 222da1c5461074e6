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

	appintegration "github.com/storebridge/backend/internal/application/integration"
	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/cache"
	"github.com/storebridge/backend/internal/infrastructure/config"
	"github.com/storebridge/backend/internal/infrastructure/dolibarr"
	"github.com/storebridge/backend/internal/infrastructure/health"
	"github.com/storebridge/backend/internal/infrastructure/logger"
	"github.com/storebridge/backend/internal/infrastructure/persistence"
	"github.com/storebridge/backend/internal/infrastructure/scheduler"
	"github.com/storebridge/backend/internal/interfaces/http/handler"
	"github.com/storebridge/backend/internal/interfaces/http/middleware"
	"github.com/storebridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("starting application",
		zap.String("name", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Initialize database with GORM logging routed through zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}
	log.Info("database connected and migrated")

	// Redis backs the reference data cache
	redisClient, err := cache.NewRedisClient(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis connection", zap.Error(err))
		}
	}()

	// Remote ERP gateway
	gateway := dolibarr.NewClient(dolibarr.Config{
		BaseURL:   cfg.Remote.URL,
		APIKey:    cfg.Remote.APIKey,
		Timeout:   cfg.Remote.Timeout,
		VerifyTLS: cfg.Remote.VerifyTLS,
		Debug:     cfg.Remote.Debug,
	}, log)

	monitor := health.NewMonitor(gateway, log)

	refCache := cache.NewReferenceCache(redisClient, gateway, cache.ReferenceCacheConfig{
		TTL:       cfg.Cache.TTL,
		KeyPrefix: cfg.Cache.KeyPrefix,
		Language:  cfg.Remote.Language,
	}, log)

	// Repositories
	store := persistence.NewGormStoreRepository(db.DB)
	crossRefs := persistence.NewGormCrossReferenceRepository(db.DB)
	syncLogs := persistence.NewGormSyncLogRepository(db.DB)
	orderHistory := persistence.NewGormOrderSyncHistoryRepository(db.DB)

	// Sync services
	mapper := integration.NewMapper(integration.MapperConfig{
		TaxSyncEnabled:         cfg.Sync.TaxSyncEnabled,
		DefaultPaymentMethodID: cfg.Sync.DefaultPaymentMethodID,
		DefaultBankAccountID:   cfg.Sync.DefaultBankAccountID,
	})
	resolver := appintegration.NewIdentityResolver(crossRefs, gateway)

	customerSync := appintegration.NewCustomerSyncService(
		store, gateway, crossRefs, syncLogs, resolver, mapper,
		appintegration.CustomerSyncConfig{Enabled: cfg.Sync.CustomersEnabled},
		log,
	)
	productSync := appintegration.NewProductSyncService(
		store, gateway, crossRefs, syncLogs, resolver, mapper,
		appintegration.ProductSyncConfig{
			Enabled:            cfg.Sync.ProductsEnabled,
			InventoryEnabled:   cfg.Sync.InventoryEnabled,
			DefaultWarehouseID: cfg.Sync.DefaultWarehouseID,
		},
		log,
	)
	orderSync := appintegration.NewOrderSyncService(
		store, gateway, crossRefs, syncLogs, orderHistory,
		customerSync, productSync, resolver, mapper,
		appintegration.OrderSyncConfig{
			Enabled:          cfg.Sync.OrdersEnabled,
			ExcludedStatuses: cfg.Sync.ExcludedOrderStatuses,
		},
		log,
	)

	guard := appintegration.NewMemoryGuard(cfg.Sync.MemoryThresholdPercent, cfg.Sync.MemoryLimitMB)
	runner := appintegration.NewBatchRunner(map[integration.SyncType]appintegration.EntitySyncer{
		integration.SyncTypeCustomer: func(ctx context.Context, id int64) integration.SyncResult {
			return customerSync.SyncCustomer(ctx, integration.CustomerRef{ID: id})
		},
		integration.SyncTypeOrder: func(ctx context.Context, id int64) integration.SyncResult {
			return orderSync.SyncOrder(ctx, integration.OrderRef{ID: id})
		},
		integration.SyncTypeProduct: func(ctx context.Context, id int64) integration.SyncResult {
			return productSync.SyncProduct(ctx, integration.ProductRef{ID: id})
		},
		integration.SyncTypeInventory: func(ctx context.Context, id int64) integration.SyncResult {
			return productSync.ExportInventory(ctx, id)
		},
	}, guard, log)

	triggers := appintegration.NewTriggerHandler(customerSync, orderSync, productSync, log)

	// Background scheduler
	batchSize := cfg.Sync.BatchSize
	sched, err := scheduler.NewSyncScheduler(
		scheduler.Config{
			Enabled:                 cfg.Scheduler.Enabled,
			InventoryInterval:       cfg.Scheduler.InventoryInterval,
			OrderInterval:           cfg.Scheduler.OrderInterval,
			CustomerInterval:        cfg.Scheduler.CustomerInterval,
			ConnectionCheckInterval: cfg.Scheduler.ConnectionCheckInterval,
			CacheRefreshInterval:    cfg.Scheduler.CacheRefreshInterval,
			TaskTimeout:             cfg.Scheduler.TaskTimeout,
		},
		monitor,
		refCache,
		map[string]scheduler.BulkSyncer{
			"orders": func(ctx context.Context) (integration.BatchResult, error) {
				return orderSync.SyncAll(ctx, batchSize, 0)
			},
			"customers": func(ctx context.Context) (integration.BatchResult, error) {
				return customerSync.SyncAll(ctx, batchSize, 0)
			},
			"inventory": func(ctx context.Context) (integration.BatchResult, error) {
				return productSync.ExportAllInventory(ctx)
			},
		},
		log,
	)
	if err != nil {
		log.Fatal("failed to build scheduler", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Error("failed to stop scheduler", zap.Error(err))
			}
		}()
		log.Info("scheduler started")
	}

	// HTTP handlers
	syncHandler := handler.NewSyncHandler(customerSync, orderSync, productSync, runner)
	connectionHandler := handler.NewConnectionHandler(monitor)
	referenceHandler := handler.NewReferenceHandler(refCache)
	logHandler := handler.NewLogHandler(syncLogs, orderHistory, cfg.Sync.LogRetentionDays)
	eventHandler := handler.NewEventHandler(triggers)
	schedulerHandler := handler.NewSchedulerHandler(sched)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.GET("/health", healthHandler(db))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(syncHandler).
		Register(connectionHandler).
		Register(referenceHandler).
		Register(logHandler).
		Register(eventHandler).
		Register(schedulerHandler).
		Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// healthHandler reports process and database health.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ginLog := logger.GetGinLogger(c)

		status := http.StatusOK
		overall := "ok"
		dbStatus := "ok"
		if err := db.Ping(); err != nil {
			ginLog.Error("database health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			overall = "degraded"
			dbStatus = "unavailable"
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
