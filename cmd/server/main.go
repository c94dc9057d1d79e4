package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	integrationapp "github.com/stockroom/backend/internal/application/integration"
	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	orderapp "github.com/stockroom/backend/internal/application/order"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/commerce"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/event"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/scheduler"
	"github.com/stockroom/backend/internal/infrastructure/shipping"
	"github.com/stockroom/backend/internal/infrastructure/storage"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
	"github.com/stockroom/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting stockroom backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.GormLevelFor(cfg.Log.Level),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		cfg.Database.SlowThreshold, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	platform, err := commerce.NewPlatform(cfg.Commerce, log)
	if err != nil {
		log.Fatal("Failed to initialize commerce platform", zap.Error(err))
	}
	carrier, err := shipping.NewClient(cfg.Carrier, log)
	if err != nil {
		log.Fatal("Failed to initialize carrier", zap.Error(err))
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(inventoryapp.NewLowStockAlertHandler(log))
	if labelStore := newLabelStore(ctx, cfg.Storage, log); labelStore != nil {
		eventBus.Subscribe(orderapp.NewLabelArchiveHandler(carrier, labelStore, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := newTokenBlacklist(redisClient)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, cfg.Auth.BcryptCost, log)
	productService := catalogapp.NewProductService(productRepo, log)
	productImporter := catalogapp.NewProductImportService(productRepo, inventoryRepo, log)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, productRepo, platform, log)
	inventoryService.SetEventPublisher(eventBus)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, platform, carrier, log)
	orderService.SetEventPublisher(eventBus)
	fulfillmentService := orderapp.NewFulfillmentService(
		persistence.NewGormTransactionScope(db.DB),
		orderRepo,
		carrier,
		platform,
		orderapp.FulfillmentConfig{
			Pickup:      pickupContact(cfg.Carrier.Pickup),
			PackageSize: cfg.Carrier.DefaultPackageSize,
		},
		log,
	)
	fulfillmentService.SetEventPublisher(eventBus)
	reportService := reportapp.NewReportService(orderRepo, inventoryRepo, log)
	integrationService := integrationapp.NewIntegrationService(carrier, platform, log)

	var importScheduler *scheduler.OrderImportScheduler
	if cfg.Commerce.Enabled && cfg.Commerce.ImportInterval > 0 {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.Interval = cfg.Commerce.ImportInterval
		schedCfg.Lookback = cfg.Commerce.ImportLookback
		importScheduler, err = scheduler.NewOrderImportScheduler(schedCfg, orderService, log.Named("order_import"))
		if err != nil {
			log.Fatal("Invalid order import schedule", zap.Error(err))
		}
		if err := importScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start order import scheduler", zap.Error(err))
		}
	}

	middleware.SetupValidator()
	base := handler.NewBaseHandler(log, cfg.App.IsDevelopment())
	loginLimiter, apiLimiter := newRateLimiters(cfg, redisClient)
	idempotency := newIdempotencyStore(cfg.HTTP, redisClient)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.New(router.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      log,
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(base, authService),
			Products:     handler.NewProductHandler(base, productService, productImporter),
			Inventory:    handler.NewInventoryHandler(base, inventoryService),
			Orders:       handler.NewOrderHandler(base, orderService, fulfillmentService),
			Reports:      handler.NewReportHandler(base, reportService),
			Integrations: handler.NewIntegrationHandler(base, integrationService),
			Health:       handler.NewHealthHandler(base, db, cfg.App.Name),
		},
		Auth: middleware.JWTAuthConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Users:      userRepo,
			Logger:     log,
		},
		CORS:             cors,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		LoginLimiter:     loginLimiter,
		APILimiter:       apiLimiter,
		Idempotency:      idempotency,
		IdempotencyTTL:   cfg.HTTP.IdempotencyTTL,
		TracingEnabled:   tracer.IsEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		TrustedProxies:   cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if importScheduler != nil {
		if err := importScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping order import scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	for _, l := range []middleware.Limiter{loginLimiter, apiLimiter} {
		if s, ok := l.(interface{ Stop() }); ok {
			s.Stop()
		}
	}
	if c, ok := idempotency.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newTokenBlacklist(client *redis.Client) auth.TokenBlacklist {
	if client != nil {
		return auth.NewRedisTokenBlacklist(client)
	}
	return auth.NewInMemoryTokenBlacklist()
}

// newRateLimiters returns the login and API limiters; a disabled limiter is nil.
// Limits are shared across instances when redis is enabled.
func newRateLimiters(cfg *config.Config, client *redis.Client) (login, api middleware.Limiter) {
	build := func(prefix string, limit int, window time.Duration) middleware.Limiter {
		if client != nil {
			return middleware.NewRedisRateLimiter(client, prefix, limit, window)
		}
		return middleware.NewInMemoryRateLimiter(limit, window)
	}
	if cfg.Auth.LoginRateLimitEnabled {
		login = build("ratelimit:login:", cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateLimitWindow)
	}
	if cfg.HTTP.RateLimitEnabled {
		api = build("ratelimit:api:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}
	return login, api
}

// newLabelStore returns nil when label archiving is disabled
func newLabelStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) orderapp.LabelStore {
	if !cfg.Enabled {
		log.Info("Object storage disabled, fulfilled order labels are not archived")
		return nil
	}
	store, err := storage.NewS3ObjectStorage(ctx, &cfg, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to ensure label bucket", zap.Error(err), zap.String("bucket", store.GetBucket()))
	}
	return store
}

// newIdempotencyStore shares claims through Redis when it is configured
func newIdempotencyStore(cfg config.HTTPConfig, client *redis.Client) middleware.IdempotencyStore {
	if !cfg.IdempotencyEnabled {
		return nil
	}
	if client != nil {
		return cache.NewRedisIdempotencyStore(client, "idempotency:")
	}
	return cache.NewInMemoryIdempotencyStore()
}

func pickupContact(p config.PickupAddress) integration.Contact {
	return integration.Contact{
		Name: p.Name,
		Address: order.Address{
			Street:  p.Street,
			City:    p.City,
			State:   p.State,
			ZipCode: p.ZipCode,
			Country: p.Country,
		},
	}
}
