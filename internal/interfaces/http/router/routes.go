package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by the API
type Handlers struct {
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Inventory    *handler.InventoryHandler
	Orders       *handler.OrderHandler
	Reports      *handler.ReportHandler
	Integrations *handler.IntegrationHandler
	Health       *handler.HealthHandler
}

// Config assembles the engine
type Config struct {
	ServiceName string
	Logger      *zap.Logger
	Handlers    Handlers
	Auth        middleware.JWTAuthConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64

	// LoginLimiter throttles POST /api/auth/login per client IP; nil disables it
	LoginLimiter     middleware.Limiter
	// APILimiter throttles the remaining /api routes; nil disables it
	APILimiter       middleware.Limiter
	// Idempotency guards order and stock mutations; nil disables it
	Idempotency      middleware.IdempotencyStore
	IdempotencyTTL   time.Duration
	TracingEnabled   bool
	ProfilingEnabled bool
	TrustedProxies   []string
}

var (
	allRoles       = identity.AllRoles
	adminManager   = []identity.Role{identity.RoleAdmin, identity.RoleManager}
	adminWarehouse = []identity.Role{identity.RoleAdmin, identity.RoleWarehouseStaff}
)

// New builds the gin engine with the global middleware chain and every API route
func New(cfg Config) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.SpanAttributes(),
		middleware.Secure(),
		middleware.CORS(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.Profiling(cfg.ProfilingEnabled),
	)

	h := cfg.Handlers
	engine.GET("/health", h.Health.Health)
	engine.GET("/health/ready", h.Health.Ready)

	authenticated := middleware.JWTAuth(cfg.Auth)
	rateLimited := func(limiter middleware.Limiter) []gin.HandlerFunc {
		if limiter == nil {
			return nil
		}
		return []gin.HandlerFunc{middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter, Logger: cfg.Logger})}
	}

	authGroup := NewDomainGroup("auth", "/auth").
		POST("/login", append(rateLimited(cfg.LoginLimiter), h.Auth.Login)...).
		POST("/register", middleware.OptionalJWTAuth(cfg.Auth), h.Auth.Register).
		POST("/refresh-token", h.Auth.RefreshToken).
		POST("/logout", authenticated, h.Auth.Logout).
		GET("/me", authenticated, h.Auth.Me)

	protected := append(rateLimited(cfg.APILimiter), authenticated)
	can := middleware.Authorize
	var guard gin.HandlerFunc
	if cfg.Idempotency != nil {
		guard = middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  cfg.Idempotency,
			TTL:    cfg.IdempotencyTTL,
			Logger: cfg.Logger,
		})
	}
	// authorization runs before the guard so rejected callers never claim a key
	once := func(authorize, handle gin.HandlerFunc) []gin.HandlerFunc {
		if guard == nil {
			return []gin.HandlerFunc{authorize, handle}
		}
		return []gin.HandlerFunc{authorize, guard, handle}
	}

	inventoryGroup := NewDomainGroup("inventory", "/inventory").Use(protected...).
		GET("", can(allRoles...), h.Inventory.List).
		GET("/:id", can(allRoles...), h.Inventory.Get).
		POST("", once(can(adminManager...), h.Inventory.Create)...).
		PATCH("/:id", can(allRoles...), h.Inventory.Update).
		DELETE("/:id", can(adminManager...), h.Inventory.Delete).
		POST("/:id/adjust", once(can(adminWarehouse...), h.Inventory.Adjust)...)

	orderGroup := NewDomainGroup("orders", "/orders").Use(protected...).
		GET("", can(adminManager...), h.Orders.List).
		POST("", once(can(adminManager...), h.Orders.Create)...).
		POST("/import", once(can(adminManager...), h.Orders.Import)...).
		GET("/:id", can(allRoles...), h.Orders.Get).
		PATCH("/:id", can(allRoles...), h.Orders.UpdateStatus).
		POST("/:id/fulfill", once(can(adminWarehouse...), h.Orders.Fulfill)...).
		GET("/:id/tracking", can(allRoles...), h.Orders.Tracking)

	productGroup := NewDomainGroup("products", "/products").Use(protected...).
		GET("", can(allRoles...), h.Products.List).
		GET("/:id", can(allRoles...), h.Products.Get).
		POST("", can(adminManager...), h.Products.Create).
		POST("/import", can(adminManager...), h.Products.Import).
		PATCH("/:id", can(adminManager...), h.Products.Update)

	shippingGroup := NewDomainGroup("shipping", "/shipping").Use(protected...).
		POST("/quote", can(allRoles...), h.Integrations.Quote)

	integrationGroup := NewDomainGroup("integrations", "/integrations").Use(protected...).
		POST("/webhooks", can(identity.RoleAdmin), h.Integrations.RegisterWebhook)

	reportGroup := NewDomainGroup("reports", "/reports").Use(protected...).Use(can(adminManager...)).
		GET("/generate", h.Reports.Generate).
		GET("/sales", h.Reports.Sales).
		GET("/inventory", h.Reports.Inventory).
		GET("/fulfillment", h.Reports.Fulfillment)

	NewRouter(engine).
		Register(authGroup, inventoryGroup, orderGroup, productGroup, shippingGroup, integrationGroup, reportGroup).
		Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "Route not found", middleware.GetRequestID(c)))
	})

	return engine, nil
}
