package gin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/port/inbound"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/colorstudio/server/internal/utils/metrics"
	"github.com/colorstudio/server/internal/utils/middleware"
)

// RouterConfig holds everything the HTTP router is assembled from.
type RouterConfig struct {
	Generation inbound.GenerationHttpPort
	Credits    inbound.CreditsHttpPort
	Orders     inbound.OrderHttpPort
	Health     *HealthHandler

	TokenValidator outbound.TokenValidatorPort
	Admins         *middleware.AdminAuthorizer

	// RateLimiter is optional. A nil limiter disables rate limiting.
	RateLimiter      outbound.RateLimiterPort
	GlobalLimit      int
	GlobalWindow     time.Duration
	GenerationLimit  int
	GenerationWindow time.Duration

	// IdempotencyStore is optional. A nil store disables Idempotency-Key handling.
	IdempotencyStore outbound.IdempotencyStorePort
	IdempotencyTTL   time.Duration
	// IdempotencyLockTTL must exceed the slowest generation.
	IdempotencyLockTTL time.Duration

	Metrics *metrics.Metrics
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// NewRouter creates the gin engine and registers all routes.
func NewRouter(cfg *RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Health)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("")
	if cfg.RateLimiter != nil && cfg.GlobalLimit > 0 {
		api.Use(middleware.RateLimitByIP(cfg.RateLimiter, cfg.GlobalLimit, cfg.GlobalWindow, cfg.Logger))
	}

	authed := api.Group("", middleware.RequireAuth(cfg.TokenValidator))

	// Generation endpoints spend credits, so they get a per-user limit and
	// replay protection on top of authentication.
	generate := []gin.HandlerFunc{}
	if cfg.RateLimiter != nil && cfg.GenerationLimit > 0 {
		generate = append(generate, middleware.RateLimitByUser(cfg.RateLimiter, "generation", cfg.GenerationLimit, cfg.GenerationWindow, cfg.Logger))
	}
	if cfg.IdempotencyStore != nil {
		idemCfg := middleware.DefaultIdempotencyConfig()
		if cfg.IdempotencyTTL > 0 {
			idemCfg.TTL = cfg.IdempotencyTTL
		}
		if cfg.IdempotencyLockTTL > 0 {
			idemCfg.LockTTL = cfg.IdempotencyLockTTL
		}
		generate = append(generate, middleware.Idempotency(cfg.IdempotencyStore, idemCfg, cfg.Logger))
	}
	generate = append(generate, cfg.Generation.Generate)

	// Path kept for clients of the hosted function.
	authed.POST("/functions/v1/generate-colored-image", generate...)

	v1 := authed.Group("/api/v1")
	{
		v1.POST("/generations", generate...)
		v1.GET("/generations", cfg.Generation.ListAttempts)
		v1.GET("/generations/:id", cfg.Generation.GetAttempt)

		v1.GET("/credits", cfg.Credits.GetBalance)

		v1.POST("/orders", cfg.Orders.CreateOrder)
		v1.GET("/orders", cfg.Orders.ListOrders)
		v1.GET("/orders/:id", cfg.Orders.GetOrder)
	}

	admin := v1.Group("/admin", middleware.RequireAdmin(cfg.Admins))
	{
		admin.POST("/credits", cfg.Credits.AddCredits)
	}

	public := api.Group("/api/v1")
	{
		public.GET("/styles", cfg.Generation.ListStyles)
		public.GET("/print-options", cfg.Orders.GetPrintOptions)
	}

	return r
}
