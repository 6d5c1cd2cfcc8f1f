package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Domains
	"github.com/colorstudio/server/internal/domain/generation"
	"github.com/colorstudio/server/internal/domain/ledger"
	"github.com/colorstudio/server/internal/domain/order"

	// Inbound adapters
	ginhttp "github.com/colorstudio/server/internal/adapter/inbound/gin"

	// Ports
	"github.com/colorstudio/server/internal/port/inbound"
	"github.com/colorstudio/server/internal/port/outbound"

	// Outbound adapters
	"github.com/colorstudio/server/internal/adapter/outbound/auth"
	"github.com/colorstudio/server/internal/adapter/outbound/imagegen"
	"github.com/colorstudio/server/internal/adapter/outbound/memory"
	"github.com/colorstudio/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/colorstudio/server/internal/adapter/outbound/redis"
	s3adapter "github.com/colorstudio/server/internal/adapter/outbound/s3"

	// Infrastructure
	"github.com/colorstudio/server/internal/infra/config"
	"github.com/colorstudio/server/internal/infra/httpclient"
	"github.com/colorstudio/server/internal/shared/cache"
	"github.com/colorstudio/server/internal/shared/database"
	"github.com/colorstudio/server/internal/shared/logger"

	// Utils
	"github.com/colorstudio/server/internal/utils/metrics"
	"github.com/colorstudio/server/internal/utils/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideRateLimiter,
	ProvideIdempotencyStore,
)

// ProvideLogger creates the zap logger. The cleanup flushes buffered entries.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func()) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return log, func() { _ = log.Sync() }
}

// ProvideRegistry creates the Prometheus registry served at /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("colorstudio", reg)
}

// ProvideRedisClient creates a Redis client. Redis is optional: without an
// address, or when it cannot be reached, nil is returned.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without rate limiting", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRateLimiter creates a rate limiter. Rate limiting needs Redis.
func ProvideRateLimiter(cfg *config.Config, redis goredis.UniversalClient) outbound.RateLimiterPort {
	if redis == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideIdempotencyStore creates the idempotency store, shared through Redis when available.
func ProvideIdempotencyStore(redis goredis.UniversalClient) outbound.IdempotencyStorePort {
	if redis == nil {
		return memory.NewIdempotencyStore()
	}
	return redisadapter.NewIdempotencyStore(redis)
}

// ===== Storage Providers =====

// Stores holds the persistence ports of the selected database driver.
type Stores struct {
	Ledger   outbound.LedgerDatabasePort
	Attempts outbound.AttemptDatabasePort
	Orders   outbound.OrderDatabasePort
	// Ping reports whether the backing database is reachable.
	Ping ginhttp.HealthCheck
}

// StoreSet provides persistence dependencies.
var StoreSet = wire.NewSet(
	ProvideStores,
	wire.FieldsOf(new(*Stores), "Ledger", "Attempts", "Orders"),
	ProvideImageStorage,
)

// ProvideStores opens the configured database and builds its adapters.
func ProvideStores(cfg *config.Config, zapLog *zap.Logger) (*Stores, func(), error) {
	if cfg.Database.Driver == "memory" {
		zapLog.Warn("using in-memory store, balances are lost on restart")
		ledgerStore := memory.NewLedgerStore()
		return &Stores{
			Ledger:   ledgerStore,
			Attempts: ledgerStore,
			Orders:   memory.NewOrderStore(),
			Ping:     func(context.Context) error { return nil },
		}, func() {}, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = database.Close(db) }

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	return &Stores{
		Ledger:   postgres.NewLedgerAdapter(db),
		Attempts: postgres.NewAttemptAdapter(db),
		Orders:   postgres.NewOrderAdapter(db),
		Ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
	}, cleanup, nil
}

// ProvideImageStorage creates the object storage adapter. Storage is optional:
// without a bucket, nil is returned and images are not persisted.
func ProvideImageStorage(cfg *config.Config) (outbound.ImageStoragePort, error) {
	if cfg.Storage.Bucket == "" {
		return nil, nil
	}
	client, err := s3adapter.NewClient(context.Background(), &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	return s3adapter.NewImageStorageAdapter(client, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL), nil
}

// ===== Domain Providers =====

// DomainSet provides domain dependencies.
var DomainSet = wire.NewSet(
	ProvideImageGenerator,
	ProvideLedgerDomain,
	ProvideGenerationDomain,
	ProvideOrderDomain,
)

// ProvideImageGenerator creates the provider client behind a circuit breaker.
func ProvideImageGenerator(cfg *config.Config, client *http.Client, m *metrics.Metrics, zapLog *zap.Logger) outbound.ImageGeneratorPort {
	openRouter := imagegen.NewOpenRouterAdapter(client, imagegen.Config{
		BaseURL:             cfg.Provider.BaseURL,
		APIKey:              cfg.Provider.APIKey,
		Model:               cfg.Provider.Model,
		Referer:             cfg.Provider.Referer,
		Title:               cfg.Provider.Title,
		MaxCompletionTokens: cfg.Provider.MaxCompletionTokens,
		Temperature:         cfg.Provider.Temperature,
	})
	return imagegen.NewBreakerGenerator(openRouter, imagegen.ProviderName, imagegen.BreakerConfig{
		FailureThreshold: cfg.Provider.FailureThreshold,
		Timeout:          cfg.Provider.CircuitTimeout,
	}, m, zapLog)
}

// ProvideLedgerDomain creates the credit ledger.
func ProvideLedgerDomain(ledgerDB outbound.LedgerDatabasePort, cfg *config.Config, m *metrics.Metrics, zapLog *zap.Logger) inbound.LedgerDomain {
	return ledger.NewLedgerDomain(ledgerDB, &ledger.Config{
		UnitCostCents:          cfg.Generation.UnitCostCents,
		InitialFreeGenerations: cfg.Generation.InitialFreeGenerations,
		ReserveAttempts:        cfg.Generation.ReserveAttempts,
	}, m, zapLog)
}

// ProvideGenerationDomain creates the generation domain.
func ProvideGenerationDomain(
	ledgerDomain inbound.LedgerDomain,
	attemptDB outbound.AttemptDatabasePort,
	generator outbound.ImageGeneratorPort,
	storage outbound.ImageStoragePort,
	cfg *config.Config,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) inbound.GenerationDomain {
	genCfg := generation.DefaultConfig()
	genCfg.ProviderTimeout = cfg.Generation.ProviderTimeout
	if cfg.Generation.MaxImageBytes > 0 {
		genCfg.MaxImageBytes = cfg.Generation.MaxImageBytes
	}
	return generation.NewDomain(ledgerDomain, attemptDB, generator, storage, genCfg, m, zapLog)
}

// ProvideOrderDomain creates the print order domain.
func ProvideOrderDomain(orderDB outbound.OrderDatabasePort, attemptDB outbound.AttemptDatabasePort, zapLog *zap.Logger) inbound.OrderDomain {
	return order.NewOrderDomain(orderDB, attemptDB, zapLog)
}

// ===== HTTP Providers =====

// HTTPSet provides HTTP dependencies.
var HTTPSet = wire.NewSet(
	ProvideTokenValidator,
	ProvideAdminAuthorizer,
	ginhttp.NewGenerationHandler,
	ginhttp.NewCreditsHandler,
	ginhttp.NewOrderHandler,
	ProvideHealthHandler,
	ProvideRouter,
)

// ProvideTokenValidator creates the bearer token validator.
func ProvideTokenValidator(cfg *config.Config) outbound.TokenValidatorPort {
	return auth.NewJWTValidator(&auth.JWTConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	})
}

// ProvideAdminAuthorizer creates the admin allow list.
func ProvideAdminAuthorizer(cfg *config.Config) *middleware.AdminAuthorizer {
	return middleware.NewAdminAuthorizer(cfg.AccessControl.AdminUserIDs)
}

// ProvideHealthHandler creates the health handler checking every backing service.
func ProvideHealthHandler(stores *Stores, redis goredis.UniversalClient) *ginhttp.HealthHandler {
	checks := map[string]ginhttp.HealthCheck{"database": stores.Ping}
	if redis != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
	}
	return ginhttp.NewHealthHandler(checks)
}

// ProvideRouter creates the gin engine with all routes registered.
func ProvideRouter(
	cfg *config.Config,
	generationHandler inbound.GenerationHttpPort,
	creditsHandler inbound.CreditsHttpPort,
	orderHandler inbound.OrderHttpPort,
	healthHandler *ginhttp.HealthHandler,
	validator outbound.TokenValidatorPort,
	admins *middleware.AdminAuthorizer,
	limiter outbound.RateLimiterPort,
	idempotency outbound.IdempotencyStorePort,
	m *metrics.Metrics,
	reg *prometheus.Registry,
	zapLog *zap.Logger,
) *gin.Engine {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var metricsHandler http.Handler
	if cfg.Server.MetricsAddress == "" {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	return ginhttp.NewRouter(&ginhttp.RouterConfig{
		Generation:         generationHandler,
		Credits:            creditsHandler,
		Orders:             orderHandler,
		Health:             healthHandler,
		TokenValidator:     validator,
		Admins:             admins,
		RateLimiter:        limiter,
		GlobalLimit:        cfg.RateLimit.GlobalLimit,
		GlobalWindow:       cfg.RateLimit.GlobalWindow,
		GenerationLimit:    cfg.RateLimit.GenerationLimit,
		GenerationWindow:   cfg.RateLimit.GenerationWindow,
		IdempotencyStore:   idempotency,
		IdempotencyTTL:     cfg.RateLimit.IdempotencyTTL,
		IdempotencyLockTTL: cfg.Generation.ProviderTimeout + time.Minute,
		Metrics:            m,
		MetricsHandler:     metricsHandler,
		Logger:             zapLog,
	})
}

// AppSet provides every application dependency.
var AppSet = wire.NewSet(
	InfraSet,
	StoreSet,
	DomainSet,
	HTTPSet,
	NewApp,
)
