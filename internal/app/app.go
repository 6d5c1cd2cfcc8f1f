package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/domain/generation"
	"github.com/colorstudio/server/internal/infra/config"
	"github.com/colorstudio/server/internal/port/inbound"
)

// staleGrace is added to the finalize window before a pending attempt is swept.
const staleGrace = time.Minute

// App is the assembled service.
type App struct {
	config   *config.Config
	router   *gin.Engine
	registry *prometheus.Registry
	ledger   inbound.LedgerDomain
	logger   *zap.Logger
}

// NewApp creates the application from its wired parts.
func NewApp(cfg *config.Config, router *gin.Engine, reg *prometheus.Registry, ledgerDomain inbound.LedgerDomain, zapLog *zap.Logger) *App {
	return &App{
		config:   cfg,
		router:   router,
		registry: reg,
		ledger:   ledgerDomain,
		logger:   zapLog,
	}
}

// New builds the application. The returned cleanup releases database and
// Redis connections and must be called after the server has stopped.
func New(cfg *config.Config) (*App, func(), error) {
	return InitializeApp(cfg)
}

// Router returns the HTTP router.
func (a *App) Router() http.Handler {
	return a.router
}

// MetricsHandler returns the handler for a dedicated metrics listener.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// RunStaleSweeper refunds abandoned pending attempts once at start and then
// every generation.stale_sweep_interval until ctx is done.
func (a *App) RunStaleSweeper(ctx context.Context) error {
	interval := a.config.Generation.StaleSweepInterval
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.SweepStale(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SweepStale runs one stale attempt sweep. Errors are logged; the next sweep retries.
func (a *App) SweepStale(ctx context.Context) int {
	released, err := a.ledger.ReleaseStale(ctx, staleAttemptAge(a.config))
	if err != nil && ctx.Err() == nil {
		a.logger.Error("stale attempt sweep failed", zap.Int("released", released), zap.Error(err))
	} else if released > 0 {
		a.logger.Info("stale attempts released", zap.Int("released", released))
	}
	return released
}

// staleAttemptAge returns how long an attempt may stay pending. A generation
// still inside its provider call and finalize window is never swept.
func staleAttemptAge(cfg *config.Config) time.Duration {
	minimum := cfg.Generation.ProviderTimeout + generation.FinalizeTimeout
	if cfg.Generation.StaleAfter > minimum {
		return cfg.Generation.StaleAfter
	}
	return minimum + staleGrace
}
