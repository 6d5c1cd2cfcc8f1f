package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/colorstudio/server/internal/utils/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrProviderUnavailable is returned while the breaker rejects calls.
var ErrProviderUnavailable = errors.New("image provider temporarily unavailable")

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// BreakerGenerator wraps an ImageGeneratorPort with a circuit breaker and
// call metrics. It never retries: an open breaker fails fast instead.
type BreakerGenerator struct {
	next    outbound.ImageGeneratorPort
	name    string
	breaker *gobreaker.CircuitBreaker[*outbound.ImageGenerationResult]
	metrics *metrics.Metrics
}

// NewBreakerGenerator creates a breaker-protected generator.
func NewBreakerGenerator(next outbound.ImageGeneratorPort, name string, cfg BreakerConfig, m *metrics.Metrics, logger *zap.Logger) *BreakerGenerator {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetProviderBreakerOpen(name, to == gobreaker.StateOpen)
			logger.Warn("provider breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A caller giving up is not a provider fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerGenerator{
		next:    next,
		name:    name,
		breaker: gobreaker.NewCircuitBreaker[*outbound.ImageGenerationResult](settings),
		metrics: m,
	}
}

// Generate implements outbound.ImageGeneratorPort.
func (g *BreakerGenerator) Generate(ctx context.Context, req *outbound.ImageGenerationRequest) (*outbound.ImageGenerationResult, error) {
	start := time.Now()
	result, err := g.breaker.Execute(func() (*outbound.ImageGenerationResult, error) {
		return g.next.Generate(ctx, req)
	})

	status := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.RecordProviderCall(g.name, "rejected", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	g.metrics.RecordProviderCall(g.name, status, time.Since(start))

	return result, err
}

// State returns the breaker state.
func (g *BreakerGenerator) State() gobreaker.State {
	return g.breaker.State()
}

// Compile-time interface check
var _ outbound.ImageGeneratorPort = (*BreakerGenerator)(nil)
