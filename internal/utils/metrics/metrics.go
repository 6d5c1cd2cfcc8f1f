package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Generation metrics
	GenerationsTotal    *prometheus.CounterVec
	ProviderDuration    *prometheus.HistogramVec
	ProviderBreakerOpen *prometheus.GaugeVec

	// Ledger metrics
	ReservationsTotal      *prometheus.CounterVec
	ReservationConflicts   prometheus.Counter
	SettlementsTotal       *prometheus.CounterVec
	CreditsAddedCentsTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "colorstudio"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Total number of generation requests by style, funding and outcome",
			},
			[]string{"style", "funding", "outcome"}, // outcome: completed, failed, denied, storage_error
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "provider_duration_seconds",
				Help:      "Image provider call duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
			},
			[]string{"provider", "status"},
		),
		ProviderBreakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "provider_breaker_open",
				Help:      "Provider circuit breaker state (1=open, 0=closed or half-open)",
			},
			[]string{"provider"},
		),

		ReservationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "reservations_total",
				Help:      "Total number of credit reservations by funding kind",
			},
			[]string{"funding"},
		),
		ReservationConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "reservation_conflicts_total",
				Help:      "Reservations that lost a concurrent race and were re-decided",
			},
		),
		SettlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "settlements_total",
				Help:      "Total number of finalized attempts by result",
			},
			[]string{"result"}, // result: settled, released
		),
		CreditsAddedCentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "credits_added_cents_total",
				Help:      "Paid credits added, in cents",
			},
			[]string{"source"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration records the outcome of a generation request.
func (m *Metrics) RecordGeneration(style, funding, outcome string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(style, funding, outcome).Inc()
}

// RecordProviderCall records one image provider call.
func (m *Metrics) RecordProviderCall(provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// SetProviderBreakerOpen sets the breaker state of a provider.
func (m *Metrics) SetProviderBreakerOpen(provider string, open bool) {
	if m == nil {
		return
	}
	value := 0.0
	if open {
		value = 1.0
	}
	m.ProviderBreakerOpen.WithLabelValues(provider).Set(value)
}

// RecordReservation records a successful reservation.
func (m *Metrics) RecordReservation(funding string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(funding).Inc()
}

// RecordReservationConflict records a lost reservation race.
func (m *Metrics) RecordReservationConflict() {
	if m == nil {
		return
	}
	m.ReservationConflicts.Inc()
}

// RecordSettlement records a settled or released attempt.
func (m *Metrics) RecordSettlement(result string) {
	if m == nil {
		return
	}
	m.SettlementsTotal.WithLabelValues(result).Inc()
}

// RecordCreditsAdded records a paid credit top-up.
func (m *Metrics) RecordCreditsAdded(source string, cents int64) {
	if m == nil {
		return
	}
	m.CreditsAddedCentsTotal.WithLabelValues(source).Add(float64(cents))
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
