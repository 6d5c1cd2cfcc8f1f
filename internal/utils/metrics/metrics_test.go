package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("POST", "/api/v1/generations", http.StatusOK, 100*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/generations", http.StatusPaymentRequired, 10*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/generations", http.StatusPaymentRequired, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/generations", "2xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/generations", "4xx")))
}

func TestLedgerCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordReservation("free")
	m.RecordReservation("paid")
	m.RecordReservation("paid")
	m.RecordReservationConflict()
	m.RecordSettlement("settled")
	m.RecordSettlement("released")
	m.RecordCreditsAdded("admin", 500)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("free")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("released")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.CreditsAddedCentsTotal.WithLabelValues("admin")))
}

func TestGenerationMetrics(t *testing.T) {
	m := newTestMetrics()

	m.RecordGeneration("storybook", "free", "completed")
	m.RecordProviderCall("openrouter", "success", 3*time.Second)
	m.SetProviderBreakerOpen("openrouter", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("storybook", "free", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderBreakerOpen.WithLabelValues("openrouter")))

	m.SetProviderBreakerOpen("openrouter", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ProviderBreakerOpen.WithLabelValues("openrouter")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordGeneration("bold", "paid", "failed")
		m.RecordProviderCall("openrouter", "error", time.Second)
		m.SetProviderBreakerOpen("openrouter", true)
		m.RecordReservation("free")
		m.RecordReservationConflict()
		m.RecordSettlement("settled")
		m.RecordCreditsAdded("admin", 1)
	})
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{401, "4xx"},
		{402, "4xx"},
		{500, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCodeToString(tt.code))
	}
}
