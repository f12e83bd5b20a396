package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	ConsentsRecorded    *prometheus.CounterVec
	ConsentsRevoked     prometheus.Counter
	AccessDenied        *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	CreateLatency       prometheus.Histogram
	ActiveConsentsTotal prometheus.Gauge
}

// New registers and returns consent metrics collectors.
func New() *Metrics {
	return &Metrics{
		ConsentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_consents_recorded_total",
			Help: "Total number of consent records created, labeled by acceptance source",
		}, []string{"source"}),
		ConsentsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentd_consents_revoked_total",
			Help: "Total number of consents revoked",
		}),
		AccessDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_access_denied_total",
			Help: "Total number of record accesses denied, labeled by operation",
		}, []string{"operation"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_validation_failures_total",
			Help: "Total number of rejected consent creations, labeled by field",
		}, []string{"field"}),
		CreateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "consentd_create_latency_seconds",
			Help:    "Latency of consent create operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveConsentsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "consentd_active_consents_total",
			Help: "Current number of active (non-revoked) consents recorded by this process",
		}),
	}
}

func (m *Metrics) IncrementConsentsRecorded(source string) {
	if source == "" {
		source = "unknown"
	}
	m.ConsentsRecorded.WithLabelValues(source).Inc()
	m.ActiveConsentsTotal.Inc()
}

func (m *Metrics) IncrementConsentsRevoked() {
	m.ConsentsRevoked.Inc()
	m.ActiveConsentsTotal.Dec()
}

func (m *Metrics) IncrementAccessDenied(operation string) {
	m.AccessDenied.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementValidationFailures(field string) {
	if field == "" {
		field = "request"
	}
	m.ValidationFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveCreateLatency(durationSeconds float64) {
	m.CreateLatency.Observe(durationSeconds)
}
