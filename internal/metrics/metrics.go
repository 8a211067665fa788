// Package metrics exposes Prometheus instrumentation for verification calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/netresearch/dirverify"
)

// Metrics holds all Prometheus metrics for the verification service.
type Metrics struct {
	verifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// New creates and registers all verification metrics on the default
// registry.
func New() *Metrics {
	return &Metrics{
		verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dirverify_verifications_total",
			Help: "Completed verification calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dirverify_verification_duration_seconds",
			Help:    "Full directory round-trip duration per verification call",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// ObserveVerification implements dirverify.MetricsRecorder.
func (m *Metrics) ObserveVerification(operation string, outcome dirverify.Outcome, d time.Duration) {
	m.verifications.WithLabelValues(operation, string(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}
