package limits

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the limits package.
//
// Metrics are registered against the caller's registry so tests and embedders
// can scope them; pass nil to register with a fresh private registry.
type Metrics struct {
	registry *prometheus.Registry

	checks  *prometheus.CounterVec
	waits   *prometheus.HistogramVec
	active  prometheus.Gauge
	swept   prometheus.Counter
}

// NewMetrics creates a Metrics instance registered with the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_limits_checks_total",
				Help: "Total number of rate limit checks performed",
			},
			[]string{"profile", "result"},
		),

		waits: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sluice_limits_wait_seconds",
				Help:    "Time callers spent waiting for reserved tokens to mature",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
			},
			[]string{"profile"},
		),

		active: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sluice_limits_active_buckets",
				Help: "Current number of live per-key buckets",
			},
		),

		swept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sluice_limits_swept_buckets_total",
				Help: "Total number of idle buckets removed by the janitor",
			},
		),
	}
}

// Registry returns the registry the metrics are registered with, for mounting
// an exposition endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCheck records one limit decision.
func (m *Metrics) RecordCheck(profile string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "blocked"
	}
	m.checks.WithLabelValues(profile, result).Inc()
}

// ObserveWait records the time a caller spent sleeping out a reservation.
func (m *Metrics) ObserveWait(profile string, wait time.Duration) {
	m.waits.WithLabelValues(profile).Observe(wait.Seconds())
}

// SetActiveBuckets updates the live bucket gauge.
func (m *Metrics) SetActiveBuckets(n int) {
	m.active.Set(float64(n))
}

// RecordSweep records the outcome of one janitor sweep.
func (m *Metrics) RecordSweep(swept, remaining int) {
	m.swept.Add(float64(swept))
	m.active.Set(float64(remaining))
}
