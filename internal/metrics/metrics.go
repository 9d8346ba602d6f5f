package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the configuration cascade.
//
// Usage:
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.Cascades.WithLabelValues("committed").Inc()
//	defer m.LoadDuration.Observe(time.Since(start).Seconds())
type Metrics struct {
	// Cascades counts finished cascades.
	// Labels: outcome (committed|discarded)
	Cascades *prometheus.CounterVec

	// Reloads counts reloads that notified subscribers.
	Reloads prometheus.Counter

	// LoadDuration measures the fan-out load of all active profiles in seconds.
	LoadDuration prometheus.Histogram

	// ValidationErrors counts validation errors in merged results.
	// Labels: severity (fatal|warning)
	ValidationErrors *prometheus.CounterVec

	// ActiveProfiles is the number of profiles in the current selection.
	ActiveProfiles prometheus.Gauge

	// Organizations is the number of organizations in the last committed cascade.
	Organizations prometheus.Gauge
}

// New creates the metrics and registers them with reg. A nil reg uses a
// private registry, which keeps the metrics usable but unexported.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Cascades: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confcascade",
			Name:      "cascades_total",
			Help:      "Configuration cascades by outcome.",
		}, []string{"outcome"}),
		Reloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "confcascade",
			Name:      "reloads_total",
			Help:      "Reloads that notified subscribers.",
		}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "confcascade",
			Name:      "load_duration_seconds",
			Help:      "Time to load and merge all active profiles.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		ValidationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "confcascade",
			Name:      "validation_errors_total",
			Help:      "Validation errors reported in merged configuration results.",
		}, []string{"severity"}),
		ActiveProfiles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "confcascade",
			Name:      "active_profiles",
			Help:      "Profiles in the current selection.",
		}),
		Organizations: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "confcascade",
			Name:      "organizations",
			Help:      "Organizations resolved by the last committed cascade.",
		}),
	}
}
