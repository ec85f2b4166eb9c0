package enrichment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "casegraph"
	metricsSubsystem = "enrichment"
)

// Run outcomes recorded in the runs_total counter.
const (
	OutcomeSuccess        = "success"
	OutcomeNoCoverage     = "no_coverage"
	OutcomeUnknownAdapter = "unknown_adapter"
	OutcomeError          = "error"
)

// unknownAdapterLabel replaces caller-supplied adapter names that match no
// adapter, keeping the label set bounded.
const unknownAdapterLabel = "unknown"

// Metrics counts enrichment runs and their latency per adapter.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "runs_total",
				Help:      "Enrichment runs by adapter and outcome",
			},
			[]string{"adapter", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "duration_seconds",
				Help:      "Wall time of adapter runs in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"adapter"},
		),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

func (m *Metrics) observe(adapter, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(adapter, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeError {
		m.duration.WithLabelValues(adapter).Observe(elapsed.Seconds())
	}
}
