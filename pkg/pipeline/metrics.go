package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	PhaseRunsTotal       *prometheus.CounterVec
	PhaseDurationSeconds *prometheus.HistogramVec

	MentionsLoadedTotal  *prometheus.CounterVec
	MentionsSkippedTotal *prometheus.CounterVec

	EntitiesResolved *prometheus.GaugeVec
	EntityConfidence *prometheus.HistogramVec
}

// DefaultMetrics creates metrics on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of pipeline metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PhaseRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canonize_phase_runs_total",
				Help: "Total phase executions by outcome",
			},
			[]string{"phase", "status"},
		),
		PhaseDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canonize_phase_duration_seconds",
				Help:    "Phase execution latency",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"phase"},
		),
		MentionsLoadedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canonize_mentions_loaded_total",
				Help: "Total staged mentions accepted per kind",
			},
			[]string{"kind"},
		),
		MentionsSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canonize_mentions_skipped_total",
				Help: "Total staged records rejected per reason",
			},
			[]string{"reason"},
		),
		EntitiesResolved: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canonize_entities_resolved",
				Help: "Canonical entities produced by the last resolution",
			},
			[]string{"kind"},
		),
		EntityConfidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canonize_entity_confidence",
				Help:    "Canonical entity confidence scores",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
			},
			[]string{"kind"},
		),
	}
}

// RecordPhase records one phase execution.
func (m *Metrics) RecordPhase(phase, status string, seconds float64) {
	m.PhaseRunsTotal.WithLabelValues(phase, status).Inc()
	m.PhaseDurationSeconds.WithLabelValues(phase).Observe(seconds)
}

// RecordLoaded records accepted mentions for a kind.
func (m *Metrics) RecordLoaded(kind string, count int) {
	m.MentionsLoadedTotal.WithLabelValues(kind).Add(float64(count))
}

// RecordSkipped records rejected staging records for a reason.
func (m *Metrics) RecordSkipped(reason string, count int) {
	m.MentionsSkippedTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordResolution records the outcome of one canonicalization pass.
func (m *Metrics) RecordResolution(kind string, entities int, confidences []float64) {
	m.EntitiesResolved.WithLabelValues(kind).Set(float64(entities))
	for _, c := range confidences {
		m.EntityConfidence.WithLabelValues(kind).Observe(c)
	}
}
