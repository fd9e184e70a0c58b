package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the importer's Prometheus metrics. Counters are labeled by
// pipeline stage so a batch runner can see where imports die.
type Metrics struct {
	ImportsTotal  *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec

	StationsParsed   prometheus.Histogram
	StationsFiltered prometheus.Counter
	LoftFallbacks    prometheus.Counter
}

// NewMetrics creates a metrics collector registered on reg. Pass a fresh
// registry in tests to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ImportsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qloft_imports_total",
				Help: "Total import runs by outcome",
			},
			[]string{"outcome"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qloft_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"stage"},
		),
		StageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qloft_stage_errors_total",
				Help: "Stage failures by stage",
			},
			[]string{"stage"},
		),
		StationsParsed: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qloft_stations_parsed",
			Help:    "Stations per parsed blade definition",
			Buckets: []float64{2, 5, 10, 20, 50, 100},
		}),
		StationsFiltered: f.NewCounter(prometheus.CounterOpts{
			Name: "qloft_stations_filtered_total",
			Help: "Circular root stations removed",
		}),
		LoftFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "qloft_loft_fallbacks_total",
			Help: "Guided lofts that fell back to unguided",
		}),
	}
}

// NewNopMetrics creates a collector on a throwaway registry, for tests and
// callers that do not scrape.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// ObserveStage records a stage duration.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordOutcome bumps the import counter for a terminal state.
func (m *Metrics) RecordOutcome(outcome string) {
	m.ImportsTotal.WithLabelValues(outcome).Inc()
}

// RecordStageError bumps the error counter for a stage.
func (m *Metrics) RecordStageError(stage string) {
	m.StageErrors.WithLabelValues(stage).Inc()
}
