// Package metrics exports pipeline run metrics to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/petsim/internal/pipeline"
	"github.com/danielpatrickdp/petsim/internal/state"
)

// Metrics holds the run metrics.
type Metrics struct {
	// Runs by outcome ("appended" | "failed") and the stage the run ended at
	Runs *prometheus.CounterVec

	RunDuration prometheus.Histogram

	// Latest trait values, one series per trait
	Traits *prometheus.GaugeVec

	// Day index (week*7 + weekday) of the last appended record
	LastDay prometheus.Gauge
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "petsim_runs_total",
			Help: "Pipeline runs by outcome and final stage",
		}, []string{"outcome", "stage"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "petsim_run_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),

		Traits: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "petsim_trait_value",
			Help: "Trait values of the last appended record",
		}, []string{"trait"}),

		LastDay: f.NewGauge(prometheus.GaugeOpts{
			Name: "petsim_last_day_index",
			Help: "week*7 + weekday of the last appended record",
		}),
	}
}

// ObserveRun records the outcome of one run. A nil receiver is a no-op.
func (m *Metrics) ObserveRun(res pipeline.Result, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(elapsed.Seconds())

	if err != nil {
		stage := "unknown"
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			stage = string(runErr.Stage)
		}
		m.Runs.WithLabelValues("failed", stage).Inc()
		return
	}

	m.Runs.WithLabelValues("appended", string(pipeline.StageDone)).Inc()
	if t := res.Record.Traits; t != nil {
		for i, name := range state.TraitNames {
			m.Traits.WithLabelValues(name).Set(float64(t[i]))
		}
	}
	key := res.Record.Key
	m.LastDay.Set(float64(key.Week*state.DaysPerWeek + int(key.Day)))
}
