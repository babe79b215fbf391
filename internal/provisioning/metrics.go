package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "exodeploy"

// Metrics collects run metrics in a private registry. They are written as a
// node-exporter textfile next to the report rather than served.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageOutcomes *prometheus.CounterVec
	teardown      *prometheus.CounterVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1s to ~17min
			},
			[]string{"stage"},
		),
		stageOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "stage",
				Name:      "outcomes_total",
				Help:      "Pipeline stage outcomes by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		teardown: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "teardown",
				Name:      "resources_total",
				Help:      "Teardown targets by kind and result (deleted, failed, residual)",
			},
			[]string{"kind", "result"},
		),
	}
	m.registry.MustRegister(m.stageDuration, m.stageOutcomes, m.teardown)
	return m
}

// ObserveStage records the outcome and duration of one stage.
func (m *Metrics) ObserveStage(stage string, outcome Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	m.stageOutcomes.WithLabelValues(stage, string(outcome)).Inc()
}

// ObserveTeardown counts one teardown target result.
func (m *Metrics) ObserveTeardown(kind, result string) {
	if m == nil {
		return
	}
	m.teardown.WithLabelValues(kind, result).Inc()
}

// WriteTextfile writes the current metric values to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
