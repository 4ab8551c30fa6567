// Package metrics exposes Prometheus collectors for the generation workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "veostudio"

// Metrics holds the workflow collectors. A nil *Metrics records nothing.
type Metrics struct {
	validations   *prometheus.CounterVec
	generations   *prometheus.CounterVec
	jobDuration   prometheus.Histogram
	pollCycles    prometheus.Counter
	activeJobs    prometheus.Gauge
	downloadBytes prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_validations_total",
			Help:      "Credential probes by result.",
		}, []string{"result"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Finished generation jobs by model and outcome.",
		}, []string{"model", "outcome"}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time from submission to a terminal state.",
			Buckets:   []float64{10, 30, 60, 120, 180, 300, 600, 1200},
		}),
		pollCycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Operation status queries issued while polling.",
		}),
		activeJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_generations",
			Help:      "Generation jobs currently running.",
		}),
		downloadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes of generated video downloaded.",
		}),
	}
}

func (m *Metrics) CredentialChecked(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.validations.WithLabelValues(result).Inc()
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.activeJobs.Inc()
}

// JobFinished records a terminal job; outcome is success, error or cancelled.
func (m *Metrics) JobFinished(model, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.activeJobs.Dec()
	m.generations.WithLabelValues(model, outcome).Inc()
	m.jobDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) PollCycle() {
	if m == nil {
		return
	}
	m.pollCycles.Inc()
}

func (m *Metrics) Downloaded(n int) {
	if m == nil {
		return
	}
	m.downloadBytes.Add(float64(n))
}
