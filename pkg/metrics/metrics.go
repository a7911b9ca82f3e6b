package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// Metrics bundles prometheus collectors describing grading outcomes.
type Metrics struct {
	registry     *prometheus.Registry
	Results      *prometheus.CounterVec
	Skipped      prometheus.Counter
	GCRatio      prometheus.Histogram
	SampledTasks prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gc_heuristic_results_total",
			Help: "Total number of graded jobs by severity.",
		}, []string{"severity"}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gc_heuristic_skipped_total",
			Help: "Total number of jobs skipped because they did not succeed.",
		}),
		GCRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gc_heuristic_gc_cpu_ratio",
			Help:    "Job-wide average GC time over average CPU time.",
			Buckets: []float64{0.005, 0.01, 0.02, 0.03, 0.04, 0.06, 0.1, 0.25},
		}),
		SampledTasks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gc_heuristic_sampled_tasks_total",
			Help: "Total number of sampled tasks that fed the averages.",
		}),
	}

	registry.MustRegister(
		m.Results,
		m.Skipped,
		m.GCRatio,
		m.SampledTasks,
	)

	return m
}

// Observe records one graded job
func (m *Metrics) Observe(result *models.HeuristicResult, gcRatio float64, sampledTasks int) {
	m.Results.WithLabelValues(result.Severity.String()).Inc()
	m.GCRatio.Observe(gcRatio)
	m.SampledTasks.Add(float64(sampledTasks))
}

// ObserveSkipped records a job that produced no result
func (m *Metrics) ObserveSkipped() {
	m.Skipped.Inc()
}

// WriteText writes every registered family in the text exposition format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
