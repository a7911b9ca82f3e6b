package heuristic

import (
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/opscart/tez-gc-heuristic/pkg/config"
	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// Detail labels
const (
	DetailVertexCount  = "Number of vertexes"
	DetailTaskCount    = "Number of tasks"
	DetailAvgRuntimeMs = "Avg task runtime (ms)"
	DetailAvgCPUMs     = "Avg task CPU time (ms)"
	DetailAvgGCMs      = "Avg task GC time (ms)"
	DetailGCRatio      = "Task GC/CPU ratio"
)

// GCHeuristic analyses garbage collection efficiency of a job's tasks
type GCHeuristic struct {
	conf       config.HeuristicConfig
	thresholds *ThresholdSet
	perVertex  bool
	log        logr.Logger
	now        func() time.Time
}

// Option customizes a GCHeuristic
type Option func(*GCHeuristic)

// WithPerVertexDetails adds a breakdown for every vertex graded above None
func WithPerVertexDetails(enabled bool) Option {
	return func(h *GCHeuristic) {
		h.perVertex = enabled
	}
}

// WithLogger sets the logger used for threshold loading and grading
func WithLogger(log logr.Logger) Option {
	return func(h *GCHeuristic) {
		h.log = log
	}
}

// NewGCHeuristic loads thresholds from conf.Params once
func NewGCHeuristic(conf config.HeuristicConfig, opts ...Option) *GCHeuristic {
	h := &GCHeuristic{
		conf: conf,
		log:  logr.Discard(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.thresholds = NewThresholdSet(conf.Name, conf.Params, h.log)
	return h
}

// Config returns the heuristic configuration
func (h *GCHeuristic) Config() config.HeuristicConfig {
	return h.conf
}

// Thresholds returns the effective thresholds
func (h *GCHeuristic) Thresholds() *ThresholdSet {
	return h.thresholds
}

// Apply grades a job. It returns nil when the job did not succeed,
// since there is nothing to grade.
func (h *GCHeuristic) Apply(job *models.Job) *models.HeuristicResult {
	result, _ := h.Evaluate(job)
	return result
}

// Evaluate is Apply that also returns the aggregates the result was built from
func (h *GCHeuristic) Evaluate(job *models.Job) (*models.HeuristicResult, *JobMetrics) {
	if job == nil || !job.Succeeded {
		return nil, nil
	}

	m := AggregateJob(job)
	severity := h.grade(m.TaskMetrics)

	h.log.V(1).Info("Graded job", "job", job.ID, "severity", severity.String(),
		"sampledTasks", m.SampledTasks, "gcRatio", m.GCRatio)

	result := &models.HeuristicResult{
		ID:        uuid.New().String(),
		ClassName: h.conf.ClassName,
		Name:      h.conf.Name,
		JobID:     job.ID,
		Severity:  severity,
		Score:     Score(severity, m.TaskCount),
		CreatedAt: h.now(),
	}

	result.AddDetail(DetailVertexCount, strconv.Itoa(m.VertexCount))
	result.AddDetail(DetailTaskCount, strconv.Itoa(m.TaskCount))
	result.AddDetail(DetailAvgRuntimeMs, strconv.FormatInt(m.AvgRuntimeMs, 10))
	result.AddDetail(DetailAvgCPUMs, strconv.FormatInt(m.AvgCPUMs, 10))
	result.AddDetail(DetailAvgGCMs, strconv.FormatInt(m.AvgGCMs, 10))
	result.AddDetail(DetailGCRatio, formatRatio(m.GCRatio))

	if h.perVertex {
		h.addVertexDetails(result, m.Vertices)
	}
	return result, m
}

// grade is None when no task was sampled anywhere in the job
func (h *GCHeuristic) grade(m TaskMetrics) models.Severity {
	if m.SampledTasks == 0 {
		return models.SeverityNone
	}
	return h.thresholds.Grade(m.AvgRuntimeMs, m.AvgCPUMs, m.AvgGCMs)
}

func (h *GCHeuristic) addVertexDetails(result *models.HeuristicResult, vertices []VertexMetrics) {
	for _, v := range vertices {
		if h.grade(v.TaskMetrics) == models.SeverityNone {
			continue
		}
		result.AddDetail("Number of tasks in vertex "+v.Name, strconv.Itoa(v.SampledTasks))
		result.AddDetail("Avg vertex task runtime (ms) "+v.Name, strconv.FormatInt(v.AvgRuntimeMs, 10))
		result.AddDetail("Avg vertex task CPU time (ms) "+v.Name, strconv.FormatInt(v.AvgCPUMs, 10))
		result.AddDetail("Avg vertex task GC time (ms) "+v.Name, strconv.FormatInt(v.AvgGCMs, 10))
		result.AddDetail("Vertex task GC/CPU ratio "+v.Name, formatRatio(v.GCRatio))
	}
}

func formatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
