package heuristic

import "github.com/opscart/tez-gc-heuristic/pkg/models"

// TaskMetrics are the averaged counters of a set of sampled tasks
type TaskMetrics struct {
	SampledTasks int
	AvgRuntimeMs int64
	AvgCPUMs     int64
	AvgGCMs      int64
	GCRatio      float64
}

// VertexMetrics are the averages of a single vertex
type VertexMetrics struct {
	Name string
	TaskMetrics
}

// JobMetrics are job-wide averages over every DAG and vertex combined
type JobMetrics struct {
	VertexCount int
	TaskCount   int
	TaskMetrics
	Vertices []VertexMetrics
}

type samples struct {
	runtimeMs []int64
	cpuMs     []int64
	gcMs      []int64
}

func (s *samples) add(task *models.Task) {
	s.runtimeMs = append(s.runtimeMs, task.TotalRuntimeMs)
	s.gcMs = append(s.gcMs, task.Counter(models.CounterGCMilliseconds))
	s.cpuMs = append(s.cpuMs, task.Counter(models.CounterCPUMilliseconds))
}

func (s *samples) metrics() TaskMetrics {
	m := TaskMetrics{
		SampledTasks: len(s.runtimeMs),
		AvgRuntimeMs: average(s.runtimeMs),
		AvgCPUMs:     average(s.cpuMs),
		AvgGCMs:      average(s.gcMs),
	}
	m.GCRatio = ratio(m.AvgGCMs, m.AvgCPUMs)
	return m
}

// AggregateJob walks DAGs, vertices and tasks in order. Every task is
// counted, only sampled tasks feed the averages. Null entries are skipped.
func AggregateJob(job *models.Job) *JobMetrics {
	result := &JobMetrics{}
	var all samples

	for _, dag := range job.DAGs {
		if dag == nil {
			continue
		}
		for _, vertex := range dag.Vertices {
			if vertex == nil {
				continue
			}
			result.VertexCount++

			var vs samples
			for _, task := range vertex.Tasks {
				if task == nil {
					continue
				}
				result.TaskCount++
				if !task.Sampled {
					continue
				}
				all.add(task)
				vs.add(task)
			}
			result.Vertices = append(result.Vertices, VertexMetrics{
				Name:        vertex.Name,
				TaskMetrics: vs.metrics(),
			})
		}
	}

	result.TaskMetrics = all.metrics()
	return result
}
