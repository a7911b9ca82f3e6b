package models

// CounterName identifies a task counter recorded by the execution engine
type CounterName string

const (
	CounterGCMilliseconds  CounterName = "GC_MILLISECONDS"
	CounterCPUMilliseconds CounterName = "CPU_MILLISECONDS"
)

// Job is a completed application that ran one or more DAGs
type Job struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Succeeded bool   `json:"succeeded"`
	DAGs      []*DAG `json:"dags"`
}

// DAG is a single execution plan within a job
type DAG struct {
	ID       string    `json:"id"`
	Vertices []*Vertex `json:"vertices"`
}

// Vertex is a stage of a DAG made of parallel tasks
type Vertex struct {
	Name  string  `json:"name"`
	Tasks []*Task `json:"tasks"`
}

// Task carries the counters of one task attempt.
// Only sampled tasks had their counters collected.
type Task struct {
	ID             string                `json:"id"`
	AttemptID      string                `json:"attemptId,omitempty"`
	Sampled        bool                  `json:"sampled"`
	TotalRuntimeMs int64                 `json:"totalRuntimeMs"`
	Counters       map[CounterName]int64 `json:"counters,omitempty"`
}

// Counter returns the named counter, or 0 when it was not recorded
func (t *Task) Counter(name CounterName) int64 {
	if t == nil || t.Counters == nil {
		return 0
	}
	return t.Counters[name]
}

// TaskCount returns the number of tasks across all DAGs and vertices, sampled or not
func (j *Job) TaskCount() int {
	count := 0
	for _, dag := range j.DAGs {
		if dag == nil {
			continue
		}
		for _, vertex := range dag.Vertices {
			if vertex == nil {
				continue
			}
			for _, task := range vertex.Tasks {
				if task != nil {
					count++
				}
			}
		}
	}
	return count
}
