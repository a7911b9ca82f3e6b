package models

import "time"

// ResultDetail is one labeled value shown alongside a heuristic result
type ResultDetail struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HeuristicResult is the output of applying a heuristic to a job
type HeuristicResult struct {
	ID        string         `json:"id"`
	ClassName string         `json:"className"`
	Name      string         `json:"name"`
	JobID     string         `json:"jobId,omitempty"`
	Severity  Severity       `json:"severity"`
	Score     int            `json:"score"`
	Details   []ResultDetail `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AddDetail appends a detail, keeping insertion order
func (r *HeuristicResult) AddDetail(name, value string) {
	r.Details = append(r.Details, ResultDetail{Name: name, Value: value})
}

// Detail returns the value of the first detail with the given name
func (r *HeuristicResult) Detail(name string) (string, bool) {
	for _, d := range r.Details {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}
