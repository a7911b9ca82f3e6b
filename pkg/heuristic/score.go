package heuristic

import "github.com/opscart/tez-gc-heuristic/pkg/models"

// Score weights a severity by the number of tasks it covers.
// None and Low results do not contribute to a job's score.
func Score(severity models.Severity, tasks int) int {
	if severity <= models.SeverityLow {
		return 0
	}
	return severity.Value() * tasks
}
