package datasource

import (
	"context"
	"errors"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// ErrJobNotFound is returned when a source has no record of the job
var ErrJobNotFound = errors.New("job not found")

// JobSource loads completed job records for grading
type JobSource interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	Name() string
	Close() error
}
