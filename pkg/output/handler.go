package output

import (
	"context"
	"fmt"
	"io"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// Handler defines the interface for result output
type Handler interface {
	DisplayResult(ctx context.Context, result *models.HeuristicResult) error
	// DisplayNoResult reports a job that could not be graded
	DisplayNoResult(ctx context.Context, jobID string) error
	Format() string
}

// NewHandler returns the handler for format writing to w
func NewHandler(format string, w io.Writer) (Handler, error) {
	switch format {
	case "text":
		return &TextHandler{w: w}, nil
	case "json":
		return &JSONHandler{w: w}, nil
	case "csv":
		return &CSVHandler{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
