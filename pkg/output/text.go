package output

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

type TextHandler struct {
	w io.Writer
}

func (h *TextHandler) DisplayResult(ctx context.Context, result *models.HeuristicResult) error {
	fmt.Fprintf(h.w, "[%s] %s (job %s)\n", result.Severity, result.Name, result.JobID)
	fmt.Fprintf(h.w, "  Score: %d\n", result.Score)

	tw := tabwriter.NewWriter(h.w, 0, 0, 2, ' ', 0)
	for _, d := range result.Details {
		fmt.Fprintf(tw, "  %s:\t%s\n", d.Name, d.Value)
	}
	return tw.Flush()
}

func (h *TextHandler) DisplayNoResult(ctx context.Context, jobID string) error {
	_, err := fmt.Fprintf(h.w, "[INFO] Job %s did not succeed, nothing to grade\n", jobID)
	return err
}

func (h *TextHandler) Format() string {
	return "text"
}
