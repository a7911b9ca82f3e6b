package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

type JSONHandler struct {
	w io.Writer
}

func (h *JSONHandler) DisplayResult(ctx context.Context, result *models.HeuristicResult) error {
	enc := json.NewEncoder(h.w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// DisplayNoResult writes null, keeping the output valid JSON
func (h *JSONHandler) DisplayNoResult(ctx context.Context, jobID string) error {
	_, err := io.WriteString(h.w, "null\n")
	return err
}

func (h *JSONHandler) Format() string {
	return "json"
}
