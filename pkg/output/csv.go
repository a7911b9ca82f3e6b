package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// CSVHandler writes one row per result detail. The header is written once,
// before the first row.
type CSVHandler struct {
	w             io.Writer
	headerWritten bool
}

var csvHeader = []string{"Job", "Heuristic", "Severity", "Score", "Detail", "Value"}

func (h *CSVHandler) writeRows(rows [][]string) error {
	w := csv.NewWriter(h.w)

	if !h.headerWritten {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		h.headerWritten = true
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func (h *CSVHandler) DisplayResult(ctx context.Context, result *models.HeuristicResult) error {
	rows := make([][]string, 0, len(result.Details))
	for _, d := range result.Details {
		rows = append(rows, []string{
			result.JobID,
			result.Name,
			result.Severity.String(),
			strconv.Itoa(result.Score),
			d.Name,
			d.Value,
		})
	}
	return h.writeRows(rows)
}

// DisplayNoResult writes a single row with empty grading columns
func (h *CSVHandler) DisplayNoResult(ctx context.Context, jobID string) error {
	return h.writeRows([][]string{{jobID, "", "", "", "", "no result"}})
}

func (h *CSVHandler) Format() string {
	return "csv"
}
