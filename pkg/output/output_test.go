package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

func testResult() *models.HeuristicResult {
	r := &models.HeuristicResult{
		ID:       "0b5c6f5e-4f54-4d8e-9bb8-8d0f3c1c6d10",
		Name:     "Tez GC Time",
		JobID:    "application_1_0001",
		Severity: models.SeveritySevere,
		Score:    30,
	}
	r.AddDetail("Number of tasks", "10")
	r.AddDetail("Task GC/CPU ratio", "0.03")
	return r
}

func TestNewHandler(t *testing.T) {
	for _, format := range []string{"text", "json", "csv"} {
		h, err := NewHandler(format, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("NewHandler(%s) failed: %v", format, err)
		}
		if h.Format() != format {
			t.Errorf("Expected format %s, got %s", format, h.Format())
		}
	}

	if _, err := NewHandler("html", &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	h, _ := NewHandler("text", &buf)

	if err := h.DisplayResult(context.Background(), testResult()); err != nil {
		t.Fatalf("DisplayResult failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"[Severe] Tez GC Time", "Score: 30", "Task GC/CPU ratio:", "0.03"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	h, _ := NewHandler("json", &buf)

	if err := h.DisplayResult(context.Background(), testResult()); err != nil {
		t.Fatalf("DisplayResult failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["severity"] != "Severe" {
		t.Errorf("Expected severity Severe, got %v", decoded["severity"])
	}

	buf.Reset()
	if err := h.DisplayNoResult(context.Background(), "application_1_0002"); err != nil {
		t.Fatalf("DisplayNoResult failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "null" {
		t.Errorf("Expected null, got %q", buf.String())
	}
}

func TestCSVHandler(t *testing.T) {
	var buf bytes.Buffer
	h, _ := NewHandler("csv", &buf)

	if err := h.DisplayResult(context.Background(), testResult()); err != nil {
		t.Fatalf("DisplayResult failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(records))
	}
	if records[2][4] != "Task GC/CPU ratio" || records[2][5] != "0.03" {
		t.Errorf("Unexpected row: %v", records[2])
	}
}

func TestCSVHandlerMultipleJobs(t *testing.T) {
	var buf bytes.Buffer
	h, _ := NewHandler("csv", &buf)
	ctx := context.Background()

	if err := h.DisplayResult(ctx, testResult()); err != nil {
		t.Fatalf("DisplayResult failed: %v", err)
	}
	if err := h.DisplayNoResult(ctx, "application_1_0002"); err != nil {
		t.Fatalf("DisplayNoResult failed: %v", err)
	}
	second := testResult()
	second.JobID = "application_1_0003"
	if err := h.DisplayResult(ctx, second); err != nil {
		t.Fatalf("DisplayResult failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("Expected header + 5 rows, got %d: %v", len(records), records)
	}

	headers := 0
	for _, r := range records {
		if r[0] == "Job" {
			headers++
		}
	}
	if headers != 1 {
		t.Errorf("Expected a single header row, got %d", headers)
	}

	if records[3][0] != "application_1_0002" || records[3][5] != "no result" {
		t.Errorf("Unexpected no-result row: %v", records[3])
	}
	if records[5][0] != "application_1_0003" {
		t.Errorf("Unexpected last row: %v", records[5])
	}
}
