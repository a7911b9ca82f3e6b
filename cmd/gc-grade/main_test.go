package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/opscart/tez-gc-heuristic/pkg/config"
	"github.com/opscart/tez-gc-heuristic/pkg/heuristic"
)

func TestLoadHeuristicConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gc.yaml")
	content := "params:\n  gc_ratio_severity: \"0.1,0.2,0.3,0.4\"\n  runtime_severity_in_min: \"1,2,3,4\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg = &config.Config{HeuristicConfigPath: path}
	paramOverrides = []string{"runtime_severity_in_min=2,4,6,8"}
	log = logr.Discard()
	defer func() { paramOverrides = nil }()

	conf, err := loadHeuristicConfig(context.Background())
	if err != nil {
		t.Fatalf("loadHeuristicConfig failed: %v", err)
	}

	if conf.Params[heuristic.ParamGCRatioSeverity] != "0.1,0.2,0.3,0.4" {
		t.Errorf("Expected ratio param from file, got %q", conf.Params[heuristic.ParamGCRatioSeverity])
	}
	if conf.Params[heuristic.ParamRuntimeSeverity] != "2,4,6,8" {
		t.Errorf("Expected runtime param from override, got %q", conf.Params[heuristic.ParamRuntimeSeverity])
	}
	if conf.Name != config.DefaultHeuristicName {
		t.Errorf("Expected default name, got %s", conf.Name)
	}
}

func TestLoadHeuristicConfigBadOverride(t *testing.T) {
	cfg = &config.Config{}
	paramOverrides = []string{"missing-equals"}
	log = logr.Discard()
	defer func() { paramOverrides = nil }()

	if _, err := loadHeuristicConfig(context.Background()); err == nil {
		t.Error("Expected error for malformed --param")
	}
}

// Average runtime 1000000ms and ratio 0.05 grade Critical under default thresholds
const criticalJob = `{"id":"application_1_0001","succeeded":true,"dags":[{"id":"dag_1","vertices":[
  {"name":"Map 1","tasks":[{"id":"t1","sampled":true,"totalRuntimeMs":1000000,
   "counters":{"GC_MILLISECONDS":500,"CPU_MILLISECONDS":10000}}]}]}]}`

const failedJob = `{"id":"application_1_0002","succeeded":false,"dags":[]}`

func writeJob(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write job: %v", err)
	}
	return path
}

func newTestCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	return cmd
}

func TestRunGradeCSV(t *testing.T) {
	cfg = &config.Config{JobSource: config.SourceFile, OutputFormat: "csv"}
	log = logr.Discard()

	var out bytes.Buffer
	graded := writeJob(t, "a.json", criticalJob)
	skipped := writeJob(t, "b.json", failedJob)

	if err := runGrade(newTestCommand(&out), []string{graded, skipped, graded}); err != nil {
		t.Fatalf("runGrade failed: %v", err)
	}

	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	// header + 6 details + no-result row + 6 details
	if len(records) != 14 {
		t.Fatalf("Expected 14 records, got %d", len(records))
	}
	if records[7][0] != skipped || records[7][5] != "no result" {
		t.Errorf("Unexpected no-result row: %v", records[7])
	}
	if records[1][2] != "Critical" {
		t.Errorf("Expected Critical, got %s", records[1][2])
	}
}

func TestRunGradeReturnsErrors(t *testing.T) {
	log = logr.Discard()
	graded := writeJob(t, "a.json", criticalJob)

	tests := []struct {
		name          string
		cfg           *config.Config
		args          []string
		errorContains string
	}{
		{
			name:          "missing job file",
			cfg:           &config.Config{JobSource: config.SourceFile, OutputFormat: "text"},
			args:          []string{graded, filepath.Join(t.TempDir(), "missing.json")},
			errorContains: "could not be loaded",
		},
		{
			name:          "invalid config",
			cfg:           &config.Config{JobSource: config.SourceFile, OutputFormat: "html"},
			args:          []string{graded},
			errorContains: "unknown output format",
		},
		{
			name:          "fail-on reached",
			cfg:           &config.Config{JobSource: config.SourceFile, OutputFormat: "text", FailOnSeverity: "severe"},
			args:          []string{graded},
			errorContains: "Critical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = tt.cfg
			var out bytes.Buffer

			err := runGrade(newTestCommand(&out), tt.args)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
			}
		})
	}
}

func TestRunGradeFailOnNotReached(t *testing.T) {
	cfg = &config.Config{JobSource: config.SourceFile, OutputFormat: "json", FailOnSeverity: "critical"}
	log = logr.Discard()

	var out bytes.Buffer
	if err := runGrade(newTestCommand(&out), []string{writeJob(t, "b.json", failedJob)}); err != nil {
		t.Errorf("Expected no error when nothing was graded, got %v", err)
	}
}

func TestRunImportWithoutDatabase(t *testing.T) {
	cfg = &config.Config{}
	log = logr.Discard()

	var out bytes.Buffer
	err := runImport(newTestCommand(&out), []string{writeJob(t, "a.json", criticalJob)})
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected DATABASE_URL error, got %v", err)
	}
}

func TestRunThresholds(t *testing.T) {
	cfg = &config.Config{}
	paramOverrides = []string{"runtime_severity_in_min=1,2,3,4"}
	log = logr.Discard()
	defer func() { paramOverrides = nil }()

	var out bytes.Buffer
	if err := runThresholds(newTestCommand(&out), nil); err != nil {
		t.Fatalf("runThresholds failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{config.DefaultHeuristicName, config.DefaultHeuristicClass, "Critical", "240000"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}
}
