package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/opscart/tez-gc-heuristic/pkg/config"
	"github.com/opscart/tez-gc-heuristic/pkg/datasource"
	"github.com/opscart/tez-gc-heuristic/pkg/heuristic"
	"github.com/opscart/tez-gc-heuristic/pkg/metrics"
	"github.com/opscart/tez-gc-heuristic/pkg/models"
	"github.com/opscart/tez-gc-heuristic/pkg/output"
)

var (
	// Heuristic parameter flags
	paramOverrides []string

	// Grade flags
	metricsOut string

	// Global config
	cfg *config.Config
	log logr.Logger
)

func main() {
	// Initialize config
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "gc-grade",
		Short: "Garbage collection efficiency grading for Tez jobs",
		Long: `Grade the garbage collection efficiency of completed Tez jobs. The average GC/CPU ratio of
sampled tasks is graded against configurable thresholds and capped by the severity of the average
task runtime.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = initLogging(cfg.Verbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfg.HeuristicConfigPath, "heuristic-config", cfg.HeuristicConfigPath, "YAML file with the heuristic definition and params")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigMapRef, "configmap", cfg.ConfigMapRef, "ConfigMap holding heuristic params (namespace/name)")
	rootCmd.PersistentFlags().StringVar(&cfg.Kubeconfig, "kubeconfig", cfg.Kubeconfig, "Path to kubeconfig used with --configmap")
	rootCmd.PersistentFlags().StringArrayVar(&paramOverrides, "param", nil, "Heuristic param override key=value (repeatable)")

	gradeCmd := &cobra.Command{
		Use:   "grade <job>...",
		Short: "Grade one or more jobs",
		Long:  `Grade jobs read from files (JSON or YAML) or, with --source postgres, by application ID.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGrade,
	}
	gradeCmd.Flags().StringVar(&cfg.JobSource, "source", cfg.JobSource, "Job source: file, postgres")
	gradeCmd.Flags().StringVarP(&cfg.OutputFormat, "output", "o", cfg.OutputFormat, "Output format: text, json, csv")
	gradeCmd.Flags().BoolVar(&cfg.PerVertexDetails, "per-vertex", cfg.PerVertexDetails, "Add details for every vertex graded above None")
	gradeCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write grading metrics in Prometheus text format to this file")
	gradeCmd.Flags().StringVar(&cfg.FailOnSeverity, "fail-on", cfg.FailOnSeverity, "Exit non-zero when a job is graded at or above this severity")

	thresholdsCmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Show the effective severity thresholds",
		Args:  cobra.NoArgs,
		RunE:  runThresholds,
	}

	importCmd := &cobra.Command{
		Use:   "import <job-file>...",
		Short: "Store job files in the PostgreSQL history database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(importCmd)

	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogging(verbose bool) logr.Logger {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	if verbose {
		_ = fs.Set("v", "1")
	}
	return klog.NewKlogr().WithName("gc-grade")
}

// loadHeuristicConfig layers params: file, then ConfigMap, then --param
func loadHeuristicConfig(ctx context.Context) (config.HeuristicConfig, error) {
	conf := config.DefaultHeuristicConfig()

	if cfg.HeuristicConfigPath != "" {
		var err error
		conf, err = config.LoadHeuristicConfig(cfg.HeuristicConfigPath)
		if err != nil {
			return conf, err
		}
		log.V(1).Info("Loaded heuristic config", "path", cfg.HeuristicConfigPath)
	}

	if cfg.ConfigMapRef != "" {
		namespace, name, err := config.SplitConfigMapRef(cfg.ConfigMapRef)
		if err != nil {
			return conf, err
		}
		clientset, err := config.NewClientset(cfg.Kubeconfig)
		if err != nil {
			return conf, err
		}
		params, err := config.ParamsFromConfigMap(ctx, clientset, namespace, name)
		if err != nil {
			return conf, err
		}
		conf.MergeParams(params)
		log.V(1).Info("Loaded heuristic params from configmap", "configmap", cfg.ConfigMapRef, "count", len(params))
	}

	overrides, err := config.ParseParamOverrides(paramOverrides)
	if err != nil {
		return conf, err
	}
	conf.MergeParams(overrides)

	return conf, nil
}

func openSource() (datasource.JobSource, error) {
	switch cfg.JobSource {
	case config.SourcePostgres:
		return datasource.NewPostgresSource(cfg.DatabaseURL)
	default:
		return datasource.NewFileSource(), nil
	}
}

func runGrade(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()

	failOn := models.SeverityNone
	if cfg.FailOnSeverity != "" {
		var err error
		if failOn, err = models.ParseSeverity(cfg.FailOnSeverity); err != nil {
			return err
		}
	}

	conf, err := loadHeuristicConfig(ctx)
	if err != nil {
		return err
	}

	h := heuristic.NewGCHeuristic(conf,
		heuristic.WithLogger(log),
		heuristic.WithPerVertexDetails(cfg.PerVertexDetails),
	)

	source, err := openSource()
	if err != nil {
		return err
	}
	defer source.Close()

	handler, err := output.NewHandler(cfg.OutputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.NewRegistry())

	failed := false
	worst := models.SeverityNone
	for _, jobID := range args {
		job, err := source.GetJob(ctx, jobID)
		if err != nil {
			log.Error(err, "Failed to load job", "job", jobID, "source", source.Name())
			failed = true
			continue
		}

		result, jm := h.Evaluate(job)
		if result == nil {
			m.ObserveSkipped()
			if err := handler.DisplayNoResult(ctx, jobID); err != nil {
				return err
			}
			continue
		}

		m.Observe(result, jm.GCRatio, jm.SampledTasks)
		worst = models.MaxSeverity(worst, result.Severity)
		if err := handler.DisplayResult(ctx, result); err != nil {
			return err
		}
	}

	if metricsOut != "" {
		if err := writeMetrics(m, metricsOut); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("one or more jobs could not be loaded")
	}
	if cfg.FailOnSeverity != "" && worst >= failOn {
		return fmt.Errorf("worst graded severity %s reached --fail-on %s", worst, failOn)
	}
	return nil
}

func writeMetrics(m *metrics.Metrics, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := m.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runThresholds(cmd *cobra.Command, args []string) error {
	conf, err := loadHeuristicConfig(cmd.Context())
	if err != nil {
		return err
	}

	h := heuristic.NewGCHeuristic(conf, heuristic.WithLogger(log))
	ts := h.Thresholds()
	ratio := ts.GCRatioLimits()
	runtime := ts.RuntimeLimitsMs()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", h.Config().Name, h.Config().ClassName)
	fmt.Fprintf(out, "  %-10s %14s %14s\n", "Severity", "GC/CPU ratio", "Runtime (ms)")
	for i, sev := range []models.Severity{models.SeverityLow, models.SeverityModerate, models.SeveritySevere, models.SeverityCritical} {
		fmt.Fprintf(out, "  %-10s %14g %14.0f\n", sev, ratio[i], runtime[i])
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set to import jobs")
	}
	ctx := cmd.Context()

	store, err := datasource.NewPostgresSource(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	files := datasource.NewFileSource()
	for _, path := range args {
		job, err := files.GetJob(ctx, path)
		if err != nil {
			return err
		}
		if err := store.SaveJob(ctx, job); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[INFO] Imported job %s (%d tasks)\n", job.ID, job.TaskCount())
	}
	return nil
}
