package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// Job sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	// Job data
	JobSource   string
	DatabaseURL string

	// Heuristic parameters
	HeuristicConfigPath string
	ConfigMapRef        string // namespace/name
	Kubeconfig          string

	// Output
	OutputFormat     string // text, json, csv
	PerVertexDetails bool
	Verbose          bool

	// Exit non-zero when any graded job reaches this severity, empty disables
	FailOnSeverity string
}

// NewConfig creates a new configuration with defaults.
// A .env file in the working directory is loaded first when present.
func NewConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		JobSource:           getEnv("JOB_SOURCE", SourceFile),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		HeuristicConfigPath: getEnv("HEURISTIC_CONFIG", ""),
		ConfigMapRef:        getEnv("HEURISTIC_CONFIGMAP", ""),
		Kubeconfig:          getEnv("KUBECONFIG", ""),
		OutputFormat:        getEnv("OUTPUT_FORMAT", "text"),
		PerVertexDetails:    getEnvBool("PER_VERTEX_DETAILS", false),
		Verbose:             getEnvBool("VERBOSE", false),
		FailOnSeverity:      getEnv("FAIL_ON_SEVERITY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.JobSource {
	case SourceFile:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when job source is postgres")
		}
	default:
		return fmt.Errorf("unknown job source %q: must be file or postgres", c.JobSource)
	}

	switch c.OutputFormat {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q: must be text, json, or csv", c.OutputFormat)
	}

	if c.ConfigMapRef != "" {
		if _, _, err := SplitConfigMapRef(c.ConfigMapRef); err != nil {
			return err
		}
	}

	if c.FailOnSeverity != "" {
		if _, err := models.ParseSeverity(c.FailOnSeverity); err != nil {
			return err
		}
	}
	return nil
}
