package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// FileSource reads job records exported as JSON or YAML documents.
// The job ID passed to GetJob is the file path.
type FileSource struct{}

func NewFileSource() *FileSource {
	return &FileSource{}
}

// GetJob parses the job stored at path
func (f *FileSource) GetJob(ctx context.Context, path string) (*models.Job, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	return ParseJob(data, filepath.Ext(path))
}

// ParseJob decodes a job document. YAML is accepted for .yaml and .yml,
// everything else is decoded as JSON.
func ParseJob(data []byte, ext string) (*models.Job, error) {
	var job models.Job
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &job); err != nil {
			return nil, fmt.Errorf("failed to parse YAML job: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, fmt.Errorf("failed to parse JSON job: %w", err)
		}
	}
	return &job, nil
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Close() error {
	return nil
}
