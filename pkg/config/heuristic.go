package config

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

const (
	DefaultHeuristicClass = "com.linkedin.drelephant.tez.heuristics.TezGCHeuristic"
	DefaultHeuristicName  = "Tez GC Time"
	DefaultHeuristicView  = "views.html.help.tez.helpGCTez"
)

// HeuristicConfig describes one heuristic and its string parameters
type HeuristicConfig struct {
	ClassName string            `json:"className"`
	Name      string            `json:"name"`
	ViewName  string            `json:"viewName,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// DefaultHeuristicConfig returns the GC heuristic with no parameters set
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		ClassName: DefaultHeuristicClass,
		Name:      DefaultHeuristicName,
		ViewName:  DefaultHeuristicView,
		Params:    map[string]string{},
	}
}

// LoadHeuristicConfig reads a YAML (or JSON) heuristic definition.
// Fields missing from the file keep their defaults.
func LoadHeuristicConfig(path string) (HeuristicConfig, error) {
	conf := DefaultHeuristicConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("failed to read heuristic config: %w", err)
	}

	var fromFile HeuristicConfig
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return conf, fmt.Errorf("failed to parse heuristic config %s: %w", path, err)
	}

	if fromFile.ClassName != "" {
		conf.ClassName = fromFile.ClassName
	}
	if fromFile.Name != "" {
		conf.Name = fromFile.Name
	}
	if fromFile.ViewName != "" {
		conf.ViewName = fromFile.ViewName
	}
	conf.MergeParams(fromFile.Params)

	return conf, nil
}

// MergeParams overlays params onto the existing ones
func (h *HeuristicConfig) MergeParams(params map[string]string) {
	if h.Params == nil {
		h.Params = make(map[string]string, len(params))
	}
	for k, v := range params {
		h.Params[k] = v
	}
}

// ParseParamOverrides turns key=value pairs into a parameter map
func ParseParamOverrides(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}
