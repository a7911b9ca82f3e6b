package heuristic

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/opscart/tez-gc-heuristic/pkg/models"
)

// Parameter keys
const (
	ParamGCRatioSeverity = "gc_ratio_severity"
	ParamRuntimeSeverity = "runtime_severity_in_min"
)

const thresholdLevels = 4

var (
	// GC time / CPU time
	DefaultGCRatioLimits = [thresholdLevels]float64{0.01, 0.02, 0.03, 0.04}
	// Task runtime in minutes
	DefaultRuntimeLimitsMin = [thresholdLevels]float64{5, 10, 12, 15}
)

var minuteInMs = float64(time.Minute / time.Millisecond)

// ThresholdSet holds the severity boundaries of the GC heuristic.
// It is immutable once built and safe for concurrent use.
type ThresholdSet struct {
	gcRatioLimits   [thresholdLevels]float64
	runtimeLimitsMs [thresholdLevels]float64
}

// NewThresholdSet reads threshold parameters from params. A missing or
// malformed parameter keeps its default; the problem is logged, not returned.
func NewThresholdSet(heuristicName string, params map[string]string, log logr.Logger) *ThresholdSet {
	gcRatio := loadLimits(heuristicName, params, ParamGCRatioSeverity, DefaultGCRatioLimits, log)
	runtimeMin := loadLimits(heuristicName, params, ParamRuntimeSeverity, DefaultRuntimeLimitsMin, log)

	ts := &ThresholdSet{gcRatioLimits: gcRatio}
	for i, v := range runtimeMin {
		ts.runtimeLimitsMs[i] = v * minuteInMs
	}
	return ts
}

// DefaultThresholdSet returns the built-in thresholds
func DefaultThresholdSet() *ThresholdSet {
	return NewThresholdSet("", nil, logr.Discard())
}

func loadLimits(heuristicName string, params map[string]string, key string, defaults [thresholdLevels]float64, log logr.Logger) [thresholdLevels]float64 {
	limits := defaults
	if raw, ok := params[key]; ok && raw != "" {
		parsed, err := ParseThresholds(raw, thresholdLevels)
		if err != nil {
			log.Error(err, "Ignoring threshold parameter, using defaults", "heuristic", heuristicName, "param", key, "value", raw)
		} else {
			copy(limits[:], parsed)
		}
	}

	log.Info("Using threshold settings", "heuristic", heuristicName, "param", key, "thresholds", limits[:])
	return limits
}

// GCRatioLimits returns the GC/CPU ratio boundaries
func (ts *ThresholdSet) GCRatioLimits() [thresholdLevels]float64 {
	return ts.gcRatioLimits
}

// RuntimeLimitsMs returns the runtime boundaries in milliseconds
func (ts *ThresholdSet) RuntimeLimitsMs() [thresholdLevels]float64 {
	return ts.runtimeLimitsMs
}

// RatioSeverity grades a GC/CPU ratio
func (ts *ThresholdSet) RatioSeverity(gcRatio float64) models.Severity {
	l := ts.gcRatioLimits
	return models.SeverityAscending(gcRatio, l[0], l[1], l[2], l[3])
}

// RuntimeSeverity grades an average task runtime
func (ts *ThresholdSet) RuntimeSeverity(runtimeMs int64) models.Severity {
	l := ts.runtimeLimitsMs
	return models.SeverityAscending(float64(runtimeMs), l[0], l[1], l[2], l[3])
}

// Grade combines the ratio severity with the runtime severity. Tasks that
// run for an insignificant time cap the result, however high the ratio.
func (ts *ThresholdSet) Grade(runtimeMs, cpuMs, gcMs int64) models.Severity {
	return models.MinSeverity(ts.RatioSeverity(ratio(gcMs, cpuMs)), ts.RuntimeSeverity(runtimeMs))
}
