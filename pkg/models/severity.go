package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the health classification attached to a heuristic result
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityModerate
	SeveritySevere
	SeverityCritical
)

var severityNames = [...]string{"None", "Low", "Moderate", "Severe", "Critical"}

// Value returns the numeric weight used for scoring
func (s Severity) Value() int {
	return int(s)
}

func (s Severity) String() string {
	if s < SeverityNone || s > SeverityCritical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity accepts a severity name in any case
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Severity(i), nil
		}
	}
	return SeverityNone, fmt.Errorf("unknown severity: %q", name)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MinSeverity returns the less severe of a and b
func MinSeverity(a, b Severity) Severity {
	if a < b {
		return a
	}
	return b
}

// MaxSeverity returns the more severe of a and b
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// SeverityAscending grades value against thresholds where larger is worse.
// Each boundary is inclusive on its lower side.
func SeverityAscending(value, low, moderate, severe, critical float64) Severity {
	if value >= critical {
		return SeverityCritical
	} else if value >= severe {
		return SeveritySevere
	} else if value >= moderate {
		return SeverityModerate
	} else if value >= low {
		return SeverityLow
	}
	return SeverityNone
}
