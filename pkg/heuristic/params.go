package heuristic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseThresholds parses a comma-separated list of exactly levels values.
// Each value may be a product or quotient of numbers such as "10*1024".
// Values must be non-negative and non-decreasing.
func ParseThresholds(raw string, levels int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != levels {
		return nil, fmt.Errorf("%w: expected %d values in %q, got %d", ErrInvalidThreshold, levels, raw, len(parts))
	}

	limits := make([]float64, levels)
	for i, part := range parts {
		value, err := evalThreshold(part)
		if err != nil {
			return nil, err
		}
		if value < 0 {
			return nil, fmt.Errorf("%w: negative value %v in %q", ErrInvalidThreshold, value, raw)
		}
		if i > 0 && value < limits[i-1] {
			return nil, fmt.Errorf("%w: values in %q are not ascending", ErrInvalidThreshold, raw)
		}
		limits[i] = value
	}
	return limits, nil
}

func evalThreshold(expr string) (float64, error) {
	expr = strings.Join(strings.Fields(expr), "")
	if expr == "" {
		return 0, fmt.Errorf("%w: empty value", ErrUnparsableThreshold)
	}

	result := 1.0
	op := byte('*')
	start := 0
	for i := 0; i <= len(expr); i++ {
		if i < len(expr) && expr[i] != '*' && expr[i] != '/' {
			continue
		}
		operand, err := strconv.ParseFloat(expr[start:i], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnparsableThreshold, expr)
		}
		if op == '*' {
			result *= operand
		} else {
			result /= operand
		}
		if i < len(expr) {
			op = expr[i]
		}
		start = i + 1
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrUnparsableThreshold, expr)
	}
	return result, nil
}
