package heuristic

import "errors"

// Errors reported while parsing threshold parameters
var (
	ErrInvalidThreshold    = errors.New("invalid threshold levels")
	ErrUnparsableThreshold = errors.New("unparsable threshold value")
)
