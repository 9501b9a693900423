package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when a retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
