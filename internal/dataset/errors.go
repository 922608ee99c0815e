package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when a dataset file extension is unknown.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// BatchError aggregates the row problems found while decoding or validating
// a dataset so they can be reported together.
type BatchError struct {
	Errors []error
}

// Error summarizes the batch: the single error, or a count and the first one.
func (e *BatchError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "batch error with no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v (and %d more)", len(e.Errors), e.Errors[0], len(e.Errors)-1)
	}
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	return e.Errors
}

// ErrorList returns every error on its own line.
func (e *BatchError) ErrorList() string {
	lines := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
