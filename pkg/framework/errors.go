package framework

import (
	"fmt"
	"strings"
)

// AggregatedError collects the errors of independent operations, e.g.
// stopping every Stopper of a Loop.
type AggregatedError struct {
	Errors []error
}

// Error implements error. A single error reads as itself.
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors", len(e.Errors))
	for n, err := range e.Errors {
		if n == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap supports errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add appends the non-nil errors.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil when nothing failed.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) > 0 {
		return e
	}
	return nil
}
