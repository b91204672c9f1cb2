package report

import (
	"errors"
	"fmt"
)

// ErrMalformedReport is matched by every error describing a report whose
// memory estimate sections cannot be read.
var ErrMalformedReport = errors.New("malformed report")

// ErrReportNotFound indicates that the report file does not exist or cannot be read.
var ErrReportNotFound = errors.New("report not found")

// ErrNoEstimates indicates that the report contains no memory estimate sections.
var ErrNoEstimates = errors.New("no memory estimates found")

// MalformedReportError describes where and why a report could not be scanned.
type MalformedReportError struct {
	// Line is the 1-based line number the problem refers to.
	// Zero means the problem concerns the report as a whole.
	Line int

	// Reason is a short description of the problem.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *MalformedReportError) Error() string {
	msg := ErrMalformedReport.Error()
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedReportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedReport.
func (e *MalformedReportError) Is(target error) bool {
	return target == ErrMalformedReport
}

func malformed(line int, reason string, err error) *MalformedReportError {
	return &MalformedReportError{Line: line, Reason: reason, Err: err}
}
