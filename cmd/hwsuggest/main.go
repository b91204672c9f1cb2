// Package main provides the entry point for the hwsuggest CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/report"
)

// Exit codes for structured error reporting.
const (
	ExitSuccess   = 0
	ExitInternal  = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitMalformed = 4
	ExitWrite     = 5
)

// usageError marks bad arguments, flags or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func main() {
	err := Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(classifyError(err))
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, report.ErrReportNotFound):
		return ExitNotFound
	case errors.Is(err, report.ErrMalformedReport):
		return ExitMalformed
	case errors.Is(err, output.ErrWrite):
		return ExitWrite
	case errors.Is(err, output.ErrUnknownFormat):
		return ExitUsage
	}

	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}

	return ExitInternal
}
