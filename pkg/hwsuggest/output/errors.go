package output

import (
	"errors"
	"fmt"
)

var (
	// ErrWrite marks failures to write the hardware file.
	ErrWrite = errors.New("write failed")

	// ErrUnknownFormat is returned for an unregistered formatter name.
	ErrUnknownFormat = errors.New("unknown output format")
)

// WriteError reports a failure to write the hardware file at Path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}
