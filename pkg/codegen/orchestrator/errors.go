package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWriteFailed is returned when one or more artifacts could not be written
	ErrWriteFailed = errors.New("write failed")

	// ErrInvalidOutputRoot is returned when the output root is empty
	ErrInvalidOutputRoot = errors.New("invalid output root")
)

// WriteFailure is one artifact that could not be written
type WriteFailure struct {
	Path string
	Err  error
}

// WriteError aggregates every failed write of a run. errors.Is matches
// ErrWriteFailed and each underlying cause.
type WriteError struct {
	Failures []WriteFailure
}

func (e *WriteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return fmt.Sprintf("%v: %d file(s): %s", ErrWriteFailed, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes ErrWriteFailed followed by every cause
func (e *WriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, ErrWriteFailed)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Paths returns the path of every failed write
func (e *WriteError) Paths() []string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return paths
}

// IsWriteError checks if the error is or wraps ErrWriteFailed
func IsWriteError(err error) bool {
	return errors.Is(err, ErrWriteFailed)
}
