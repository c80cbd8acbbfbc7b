// Package sys exposes exit conditions not modeled as ordinary Go errors:
// a WASI guest module calling proc_exit unwinds the call stack with an
// ExitError rather than failing an individual host function.
package sys

import (
	"context"
	"fmt"
)

const (
	// ExitCodeDeadlineExceeded is used when context.DeadlineExceeded ended a call.
	ExitCodeDeadlineExceeded uint32 = 1 << 31
	// ExitCodeContextCanceled is used when context.Canceled ended a call.
	ExitCodeContextCanceled = ExitCodeDeadlineExceeded + 1
)

// ExitError is the error returned when a WASI guest module calls
// proc_exit, or a call is ended by the context passed to it.
type ExitError struct {
	exitCode uint32
}

// NewExitError returns an ExitError with the given WASI exit code.
func NewExitError(exitCode uint32) *ExitError {
	return &ExitError{exitCode: exitCode}
}

// ExitCode returns the WASI exit code.
func (e *ExitError) ExitCode() uint32 {
	return e.exitCode
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	switch e.exitCode {
	case ExitCodeDeadlineExceeded:
		return "module closed with context deadline exceeded"
	case ExitCodeContextCanceled:
		return "module closed with context canceled"
	default:
		return fmt.Sprintf("module closed with exit_code(%d)", e.exitCode)
	}
}

// Is allows errors.Is(err, context.DeadlineExceeded) and errors.Is(err,
// context.Canceled) to recognize the corresponding reserved exit codes, in
// addition to the usual same-exit-code comparison between two *ExitError.
func (e *ExitError) Is(target error) bool {
	switch target {
	case context.DeadlineExceeded:
		return e.exitCode == ExitCodeDeadlineExceeded
	case context.Canceled:
		return e.exitCode == ExitCodeContextCanceled
	}
	if o, ok := target.(*ExitError); ok {
		return e.exitCode == o.exitCode
	}
	return false
}
