// Package appcore runs the commands once flags and configuration are
// resolved: pre-flight checks, input loading, the worker pool, and all-or-
// nothing output.
package appcore

import (
	"context"
	"errors"

	"taxassign/internal/config"
	"taxassign/internal/fileio"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2
	ExitIO        = 3
	ExitCancelled = 130
)

// ExitError pairs an error with the process exit code it maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Usage marks err as a usage or configuration error.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitUsage, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var ee *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &ee):
		return ee.Code
	case errors.Is(err, config.ErrInvalid),
		errors.Is(err, fileio.ErrOutputExists),
		errors.Is(err, fileio.ErrOutputIsDir):
		return ExitUsage
	}
	return ExitIO
}
