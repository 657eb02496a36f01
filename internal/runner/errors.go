package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled matches every *CancelledError via errors.Is.
	ErrCancelled = errors.New("command cancelled")

	// ErrTerminated is the cancellation cause recorded by Handle.Terminate.
	ErrTerminated = errors.New("terminated by caller")
)

// SpawnError reports that the interpreter could not be launched.
type SpawnError struct {
	Shell string
	Label string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s for %s: %v", e.Shell, e.Label, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExecutionError reports a command that ran and exited non-zero.
type ExecutionError struct {
	Label    string
	ExitCode int
	LastLine string
}

func (e *ExecutionError) Error() string {
	if e.LastLine == "" {
		return fmt.Sprintf("bash command %s failed with exit code %d", e.Label, e.ExitCode)
	}
	return fmt.Sprintf("bash command %s failed with exit code %d: %s", e.Label, e.ExitCode, e.LastLine)
}

// IOError reports a failure to create, write or remove the temporary script.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CancelledError reports a run stopped by context cancellation, timeout, or
// Handle.Terminate. Cause is one of context.Canceled,
// context.DeadlineExceeded or ErrTerminated.
type CancelledError struct {
	Label    string
	Cause    error
	ExitCode int
	LastLine string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("bash command %s cancelled: %v", e.Label, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }
