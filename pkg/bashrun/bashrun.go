// Package bashrun provides a public API for running a shell command as a
// single task step.
//
// The command body is written to a script in a fresh temporary directory and
// executed by bash in its own session. Combined stdout/stderr is streamed line
// by line into a structured logger, the call blocks until the command exits,
// and the temporary directory is removed on every path.
//
// Basic usage:
//
//	res, err := bashrun.Execute(ctx, bashrun.CommandSpec{
//	    Label: "greet",
//	    Body:  "echo hello",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.LastLine) // hello
//
// With options:
//
//	res, err := bashrun.ExecuteWith(ctx, spec,
//	    bashrun.WithTimeout(time.Minute),
//	    bashrun.WithLogger(logger),
//	)
//
// Failures are reported as *ExecutionError (non-zero exit), *SpawnError,
// *IOError or *CancelledError.
//
// Commands inherit signals that the calling program ignores. Programs that
// call signal.Ignore(syscall.SIGPIPE) will see pipelines such as
// `yes | head -1` behave differently than in a terminal.
package bashrun

import (
	"context"

	"github.com/LiboWorks/bashrun/internal/runner"
)

// CommandSpec describes what to run. See runner.CommandSpec.
type CommandSpec = runner.CommandSpec

// ExecutionResult is the outcome of a successful run.
type ExecutionResult = runner.ExecutionResult

// Handle controls a run started with Start.
type Handle = runner.Handle

// Error types returned by Execute.
type (
	SpawnError     = runner.SpawnError
	ExecutionError = runner.ExecutionError
	IOError        = runner.IOError
	CancelledError = runner.CancelledError
)

var (
	// ErrCancelled matches every *CancelledError.
	ErrCancelled = runner.ErrCancelled

	// ErrTerminated is the cause of runs stopped with Handle.Terminate.
	ErrTerminated = runner.ErrTerminated
)

// Execute runs spec to completion. A nil opts uses DefaultOptions().
func Execute(ctx context.Context, spec CommandSpec, opts *Options) (*ExecutionResult, error) {
	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, spec)
}

// Start spawns spec and returns a handle the caller can Wait on or
// Terminate. Wait must be called to release the temporary directory.
func Start(ctx context.Context, spec CommandSpec, opts *Options) (*Handle, error) {
	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.Start(ctx, spec)
}

func newRunner(opts *Options) (*runner.Runner, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return runner.New(opts.runnerOptions(), opts.Logger)
}
