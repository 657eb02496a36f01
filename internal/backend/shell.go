package backend

import (
	"context"
	"log/slog"

	"github.com/LiboWorks/bashrun/internal/runner"
)

// ShellExecutor implements Executor with a runner.Runner.
type ShellExecutor struct {
	name   string
	runner *runner.Runner
}

// NewShellExecutor creates an executor for opts.Shell.
func NewShellExecutor(opts runner.Options, logger *slog.Logger) (*ShellExecutor, error) {
	r, err := runner.New(opts, logger)
	if err != nil {
		return nil, err
	}
	return &ShellExecutor{name: r.Options().Shell, runner: r}, nil
}

// Name implements Executor.
func (s *ShellExecutor) Name() string {
	return s.name
}

// Execute implements Executor.
func (s *ShellExecutor) Execute(ctx context.Context, spec runner.CommandSpec) (*runner.ExecutionResult, error) {
	return s.runner.Execute(ctx, spec)
}

// Start exposes the runner's cancellation handle.
func (s *ShellExecutor) Start(ctx context.Context, spec runner.CommandSpec) (*runner.Handle, error) {
	return s.runner.Start(ctx, spec)
}

// Shells lists the interpreters registered by NewDefaultRegistry besides the
// configured one.
var Shells = []string{"bash", "sh"}

// NewDefaultRegistry registers a ShellExecutor for opts.Shell, set as
// default, and one for each entry of Shells that shares its options.
func NewDefaultRegistry(opts runner.Options, logger *slog.Logger) (*Registry, error) {
	reg := NewRegistry()
	primary, err := NewShellExecutor(opts, logger)
	if err != nil {
		return nil, err
	}
	reg.Register(primary.Name(), primary)

	for _, shell := range Shells {
		if reg.Has(shell) {
			continue
		}
		o := opts
		o.Shell = shell
		e, err := NewShellExecutor(o, logger)
		if err != nil {
			return nil, err
		}
		reg.Register(shell, e)
	}
	return reg, nil
}
