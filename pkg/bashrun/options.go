package bashrun

import (
	"context"
	"log/slog"
	"time"

	"github.com/LiboWorks/bashrun/internal/config"
	"github.com/LiboWorks/bashrun/internal/runner"
)

// Version information for bashrun.
const (
	// Version is the current version of bashrun.
	Version = "0.1.0"
)

// Options configures a run.
type Options struct {
	// Shell is the interpreter. Defaults to bash.
	Shell string

	// TmpRoot is where per-run directories are created. Defaults to the
	// system temp directory.
	TmpRoot string

	// OutputEncoding decodes child output. Defaults to utf-8.
	OutputEncoding string

	// Timeout cancels the run after the given duration. Zero disables it.
	Timeout time.Duration

	// KillGrace is the delay between SIGTERM and SIGKILL on cancellation.
	KillGrace time.Duration

	// UsePTY merges output through a pseudo-terminal.
	UsePTY bool

	// Logger receives every output line and lifecycle record.
	// Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns options loaded from the BASHRUN_* environment.
func DefaultOptions() *Options {
	return FromConfig(config.Get())
}

// FromConfig converts configuration into Options.
func FromConfig(cfg *config.Config) *Options {
	ro := runner.OptionsFromConfig(cfg)
	return &Options{
		Shell:          ro.Shell,
		TmpRoot:        ro.TmpRoot,
		OutputEncoding: ro.OutputEncoding,
		Timeout:        ro.Timeout,
		KillGrace:      ro.KillGrace,
		UsePTY:         ro.UsePTY,
	}
}

func (o *Options) runnerOptions() runner.Options {
	ro := runner.OptionsFromConfig(config.Get())
	ro.Shell = o.Shell
	ro.TmpRoot = o.TmpRoot
	ro.OutputEncoding = o.OutputEncoding
	ro.Timeout = o.Timeout
	ro.KillGrace = o.KillGrace
	ro.UsePTY = o.UsePTY
	return ro
}

// Option is a functional option for configuring a run.
type Option func(*Options)

// WithShell sets the interpreter.
func WithShell(shell string) Option {
	return func(o *Options) {
		o.Shell = shell
	}
}

// WithTmpRoot sets the parent directory of per-run temp directories.
func WithTmpRoot(dir string) Option {
	return func(o *Options) {
		o.TmpRoot = dir
	}
}

// WithOutputEncoding sets the encoding of child output.
func WithOutputEncoding(name string) Option {
	return func(o *Options) {
		o.OutputEncoding = name
	}
}

// WithTimeout cancels the run after d.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithKillGrace sets the delay between SIGTERM and SIGKILL.
func WithKillGrace(d time.Duration) Option {
	return func(o *Options) {
		o.KillGrace = d
	}
}

// WithPTY merges output through a pseudo-terminal.
func WithPTY() Option {
	return func(o *Options) {
		o.UsePTY = true
	}
}

// WithLogger injects the logger receiving output lines.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// ApplyOptions applies functional options to DefaultOptions().
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExecuteWith runs spec with functional options.
//
// Example:
//
//	res, err := bashrun.ExecuteWith(ctx, spec,
//	    bashrun.WithShell("sh"),
//	    bashrun.WithTimeout(30*time.Second),
//	)
func ExecuteWith(ctx context.Context, spec CommandSpec, opts ...Option) (*ExecutionResult, error) {
	return Execute(ctx, spec, ApplyOptions(opts...))
}
