// Package runner executes a shell command body as a standalone child process.
//
// Each run writes the body to a script in a fresh temporary directory, starts
// the interpreter on it in a new session, streams merged stdout/stderr line by
// line into the injected logger and removes the directory again, whatever the
// outcome. A Runner carries no per-run state and is safe for concurrent use.
//
// Signals the host process ignores stay ignored in the child, since exec only
// resets caught signals. A host that calls signal.Ignore(syscall.SIGPIPE) or
// ignores SIGXFSZ hands that disposition to every command it runs; the runner
// logs a warning but does not change process-wide signal state.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding"

	"github.com/LiboWorks/bashrun/internal/config"
)

// Options configures a Runner. The child inherits the host's ignored signals
// (see the package documentation), so hosts should not ignore SIGPIPE or
// SIGXFSZ.
type Options struct {
	// Shell is the interpreter invoked as `<Shell> <script>`.
	Shell string

	// TmpRoot is the parent of per-run directories. Empty means os.TempDir().
	TmpRoot string

	// TmpPrefix prefixes per-run directory names.
	TmpPrefix string

	// OutputEncoding decodes child output. Empty means UTF-8.
	OutputEncoding string

	// Timeout cancels the run after the given duration. Zero disables it.
	Timeout time.Duration

	// KillGrace is the delay between SIGTERM and SIGKILL on cancellation.
	KillGrace time.Duration

	// MaxLineBytes bounds a single log record; longer lines are split.
	MaxLineBytes int

	// UsePTY merges output through a pseudo-terminal instead of a pipe.
	UsePTY bool
}

// DefaultOptions returns options matching config.NewConfig().
func DefaultOptions() Options {
	return OptionsFromConfig(config.NewConfig())
}

// OptionsFromConfig maps configuration onto runner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Shell:          cfg.Shell,
		TmpRoot:        cfg.TmpRoot,
		TmpPrefix:      cfg.TmpPrefix,
		OutputEncoding: cfg.OutputEncoding,
		Timeout:        time.Duration(cfg.Timeout) * time.Second,
		KillGrace:      time.Duration(cfg.KillGrace) * time.Second,
		MaxLineBytes:   cfg.MaxLineBytes,
		UsePTY:         cfg.UsePTY,
	}
}

// Runner executes CommandSpecs.
type Runner struct {
	opts Options
	enc  encoding.Encoding
	log  *slog.Logger
}

// New creates a Runner. A nil logger discards all records.
func New(opts Options, logger *slog.Logger) (*Runner, error) {
	if opts.Shell == "" {
		opts.Shell = config.DefaultShell
	}
	if opts.TmpPrefix == "" {
		opts.TmpPrefix = config.DefaultTmpPrefix
	}
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = config.DefaultMaxLineBytes
	}
	if opts.Timeout < 0 || opts.KillGrace < 0 {
		return nil, fmt.Errorf("timeout and kill grace must not be negative")
	}
	enc, err := LookupEncoding(opts.OutputEncoding)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{opts: opts, enc: enc, log: logger}, nil
}

// Options returns the effective options.
func (r *Runner) Options() Options {
	return r.opts
}

// Execute runs spec to completion. It returns a result only when the command
// exited 0; otherwise the error is a *SpawnError, *ExecutionError, *IOError or
// *CancelledError.
func (r *Runner) Execute(ctx context.Context, spec CommandSpec) (*ExecutionResult, error) {
	h, err := r.Start(ctx, spec)
	if err != nil {
		return nil, err
	}
	return h.Wait()
}

// Start spawns spec and returns a handle for waiting on or terminating it.
// The caller must call Wait, which releases the temporary directory.
func (r *Runner) Start(ctx context.Context, spec CommandSpec) (*Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec.Env = maps.Clone(spec.Env)
	log := r.log.With("label", spec.Label)

	root := r.opts.TmpRoot
	if root == "" {
		root = os.TempDir()
	}
	// The child runs inside the run directory, so a relative script path
	// would resolve against the wrong directory.
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, &IOError{Op: "resolve temp root", Path: r.opts.TmpRoot, Err: err}
	}
	log.Debug("tmp dir root location", "root", root)

	script, err := newTempScript(root, r.opts.TmpPrefix, spec.Label, spec.Body)
	if err != nil {
		return nil, err
	}
	log.Info("temporary script location", "path", script.path)

	checkSignalDispositions(log)

	cmd := exec.Command(r.opts.Shell, script.path)
	cmd.Dir = script.dir
	cmd.Env = append(spec.environ(), "PWD="+script.dir)

	log.Info("running command", "command", spec.Body)
	started := time.Now()
	out, err := startProcess(cmd, r.opts.UsePTY)
	if err != nil {
		if rmErr := script.remove(); rmErr != nil {
			log.Warn("failed to remove temp dir", "error", rmErr)
		}
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return nil, err
		}
		return nil, &SpawnError{Shell: r.opts.Shell, Label: spec.Label, Err: err}
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if r.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	h := &Handle{
		label:   spec.Label,
		cmd:     cmd,
		out:     out,
		script:  script,
		log:     log,
		decoder: newLineDecoder(r.enc),
		maxLine: r.opts.MaxLineBytes,
		grace:   r.opts.KillGrace,
		started: started,
		stopCtx: cancel,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	log.Debug("process started", "pid", h.PID())
	go h.watch(runCtx)
	return h, nil
}
