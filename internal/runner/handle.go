package runner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Handle is a single running command. It is owned by the caller of Start and
// is not reused across runs.
type Handle struct {
	label   string
	cmd     *exec.Cmd
	out     io.ReadCloser
	script  *tempScript
	log     *slog.Logger
	decoder *lineDecoder
	maxLine int
	grace   time.Duration
	started time.Time

	stopCtx  context.CancelFunc
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu    sync.Mutex
	cause error

	waitOnce sync.Once
	result   *ExecutionResult
	err      error
}

// PID returns the child's process id, which is also its process group id.
func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// TempDir returns the run's temporary directory. It no longer exists once
// Wait has returned.
func (h *Handle) TempDir() string {
	return h.script.dir
}

// ScriptPath returns the path of the script file inside TempDir.
func (h *Handle) ScriptPath() string {
	return h.script.path
}

// Terminate asks the process group to stop. Wait then reports a
// *CancelledError with cause ErrTerminated. Safe to call more than once.
func (h *Handle) Terminate() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Wait blocks until the child has exited and its output is drained, removes
// the temporary directory and reports the outcome. Repeated calls return the
// same values.
func (h *Handle) Wait() (*ExecutionResult, error) {
	h.waitOnce.Do(h.wait)
	return h.result, h.err
}

func (h *Handle) wait() {
	lastLine := h.stream()
	waitErr := h.cmd.Wait()

	h.mu.Lock()
	close(h.done)
	cause := h.cause
	h.mu.Unlock()
	h.stopCtx()
	h.out.Close()

	exitCode := exitStatus(h.cmd.ProcessState)
	h.log.Info("command exited", "exit_code", exitCode)

	cleanupErr := h.script.remove()
	if cleanupErr != nil {
		h.log.Warn("failed to remove temp dir", "error", cleanupErr)
	}

	var exitErr *exec.ExitError
	switch {
	case cause != nil:
		h.err = &CancelledError{Label: h.label, Cause: cause, ExitCode: exitCode, LastLine: lastLine}
	case waitErr != nil && !errors.As(waitErr, &exitErr):
		h.err = &SpawnError{Shell: h.cmd.Path, Label: h.label, Err: waitErr}
	case exitCode != 0:
		h.err = &ExecutionError{Label: h.label, ExitCode: exitCode, LastLine: lastLine}
	case cleanupErr != nil:
		h.err = cleanupErr
	default:
		h.result = &ExecutionResult{
			Label:     h.label,
			ExitCode:  exitCode,
			LastLine:  lastLine,
			Succeeded: true,
			Duration:  time.Since(h.started),
		}
	}
}

// stream forwards every line of output to the logger as it arrives and
// returns the last one. Memory is bounded by maxLine regardless of volume.
// Lines longer than maxLine are logged in chunks.
func (h *Handle) stream() string {
	br := bufio.NewReaderSize(h.out, h.maxLine)
	h.log.Info("output:")
	var last string
	midLine := false
	for {
		raw, err := br.ReadSlice('\n')
		full := errors.Is(err, bufio.ErrBufferFull)
		switch {
		case full:
			last = h.decoder.chunk(raw)
			h.log.Info("output", "line", last)
			midLine = true
		case len(raw) > 0 || h.decoder.pending():
			line := h.decoder.line(raw)
			if line == "" && midLine {
				// Only the newline or trailing blanks followed the last chunk.
				last = strings.TrimRightFunc(last, unicode.IsSpace)
			} else {
				last = line
				h.log.Info("output", "line", last)
			}
			midLine = false
		}
		switch {
		case err == nil, full:
			continue
		case isStreamEnd(err):
			return last
		default:
			h.log.Warn("failed to read command output", "error", err)
			return last
		}
	}
}

func (h *Handle) watch(ctx context.Context) {
	select {
	case <-h.done:
		return
	case <-ctx.Done():
		h.cancel(context.Cause(ctx))
	case <-h.stop:
		h.cancel(ErrTerminated)
	}

	if h.grace <= 0 {
		h.signal(killGroup, "SIGKILL")
		return
	}
	timer := time.NewTimer(h.grace)
	defer timer.Stop()
	select {
	case <-h.done:
	case <-timer.C:
		h.signal(killGroup, "SIGKILL")
	}
}

func (h *Handle) cancel(cause error) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}
	if h.cause == nil {
		h.cause = cause
	}
	h.mu.Unlock()
	h.log.Info("cancelling command", "cause", cause)
	h.signal(terminateGroup, "SIGTERM")
}

func (h *Handle) signal(send func(int) error, name string) {
	if err := send(h.PID()); err != nil {
		h.log.Warn("failed to signal process group", "signal", name, "error", err)
	}
}
