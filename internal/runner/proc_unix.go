//go:build unix

package runner

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// startProcess spawns cmd in a new session and returns the merged
// stdout/stderr stream.
func startProcess(cmd *exec.Cmd, usePTY bool) (io.ReadCloser, error) {
	if usePTY {
		// The pty becomes the controlling terminal of the new session, not ours.
		ptmx, err := pty.StartWithAttrs(cmd, nil, &syscall.SysProcAttr{Setsid: true, Setctty: true})
		if err != nil {
			return nil, err
		}
		return ptmx, nil
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &IOError{Op: "create output pipe", Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// Only the child holds the write end now, so EOF means every writer exited.
	pw.Close()
	return pr, nil
}

// terminateGroup sends SIGTERM to the session led by pid.
func terminateGroup(pid int) error {
	return signalGroup(pid, unix.SIGTERM)
}

// killGroup sends SIGKILL to the session led by pid.
func killGroup(pid int) error {
	return signalGroup(pid, unix.SIGKILL)
}

func signalGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	// Setsid makes the child its own process group leader.
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// exitStatus maps a terminated process to a shell-style exit code:
// 128+N when killed by signal N.
func exitStatus(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

// isStreamEnd reports whether err marks the natural end of the output
// stream. A pty master returns EIO once the last slave fd is closed.
func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, unix.EIO) || errors.Is(err, os.ErrClosed)
}

// checkSignalDispositions warns about signals the host process ignores.
// exec(2) resets caught signals to their default action but keeps ignored
// ones ignored, and the child would inherit that.
func checkSignalDispositions(log *slog.Logger) {
	for _, sig := range []syscall.Signal{unix.SIGPIPE, unix.SIGXFSZ} {
		if signal.Ignored(sig) {
			log.Warn("signal is ignored by the host process and will be inherited by the child", "signal", unix.SignalName(sig))
		}
	}
}
