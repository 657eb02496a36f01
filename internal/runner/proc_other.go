//go:build !unix

package runner

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

func startProcess(cmd *exec.Cmd, usePTY bool) (io.ReadCloser, error) {
	if usePTY {
		return nil, errors.New("pty output is not supported on this platform")
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &IOError{Op: "create output pipe", Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	pw.Close()
	return pr, nil
}

func terminateGroup(pid int) error {
	return killGroup(pid)
}

func killGroup(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	return p.Kill()
}

func exitStatus(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	return ps.ExitCode()
}

func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed)
}

func checkSignalDispositions(*slog.Logger) {}
