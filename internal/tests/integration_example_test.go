package tests

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// buildCLI compiles cmd/bashrun into a temporary directory and returns the
// binary path.
func buildCLI(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI build in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not on PATH")
	}

	root := repoRoot(t)
	bin := filepath.Join(t.TempDir(), "bashrun")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	build := exec.CommandContext(ctx, "go", "build", "-o", bin, "./cmd/bashrun")
	build.Dir = root
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return bin
}

// runCLI runs the binary and returns stdout, stderr and the exit code.
func runCLI(t *testing.T, bin string, args ...string) (string, string, int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = repoRoot(t)
	cmd.Env = append(os.Environ(), "BASHRUN_TMP_ROOT="+t.TempDir(), "BASHRUN_LOG_FORMAT=json")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return stdout.String(), stderr.String(), code
}

// End to end: the CLI prints the last line, propagates exit codes and maps
// timeouts to 124.
func TestCLIRun(t *testing.T) {
	bin := buildCLI(t)

	out, logs, code := runCLI(t, bin, "run", "--label", "cli", "-e", "WHO=world", "--", "echo first; echo hello $WHO")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, logs)
	}
	if strings.TrimSpace(out) != "hello world" {
		t.Errorf("stdout = %q, want %q", out, "hello world")
	}
	if !strings.Contains(logs, `"line":"first"`) {
		t.Errorf("expected output records in the log, got:\n%s", logs)
	}

	_, _, code = runCLI(t, bin, "run", "--", "exit 7")
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}

	_, _, code = runCLI(t, bin, "run", "--timeout", "200ms", "--kill-grace", "1s", "--", "sleep 30")
	if code != 124 {
		t.Errorf("exit code on timeout = %d, want 124", code)
	}

	_, _, code = runCLI(t, bin, "run", "--label", "not a label", "--", "true")
	if code != 1 {
		t.Errorf("exit code for invalid label = %d, want 1", code)
	}
}

func TestCLIExec(t *testing.T) {
	bin := buildCLI(t)

	out, logs, code := runCLI(t, bin, "exec", "-f", "testdata/fixtures/multi.yaml", "--parallel", "2")
	if code != 0 {
		t.Fatalf("exit code = %d, stdout:\n%s\nstderr:\n%s", code, out, logs)
	}
	for _, label := range []string{"greet", "isolated", "posix"} {
		if !strings.Contains(out, "✅ "+label+":") {
			t.Errorf("missing report for %s in:\n%s", label, out)
		}
	}

	out, _, code = runCLI(t, bin, "exec", "testdata/fixtures/failing.yaml")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "❌ broken:") || !strings.Contains(out, "✅ ok:") {
		t.Errorf("unexpected report:\n%s", out)
	}
}
