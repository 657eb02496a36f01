// Package testing provides test utilities and helpers for bashrun tests.
package testing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/LiboWorks/bashrun/internal/runner"
)

// RequireShell skips the test when shell is not on PATH.
func RequireShell(t *testing.T, shell string) {
	t.Helper()
	if _, err := exec.LookPath(shell); err != nil {
		t.Skipf("%s not available: %v", shell, err)
	}
}

// Record is a captured log record with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Recorder is an slog.Handler that keeps every record in memory.
type Recorder struct {
	mu      *sync.Mutex
	records *[]Record
	attrs   []slog.Attr
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, records: &[]Record{}}
}

// Logger returns a logger writing to the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.String()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, Record{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Recorder{mu: r.mu, records: r.records, attrs: append(slices.Clip(r.attrs), attrs...)}
}

// WithGroup is a no-op; bashrun does not log grouped attributes.
func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Records returns a snapshot of all records.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(*r.records)
}

// Lines returns the output lines logged for label, in order.
func (r *Recorder) Lines(label string) []string {
	var lines []string
	for _, rec := range r.Records() {
		if rec.Message == "output" && rec.Attrs["label"] == label {
			lines = append(lines, rec.Attrs["line"])
		}
	}
	return lines
}

// Find returns the first record with message msg logged for label.
func (r *Recorder) Find(label, msg string) (Record, bool) {
	for _, rec := range r.Records() {
		if rec.Message == msg && rec.Attrs["label"] == label {
			return rec, true
		}
	}
	return Record{}, false
}

// TestRunner wraps a runner.Runner whose temp root and log are private to one test.
type TestRunner struct {
	Runner   *runner.Runner
	Recorder *Recorder
	TmpRoot  string
	t        *testing.T
}

// NewTestRunner creates a runner rooted in t.TempDir(). mutate may adjust the
// options before the runner is built.
func NewTestRunner(t *testing.T, mutate ...func(*runner.Options)) *TestRunner {
	t.Helper()
	RequireShell(t, "bash")

	opts := runner.DefaultOptions()
	opts.TmpRoot = t.TempDir()
	opts.KillGrace = time.Second
	for _, m := range mutate {
		m(&opts)
	}

	rec := NewRecorder()
	r, err := runner.New(opts, rec.Logger())
	if err != nil {
		t.Fatalf("runner.New() error = %v", err)
	}
	return &TestRunner{Runner: r, Recorder: rec, TmpRoot: opts.TmpRoot, t: t}
}

// Run executes body under label and returns assertions on the outcome.
func (tr *TestRunner) Run(label, body string) *Assertions {
	tr.t.Helper()
	return tr.RunSpec(context.Background(), runner.CommandSpec{Label: label, Body: body})
}

// RunSpec executes spec and returns assertions on the outcome.
func (tr *TestRunner) RunSpec(ctx context.Context, spec runner.CommandSpec) *Assertions {
	tr.t.Helper()
	start := time.Now()
	res, err := tr.Runner.Execute(ctx, spec)
	return &Assertions{
		t:        tr.t,
		runner:   tr,
		label:    spec.Label,
		result:   res,
		err:      err,
		duration: time.Since(start),
	}
}

// Assertions provides fluent assertions on a run outcome.
type Assertions struct {
	t        *testing.T
	runner   *TestRunner
	label    string
	result   *runner.ExecutionResult
	err      error
	duration time.Duration
}

// Result returns the raw result and error.
func (a *Assertions) Result() (*runner.ExecutionResult, error) {
	return a.result, a.err
}

// Succeeded asserts the run returned a successful result
func (a *Assertions) Succeeded() *Assertions {
	a.t.Helper()
	if a.err != nil {
		a.t.Fatalf("expected success, got error: %v", a.err)
	}
	if a.result == nil || !a.result.Succeeded {
		a.t.Fatalf("expected succeeded result, got %+v", a.result)
	}
	return a
}

// LastLine asserts the last output line
func (a *Assertions) LastLine(expected string) *Assertions {
	a.t.Helper()
	var actual string
	switch {
	case a.result != nil:
		actual = a.result.LastLine
	default:
		var execErr *runner.ExecutionError
		var cancelErr *runner.CancelledError
		if errors.As(a.err, &execErr) {
			actual = execErr.LastLine
		} else if errors.As(a.err, &cancelErr) {
			actual = cancelErr.LastLine
		}
	}
	if actual != expected {
		a.t.Errorf("last line = %q, want %q", actual, expected)
	}
	return a
}

// FailedWithExitCode asserts the run failed with an ExecutionError
func (a *Assertions) FailedWithExitCode(expected int) *Assertions {
	a.t.Helper()
	var execErr *runner.ExecutionError
	if !errors.As(a.err, &execErr) {
		a.t.Fatalf("expected *runner.ExecutionError, got %T: %v", a.err, a.err)
	}
	if execErr.ExitCode != expected {
		a.t.Errorf("expected exit code %d, got %d", expected, execErr.ExitCode)
	}
	if a.result != nil {
		a.t.Errorf("expected no result on failure, got %+v", a.result)
	}
	return a
}

// Cancelled asserts the run was cancelled with the given cause
func (a *Assertions) Cancelled(cause error) *Assertions {
	a.t.Helper()
	if !errors.Is(a.err, runner.ErrCancelled) {
		a.t.Fatalf("expected cancellation, got %T: %v", a.err, a.err)
	}
	if !errors.Is(a.err, cause) {
		a.t.Errorf("expected cause %v, got %v", cause, a.err)
	}
	return a
}

// Logged asserts that the lines were logged for this run, in order
func (a *Assertions) Logged(lines ...string) *Assertions {
	a.t.Helper()
	actual := a.runner.Recorder.Lines(a.label)
	if !slices.Equal(actual, lines) {
		a.t.Errorf("logged lines = %q, want %q", actual, lines)
	}
	return a
}

// LoggedExitCode asserts the final "command exited" record
func (a *Assertions) LoggedExitCode(expected int) *Assertions {
	a.t.Helper()
	rec, ok := a.runner.Recorder.Find(a.label, "command exited")
	if !ok {
		a.t.Errorf("no exit record logged for %s", a.label)
		return a
	}
	if got := rec.Attrs["exit_code"]; got != strconv.Itoa(expected) {
		a.t.Errorf("logged exit code = %s, want %d", got, expected)
	}
	return a
}

// TempCleaned asserts no per-run directory is left under the temp root
func (a *Assertions) TempCleaned() *Assertions {
	a.t.Helper()
	entries, err := os.ReadDir(a.runner.TmpRoot)
	if err != nil {
		a.t.Fatalf("failed to read temp root: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		a.t.Errorf("temp root not empty after run: %v", names)
	}
	return a
}

// DurationLessThan asserts the execution took less than the specified duration
func (a *Assertions) DurationLessThan(d time.Duration) *Assertions {
	a.t.Helper()
	if a.duration >= d {
		a.t.Errorf("execution took %v, expected less than %v", a.duration, d)
	}
	return a
}
