package logsink_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"

	"github.com/LiboWorks/bashrun/internal/config"
	"github.com/LiboWorks/bashrun/internal/logsink"
)

func TestFilesOpenTruncatesThenAppends(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "run.log")

	if err := os.WriteFile(filePath, []byte("stale\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	files := logsink.NewFiles()

	// First open should truncate
	f, err := files.Open(filePath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.WriteString("first\n")
	f.Close()

	// Second open should append
	f, err = files.Open(filePath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.WriteString("second\n")
	f.Close()

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file content = %q, want %q", string(data), "first\nsecond\n")
	}

	// Forget makes the next open truncate again
	files.Forget(filePath)
	f, err = files.Open(filePath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.WriteString("third\n")
	f.Close()

	data, _ = os.ReadFile(filePath)
	if string(data) != "third\n" {
		t.Errorf("file content after Forget = %q, want %q", string(data), "third\n")
	}
}

func TestFilesOpenInvalidPath(t *testing.T) {
	files := logsink.NewFiles()
	if _, err := files.Open("/nonexistent/dir/run.log"); err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestNewJSONWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bashrun.log")
	cfg := config.NewConfig().WithLog(config.LogFormatJSON, logFile)

	var console bytes.Buffer
	sink, err := logsink.NewWithFiles(cfg, &console, logsink.NewFiles())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sink.Logger.With("label", "build").Info("output", "line", "hello")
	sink.Logger.Debug("hidden")
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(console.Bytes(), &rec); err != nil {
		t.Fatalf("console output is not a single JSON record: %v\n%s", err, console.String())
	}
	if rec["label"] != "build" || rec["line"] != "hello" || rec["msg"] != "output" {
		t.Errorf("unexpected record: %v", rec)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"line":"hello"`) {
		t.Errorf("log file missing record: %s", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
}

func TestNewAutoUsesJSONForNonTerminal(t *testing.T) {
	var console bytes.Buffer
	sink, err := logsink.New(config.NewConfig(), &console)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sink.Close()

	sink.Logger.Info("command exited", "exit_code", 0)
	if !strings.HasPrefix(strings.TrimSpace(console.String()), "{") {
		t.Errorf("expected JSON output, got %q", console.String())
	}
}

func TestNewTextWithDebug(t *testing.T) {
	var console bytes.Buffer
	cfg := config.NewConfig().WithLog(config.LogFormatText, "").WithDebug(true, false)
	sink, err := logsink.New(cfg, &console)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sink.Close()

	sink.Logger.Debug("tmp dir root location", "root", "/tmp")
	if !strings.Contains(console.String(), "root=/tmp") {
		t.Errorf("expected text debug record, got %q", console.String())
	}
}

func TestNewUnknownFormat(t *testing.T) {
	cfg := config.NewConfig().WithLog("xml", "")
	if _, err := logsink.New(cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

type sentEntry struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func TestJournaldHandler(t *testing.T) {
	var sent []sentEntry
	send := func(message string, priority journal.Priority, vars map[string]string) error {
		sent = append(sent, sentEntry{message, priority, vars})
		return nil
	}

	logger := slog.New(logsink.NewJournaldHandlerWithSend(slog.LevelInfo, send)).With("label", "nightly-backup")
	logger.Info("output", "line", "copied 3 files")
	logger.Warn("failed to remove temp dir", "error", "busy")
	logger.WithGroup("proc").Info("command exited", "exit_code", 2)
	logger.Debug("dropped")

	if len(sent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sent))
	}

	if sent[0].message != "copied 3 files" {
		t.Errorf("output message = %q, want the line", sent[0].message)
	}
	if sent[0].fields["BASHRUN_LABEL"] != "nightly-backup" {
		t.Errorf("BASHRUN_LABEL = %q", sent[0].fields["BASHRUN_LABEL"])
	}
	if sent[0].fields["BASHRUN_EVENT"] != "output" {
		t.Errorf("BASHRUN_EVENT = %q", sent[0].fields["BASHRUN_EVENT"])
	}
	if sent[0].fields["SYSLOG_IDENTIFIER"] != "bashrun" {
		t.Errorf("SYSLOG_IDENTIFIER = %q", sent[0].fields["SYSLOG_IDENTIFIER"])
	}
	if sent[0].priority != journal.PriInfo {
		t.Errorf("priority = %v, want info", sent[0].priority)
	}

	if sent[1].priority != journal.PriWarning {
		t.Errorf("warn priority = %v", sent[1].priority)
	}

	if sent[2].fields["BASHRUN_PROC_EXIT_CODE"] != "2" {
		t.Errorf("grouped field missing: %v", sent[2].fields)
	}
}

func TestFanoutRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := logsink.Fanout(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("label", "x")
	logger.Debug("only debug")
	logger.Info("both")

	if strings.Contains(infoBuf.String(), "only debug") {
		t.Error("info handler received debug record")
	}
	if !strings.Contains(debugBuf.String(), "only debug") || !strings.Contains(debugBuf.String(), "both") {
		t.Errorf("debug handler output = %q", debugBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "label=x") {
		t.Errorf("attrs not propagated: %q", infoBuf.String())
	}
}
