// Package logsink builds the *slog.Logger that bashrun injects into the
// runner. Child output, lifecycle records and the final exit code all flow
// through it to stderr (text or JSON), journald, and optionally a log file.
package logsink

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/LiboWorks/bashrun/internal/config"
)

// Sink owns a logger and the files behind it.
type Sink struct {
	Logger  *slog.Logger
	closers []io.Closer
}

// Close releases any files opened for the sink.
func (s *Sink) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// New creates a Sink from configuration. Console records go to w.
func New(cfg *config.Config, w io.Writer) (*Sink, error) {
	return NewWithFiles(cfg, w, DefaultFiles())
}

// NewWithFiles is New with an explicit file registry.
func NewWithFiles(cfg *config.Config, w io.Writer, files *Files) (*Sink, error) {
	level := Level(cfg)
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.Verbose && cfg.DebugMode}

	var handlers []slog.Handler
	switch resolveFormat(cfg.LogFormat, w) {
	case config.LogFormatText:
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	case config.LogFormatJSON:
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
	case config.LogFormatJournald:
		if !JournaldAvailable() {
			return nil, fmt.Errorf("log format %q requested but journald is not available", cfg.LogFormat)
		}
		handlers = append(handlers, NewJournaldHandler(level))
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}

	s := &Sink{}
	if cfg.LogFile != "" {
		f, err := files.Open(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, f)
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	s.Logger = slog.New(Fanout(handlers...))
	return s, nil
}

// Level returns the minimum level implied by cfg.
func Level(cfg *config.Config) slog.Level {
	if cfg.DebugMode {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// resolveFormat picks text for terminals and JSON otherwise when format is auto.
func resolveFormat(format string, w io.Writer) string {
	if format != config.LogFormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.LogFormatText
	}
	return config.LogFormatJSON
}
