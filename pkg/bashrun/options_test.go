package bashrun_test

import (
	"testing"
	"time"

	"github.com/LiboWorks/bashrun/internal/config"
	bashruntesting "github.com/LiboWorks/bashrun/internal/testing"
	"github.com/LiboWorks/bashrun/pkg/bashrun"
)

func TestDefaultOptions(t *testing.T) {
	config.Reset()
	defer config.Reset()

	opts := bashrun.DefaultOptions()

	if opts.Shell != config.DefaultShell {
		t.Errorf("expected default Shell %q, got %s", config.DefaultShell, opts.Shell)
	}
	if opts.Timeout != 0 {
		t.Errorf("expected no timeout, got %v", opts.Timeout)
	}
	if opts.KillGrace != time.Duration(config.DefaultKillGrace)*time.Second {
		t.Errorf("unexpected KillGrace %v", opts.KillGrace)
	}
	if opts.UsePTY {
		t.Error("UsePTY should be false by default")
	}
	if opts.Logger != nil {
		t.Error("Logger should be nil by default")
	}
}

func TestDefaultOptionsFromEnv(t *testing.T) {
	config.Reset()
	defer config.Reset()
	t.Setenv("BASHRUN_SHELL", "sh")
	t.Setenv("BASHRUN_TIMEOUT", "7")

	opts := bashrun.DefaultOptions()
	if opts.Shell != "sh" {
		t.Errorf("expected Shell 'sh', got %s", opts.Shell)
	}
	if opts.Timeout != 7*time.Second {
		t.Errorf("expected Timeout 7s, got %v", opts.Timeout)
	}
}

func TestFunctionalOptions(t *testing.T) {
	logger := bashruntesting.NewRecorder().Logger()
	opts := bashrun.ApplyOptions(
		bashrun.WithShell("zsh"),
		bashrun.WithTmpRoot("/custom/tmp"),
		bashrun.WithOutputEncoding("latin1"),
		bashrun.WithTimeout(time.Minute),
		bashrun.WithKillGrace(3*time.Second),
		bashrun.WithPTY(),
		bashrun.WithLogger(logger),
	)

	if opts.Shell != "zsh" {
		t.Errorf("expected Shell 'zsh', got %s", opts.Shell)
	}
	if opts.TmpRoot != "/custom/tmp" {
		t.Errorf("expected TmpRoot '/custom/tmp', got %s", opts.TmpRoot)
	}
	if opts.OutputEncoding != "latin1" {
		t.Errorf("expected OutputEncoding 'latin1', got %s", opts.OutputEncoding)
	}
	if opts.Timeout != time.Minute {
		t.Errorf("expected Timeout 1m, got %v", opts.Timeout)
	}
	if opts.KillGrace != 3*time.Second {
		t.Errorf("expected KillGrace 3s, got %v", opts.KillGrace)
	}
	if !opts.UsePTY {
		t.Error("UsePTY should be true")
	}
	if opts.Logger != logger {
		t.Error("Logger not applied")
	}
}

func TestVersion(t *testing.T) {
	if bashrun.Version == "" {
		t.Error("Version should not be empty")
	}
}
