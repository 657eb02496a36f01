// Package config provides centralized configuration management for bashrun.
// It handles environment variables, default values, and configuration validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/text/encoding/htmlindex"
)

// Config holds all configuration settings for bashrun
type Config struct {
	// Process settings
	Shell          string
	TmpRoot        string
	TmpPrefix      string
	OutputEncoding string
	UsePTY         bool

	// Cancellation settings
	Timeout   int // seconds, 0 disables
	KillGrace int // seconds

	// Output settings
	MaxLineBytes int
	LogFormat    string
	LogFile      string
	Verbose      bool
	DebugMode    bool

	// Task file settings
	Parallel int
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// Default values
const (
	DefaultShell          = "bash"
	DefaultTmpPrefix      = "bashruntmp"
	DefaultOutputEncoding = "utf-8"
	DefaultKillGrace      = 5
	DefaultMaxLineBytes   = 1 << 20
	DefaultLogFormat      = LogFormatAuto
	DefaultParallel       = 1
)

// Log formats understood by the logsink package.
const (
	LogFormatAuto     = "auto"
	LogFormatText     = "text"
	LogFormatJSON     = "json"
	LogFormatJournald = "journald"
)

// Get returns the global configuration, loading from environment if not already loaded
func Get() *Config {
	configOnce.Do(func() {
		globalConfig = loadFromEnv()
	})
	return globalConfig
}

// Reset clears the global configuration, forcing reload on next Get()
// This is primarily useful for testing
func Reset() {
	configOnce = sync.Once{}
	globalConfig = nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv() *Config {
	return &Config{
		// Process settings
		Shell:          getEnv("BASHRUN_SHELL", DefaultShell),
		TmpRoot:        getEnv("BASHRUN_TMP_ROOT", ""),
		TmpPrefix:      getEnv("BASHRUN_TMP_PREFIX", DefaultTmpPrefix),
		OutputEncoding: getEnv("BASHRUN_OUTPUT_ENCODING", DefaultOutputEncoding),
		UsePTY:         getEnvBool("BASHRUN_PTY", false),

		// Cancellation settings
		Timeout:   getEnvInt("BASHRUN_TIMEOUT", 0),
		KillGrace: getEnvInt("BASHRUN_KILL_GRACE", DefaultKillGrace),

		// Output settings
		MaxLineBytes: getEnvInt("BASHRUN_MAX_LINE", DefaultMaxLineBytes),
		LogFormat:    getEnv("BASHRUN_LOG_FORMAT", DefaultLogFormat),
		LogFile:      getEnv("BASHRUN_LOG_FILE", ""),
		Verbose:      getEnvBool("BASHRUN_VERBOSE", false),
		DebugMode:    getEnvBool("BASHRUN_DEBUG", false),

		Parallel: getEnvInt("BASHRUN_PARALLEL", DefaultParallel),
	}
}

// NewConfig creates a new configuration with default values
// This is useful for testing or programmatic configuration
func NewConfig() *Config {
	return &Config{
		Shell:          DefaultShell,
		TmpPrefix:      DefaultTmpPrefix,
		OutputEncoding: DefaultOutputEncoding,
		KillGrace:      DefaultKillGrace,
		MaxLineBytes:   DefaultMaxLineBytes,
		LogFormat:      DefaultLogFormat,
		Parallel:       DefaultParallel,
	}
}

// WithShell sets the interpreter binary
func (c *Config) WithShell(shell string) *Config {
	if shell != "" {
		c.Shell = shell
	}
	return c
}

// WithTmp configures where per-run temp directories are created
func (c *Config) WithTmp(root, prefix string) *Config {
	c.TmpRoot = root
	if prefix != "" {
		c.TmpPrefix = prefix
	}
	return c
}

// WithOutputEncoding sets the encoding used to decode child output
func (c *Config) WithOutputEncoding(name string) *Config {
	if name != "" {
		c.OutputEncoding = name
	}
	return c
}

// WithTimeout configures the run deadline and the SIGTERM to SIGKILL grace period
func (c *Config) WithTimeout(timeout, killGrace int) *Config {
	c.Timeout = timeout
	if killGrace >= 0 {
		c.KillGrace = killGrace
	}
	return c
}

// WithPTY enables pseudo-terminal output merging
func (c *Config) WithPTY(enabled bool) *Config {
	c.UsePTY = enabled
	return c
}

// WithLog configures the log format and optional log file
func (c *Config) WithLog(format, file string) *Config {
	if format != "" {
		c.LogFormat = format
	}
	c.LogFile = file
	return c
}

// WithParallel sets the worker pool size used for task files
func (c *Config) WithParallel(n int) *Config {
	c.Parallel = n
	return c
}

// WithDebug enables debug and verbose modes
func (c *Config) WithDebug(debug, verbose bool) *Config {
	c.DebugMode = debug
	c.Verbose = verbose
	return c
}

// Validate checks if the configuration is valid for the intended use
func (c *Config) Validate() error {
	if c.Shell == "" {
		return fmt.Errorf("shell must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	if c.KillGrace < 0 {
		return fmt.Errorf("kill grace must not be negative, got %d", c.KillGrace)
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be positive, got %d", c.MaxLineBytes)
	}
	if c.Parallel <= 0 {
		return fmt.Errorf("parallel must be positive, got %d", c.Parallel)
	}
	if _, err := htmlindex.Get(c.OutputEncoding); err != nil {
		return fmt.Errorf("unknown output encoding %q", c.OutputEncoding)
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatText, LogFormatJSON, LogFormatJournald:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
