package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/bashrun/internal/config"
	"github.com/LiboWorks/bashrun/internal/logsink"
	"github.com/LiboWorks/bashrun/internal/runner"
)

// Exit codes for failures that are not a command's own exit status.
const (
	exitFailure = 1
	exitTimeout = 124
)

var (
	logFormat string
	logFile   string
	debug     bool
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bashrun",
	Short: "Run shell commands as isolated, logged task steps",
	Long: `bashrun runs a shell command body the way an orchestrator task step would:
the body is written to a script in a fresh temporary directory, executed by
bash in its own session, and every line of combined output is logged as it
arrives. The last line is printed on success; a non-zero exit becomes the
exit status of bashrun itself.

Examples:
  bashrun run --label greet -- echo hello
  bashrun run -l backup -e TARGET=/srv -f backup.sh
  bashrun exec -f tasks.yaml --parallel 4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logFormat, "log-format", "", "Log format: auto, text, json or journald")
	flags.StringVar(&logFile, "log-file", "", "Also write every log record to this file")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: the command's own exit
// code for execution failures, 124 for timeouts, 1 otherwise.
func exitCode(err error) int {
	var execErr *runner.ExecutionError
	switch {
	case errors.As(err, &execErr) && execErr.ExitCode > 0 && execErr.ExitCode < 256:
		return execErr.ExitCode
	case errors.Is(err, context.DeadlineExceeded):
		return exitTimeout
	default:
		return exitFailure
	}
}

// loadConfig reads configuration from the environment and applies the
// persistent flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := *config.Get()
	flags := cmd.Flags()
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("debug") {
		cfg.DebugMode = debug
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	return &cfg, nil
}

// openSink validates cfg and builds the logger writing to stderr.
func openSink(cmd *cobra.Command, cfg *config.Config) (*logsink.Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return logsink.New(cfg, cmd.ErrOrStderr())
}
