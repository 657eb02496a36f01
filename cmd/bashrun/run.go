package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/bashrun/internal/runner"
)

var (
	runLabel      string
	runEnv        map[string]string
	runIsolateEnv bool
	runFile       string
	runShell      string
	runTimeout    time.Duration
	runKillGrace  time.Duration
	runTmpRoot    string
	runEncoding   string
	runPTY        bool
)

// runCmd runs a single command body
var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command...]",
	Short: "Run one command body and print its last output line",
	Long: `Run writes the command body to a temporary script and executes it.

The body comes from --file (use - for stdin) or from the remaining arguments,
joined with spaces.

Examples:
  bashrun run -- 'echo hello'
  bashrun run --label build -e GOFLAGS=-mod=mod -- make test
  bashrun run -f deploy.sh --timeout 10m
  echo 'uname -a' | bashrun run -f -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readBody(cmd.InOrStdin(), runFile, args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sink, err := openSink(cmd, cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		opts := runner.OptionsFromConfig(cfg)
		flags := cmd.Flags()
		if flags.Changed("shell") {
			opts.Shell = runShell
		}
		if flags.Changed("timeout") {
			opts.Timeout = runTimeout
		}
		if flags.Changed("kill-grace") {
			opts.KillGrace = runKillGrace
		}
		if flags.Changed("tmp-root") {
			opts.TmpRoot = runTmpRoot
		}
		if flags.Changed("encoding") {
			opts.OutputEncoding = runEncoding
		}
		if flags.Changed("pty") {
			opts.UsePTY = runPTY
		}

		r, err := runner.New(opts, sink.Logger)
		if err != nil {
			return err
		}
		res, err := r.Execute(cmd.Context(), runner.CommandSpec{
			Body:       body,
			Label:      runLabel,
			Env:        runEnv,
			IsolateEnv: runIsolateEnv,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.LastLine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	flags := runCmd.Flags()
	flags.StringVarP(&runLabel, "label", "l", "bashrun", "Label for the script file name and log records")
	flags.StringToStringVarP(&runEnv, "env", "e", nil, "Environment variable KEY=VALUE (repeatable)")
	flags.BoolVar(&runIsolateEnv, "isolate-env", false, "Pass only --env variables instead of extending the current environment")
	flags.StringVarP(&runFile, "file", "f", "", "Read the command body from a file (- for stdin)")
	flags.StringVar(&runShell, "shell", "", "Interpreter to run the script with")
	flags.DurationVar(&runTimeout, "timeout", 0, "Cancel the command after this duration")
	flags.DurationVar(&runKillGrace, "kill-grace", 0, "Delay between SIGTERM and SIGKILL on cancellation")
	flags.StringVar(&runTmpRoot, "tmp-root", "", "Directory for per-run temporary directories")
	flags.StringVar(&runEncoding, "encoding", "", "Encoding of the command output")
	flags.BoolVar(&runPTY, "pty", false, "Merge output through a pseudo-terminal")
}

// readBody returns the command body from file ("-" meaning stdin) or args.
func readBody(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("use either --file or a command, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read command from stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read command file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", fmt.Errorf("command required: use --file <script> or provide it after --")
	}
}
