package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/bashrun/pkg/bashrun"
)

var (
	tasksFile string
	parallel  int
)

// execCmd runs every task of a task file
var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run the tasks defined in a YAML task file",
	Long: `Exec loads one or more task definitions from a YAML file and runs them.
Tasks are independent: they run concurrently up to --parallel at a time and
a failing task does not stop the others.

Examples:
  bashrun exec -f tasks.yaml
  bashrun exec tasks.yaml --parallel 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Support both -f flag and positional argument
		file := tasksFile
		if file == "" && len(args) > 0 {
			file = args[0]
		}
		if file == "" {
			return fmt.Errorf("task file required: use -f <file> or provide as argument")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("parallel") {
			cfg.Parallel = parallel
		}
		sink, err := openSink(cmd, cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		tasks, err := bashrun.LoadTasks(file)
		if err != nil {
			return err
		}

		opts := bashrun.FromConfig(cfg)
		opts.Logger = sink.Logger
		outcomes, err := bashrun.RunTasks(cmd.Context(), tasks, cfg.Parallel, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				fmt.Fprintf(out, "❌ %s: %v\n", o.Task.Label, o.Err)
				continue
			}
			fmt.Fprintf(out, "✅ %s: %s\n", o.Task.Label, o.Result.LastLine)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tasks failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVarP(&tasksFile, "file", "f", "", "Task YAML file")
	execCmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Maximum number of tasks running at once")
}
