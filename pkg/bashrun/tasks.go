package bashrun

import (
	"context"
	"fmt"

	"github.com/LiboWorks/bashrun/internal/backend"
	"github.com/LiboWorks/bashrun/internal/task"
	"github.com/LiboWorks/bashrun/internal/worker"
)

// Task is a command definition loaded from a YAML task file.
type Task = task.Task

// Outcome is the result of one task run by RunTasks.
type Outcome = worker.Outcome

// LoadTasks loads and validates task definitions from a YAML file. The file
// may hold several tasks separated by YAML document markers (---).
//
// Example:
//
//	tasks, err := bashrun.LoadTasks("tasks.yaml")
//	for _, t := range tasks {
//	    fmt.Printf("Task: %s\n", t.Label)
//	}
func LoadTasks(path string) ([]Task, error) {
	tasks, err := task.LoadTasks(path)
	if err != nil {
		return nil, err
	}
	if err := task.ValidateAll(tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// RunTasks runs independent tasks with at most parallel running at once and
// returns one outcome per task, in order. A task's shell field selects the
// interpreter; empty means opts.Shell.
func RunTasks(ctx context.Context, tasks []Task, parallel int, opts *Options) ([]Outcome, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	reg, err := backend.NewDefaultRegistry(opts.runnerOptions(), opts.Logger)
	if err != nil {
		return nil, err
	}
	return worker.NewPool(parallel, reg).Run(ctx, tasks), nil
}
