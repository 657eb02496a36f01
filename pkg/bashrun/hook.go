package bashrun

import (
	"context"
)

// Hook adapts bashrun to orchestrators that model a shell step as an object
// holding a command and a task id, with an Execute method that fails on a
// non-zero exit and otherwise returns the last line printed. Register it with
// whatever plugin mechanism the host provides.
type Hook struct {
	// Command is the shell script body.
	Command string

	// TaskID labels the run.
	TaskID string

	// Env, when non-nil, replaces the inherited environment.
	Env map[string]string

	// Options configures the run. Nil uses DefaultOptions().
	Options *Options
}

// NewHook creates a Hook for command labelled taskID.
func NewHook(command, taskID string, opts ...Option) *Hook {
	h := &Hook{Command: command, TaskID: taskID}
	if len(opts) > 0 {
		h.Options = ApplyOptions(opts...)
	}
	return h
}

// Spec returns the CommandSpec the hook runs.
func (h *Hook) Spec() CommandSpec {
	return CommandSpec{
		Body:       h.Command,
		Label:      h.TaskID,
		Env:        h.Env,
		IsolateEnv: h.Env != nil,
	}
}

// Execute runs the command and returns its last output line. The value has no
// meaning beyond whatever the command happened to print last.
func (h *Hook) Execute(ctx context.Context) (string, error) {
	res, err := Execute(ctx, h.Spec(), h.Options)
	if err != nil {
		return "", err
	}
	return res.LastLine, nil
}
