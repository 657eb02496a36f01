package task

import (
	"time"

	"github.com/LiboWorks/bashrun/internal/runner"
)

// Task is one command definition read from a task file.
type Task struct {
	Label   string            `yaml:"label"`
	Command string            `yaml:"command"`
	Env     map[string]string `yaml:"env,omitempty"`
	// IsolateEnv passes only Env to the command instead of overlaying it on
	// the environment bashrun itself was started with.
	IsolateEnv bool `yaml:"isolate_env,omitempty"`
	// Shell selects a registered executor by name. Empty means the default.
	Shell string `yaml:"shell,omitempty"`
	// Optional timeout in seconds. 0 means the configured default applies.
	Timeout int `yaml:"timeout,omitempty"`
}

// Spec converts the task into a runner.CommandSpec.
func (t Task) Spec() runner.CommandSpec {
	return runner.CommandSpec{
		Body:       t.Command,
		Label:      t.Label,
		Env:        t.Env,
		IsolateEnv: t.IsolateEnv,
	}
}

// TimeoutDuration returns Timeout as a duration.
func (t Task) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}
