package runner

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// CommandSpec describes a single command to execute. Values are copied when a
// run starts, so mutating the spec afterwards has no effect on that run.
type CommandSpec struct {
	// Body is the shell script content, written verbatim to the script file.
	Body string

	// Label identifies the run. It prefixes the script file name and tags
	// every log record, so it must be filesystem safe.
	Label string

	// Env overrides or extends the parent environment.
	Env map[string]string

	// IsolateEnv makes Env the complete child environment instead of an
	// overlay on top of the parent's.
	IsolateEnv bool
}

// Validate checks that the spec can be materialized on disk.
func (s CommandSpec) Validate() error {
	if !labelPattern.MatchString(s.Label) {
		return fmt.Errorf("invalid label %q: must match %s", s.Label, labelPattern.String())
	}
	for k, v := range s.Env {
		switch {
		case k == "":
			return fmt.Errorf("environment variable with empty name")
		case strings.ContainsAny(k, "=\x00"):
			return fmt.Errorf("invalid environment variable name %q: must not contain '=' or NUL", k)
		case strings.ContainsRune(v, 0):
			return fmt.Errorf("invalid value for environment variable %s: contains NUL", k)
		}
	}
	return nil
}

// environ builds the child environment. Later entries win in os/exec, so the
// overrides are appended after the inherited variables.
func (s CommandSpec) environ() []string {
	keys := slices.Sorted(maps.Keys(s.Env))
	var base []string
	if !s.IsolateEnv {
		base = os.Environ()
	}
	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}
