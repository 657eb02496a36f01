package runner

import "time"

// ExecutionResult is the outcome of a completed run.
type ExecutionResult struct {
	Label    string
	ExitCode int

	// LastLine is the final line the command printed, trimmed of trailing
	// whitespace. Empty when the command printed nothing.
	LastLine string

	Succeeded bool
	Duration  time.Duration
}
