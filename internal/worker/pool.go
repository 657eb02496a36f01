// Package worker runs independent tasks concurrently with a bounded number
// of simultaneous child processes. Tasks never wait on each other and a
// failed task is not retried.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/LiboWorks/bashrun/internal/backend"
	"github.com/LiboWorks/bashrun/internal/runner"
	"github.com/LiboWorks/bashrun/internal/task"
)

// Outcome is the result of one task.
type Outcome struct {
	Task   task.Task
	Result *runner.ExecutionResult
	Err    error
}

// Pool runs tasks through executors from a registry.
type Pool struct {
	size     int
	registry *backend.Registry
}

// NewPool creates a pool allowing size concurrent runs.
func NewPool(size int, registry *backend.Registry) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{size: size, registry: registry}
}

// Size returns the number of concurrent runs allowed
func (p *Pool) Size() int {
	return p.size
}

// Run executes every task and returns outcomes in the order of tasks.
// Cancelling ctx cancels runs in flight and fails the ones not yet started.
func (p *Pool) Run(ctx context.Context, tasks []task.Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	sem := make(chan struct{}, p.size)
	var wg sync.WaitGroup

	for i, t := range tasks {
		outcomes[i].Task = t
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = fmt.Errorf("task %s not started: %w", t.Label, err)
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i].Err = fmt.Errorf("task %s not started: %w", t.Label, ctx.Err())
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i].Result, outcomes[i].Err = p.runOne(ctx, t)
		}()
	}

	wg.Wait()
	return outcomes
}

func (p *Pool) runOne(ctx context.Context, t task.Task) (*runner.ExecutionResult, error) {
	executor, ok := p.registry.Get(t.Shell)
	if !ok {
		return nil, fmt.Errorf("task %s: unknown shell %q", t.Label, t.Shell)
	}
	if d := t.TimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return executor.Execute(ctx, t.Spec())
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
