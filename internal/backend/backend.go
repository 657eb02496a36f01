// Package backend defines the interface hosts use to execute commands and a
// registry of named executors. This allows a host adapter to pick an
// interpreter by name and facilitates testing through mock implementations.
package backend

import (
	"context"
	"slices"
	"sort"

	"github.com/LiboWorks/bashrun/internal/runner"
)

// Executor is the interface for anything that can run a CommandSpec.
// The standard implementation is ShellExecutor; hosts and tests may register
// their own.
type Executor interface {
	// Execute runs spec to completion. A nil error implies a successful result.
	Execute(ctx context.Context, spec runner.CommandSpec) (*runner.ExecutionResult, error)

	// Name returns the name the executor is registered under.
	Name() string
}

// Registry manages available executors and allows lookup by name.
type Registry struct {
	executors   map[string]Executor
	defaultName string
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
	}
}

// Register adds an executor to the registry. The first executor registered
// becomes the default.
func (r *Registry) Register(name string, e Executor) {
	r.executors[name] = e
	if r.defaultName == "" {
		r.defaultName = name
	}
}

// SetDefault sets which executor to use when none is specified.
func (r *Registry) SetDefault(name string) {
	r.defaultName = name
}

// Default returns the name of the default executor.
func (r *Registry) Default() string {
	return r.defaultName
}

// Get returns an executor by name, or the default if name is empty.
func (r *Registry) Get(name string) (Executor, bool) {
	if name == "" {
		name = r.defaultName
	}
	e, ok := r.executors[name]
	return e, ok
}

// List returns the names of all registered executors, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return slices.Contains(r.List(), name)
}
