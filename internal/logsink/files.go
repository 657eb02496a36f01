package logsink

import (
	"fmt"
	"os"
	"sync"
)

// Files opens log files so that the first open of a path in this process
// truncates it and later opens append, letting several runs share one file.
type Files struct {
	mu        sync.Mutex
	truncated map[string]bool
}

// NewFiles creates an empty registry.
func NewFiles() *Files {
	return &Files{
		truncated: make(map[string]bool),
	}
}

var defaultFiles = NewFiles()

// DefaultFiles returns the process-wide registry.
func DefaultFiles() *Files {
	return defaultFiles
}

// Open opens filePath for writing, truncating on first open and appending thereafter.
func (f *Files) Open(filePath string) (*os.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var flag int
	if f.truncated[filePath] {
		flag = os.O_APPEND | os.O_WRONLY | os.O_CREATE
	} else {
		flag = os.O_TRUNC | os.O_WRONLY | os.O_CREATE
	}

	file, err := os.OpenFile(filePath, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	f.truncated[filePath] = true
	return file, nil
}

// Forget makes the next Open of filePath truncate again.
func (f *Files) Forget(filePath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.truncated, filePath)
}

// Reset forgets every path.
func (f *Files) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.truncated = make(map[string]bool)
}
