package task

import "fmt"

// Validate checks a single task.
func (t *Task) Validate() error {
	if t.Label == "" {
		return fmt.Errorf("task label is required")
	}
	if err := t.Spec().Validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.Label, err)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("task %s: timeout must not be negative", t.Label)
	}
	return nil
}

// ValidateAll checks every task and that labels are unique within the file.
func ValidateAll(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i+1, err)
		}
		if seen[tasks[i].Label] {
			return fmt.Errorf("duplicate task label %q", tasks[i].Label)
		}
		seen[tasks[i].Label] = true
	}
	return nil
}
