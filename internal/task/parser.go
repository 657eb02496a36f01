package task

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTasks loads one or more tasks from a YAML file. Supports files
// containing multiple YAML documents separated by `---`. Empty documents are
// ignored.
func LoadTasks(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tasks, err := ParseTasks(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// ParseTasks parses tasks from YAML data.
func ParseTasks(data []byte) ([]Task, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tasks []Task
	for {
		var t Task
		if err := dec.Decode(&t); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		// skip completely empty docs
		if t.Label == "" && t.Command == "" && len(t.Env) == 0 {
			continue
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks found")
	}
	return tasks, nil
}
