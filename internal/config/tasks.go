package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/ganttr/internal/gantt"
)

// TaskFile is the YAML import format:
//
//	tasks:
//	  - id: design
//	    name: Design
//	    start: 2024-01-01
//	    duration: 5d
//	    progress: 20
//	    dependencies: research, interviews
type TaskFile struct {
	Holidays []string   `yaml:"holidays"`
	Tasks    []TaskSpec `yaml:"tasks"`
}

type TaskSpec struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Start        string       `yaml:"start"`
	End          string       `yaml:"end"`
	Duration     string       `yaml:"duration"`
	Progress     int          `yaml:"progress"`
	Dependencies Dependencies `yaml:"dependencies"`
	CustomClass  string       `yaml:"custom_class"`
}

// Dependencies accepts either a comma separated string or a list.
type Dependencies []string

func (d *Dependencies) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*d = gantt.SplitDependencies(n.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*d = list
		return nil
	}
	return fmt.Errorf("line %d: dependencies must be a string or a list", n.Line)
}

// Task converts the entry into an unresolved chart task.
func (s TaskSpec) Task() gantt.Task {
	return gantt.Task{
		ID:           s.ID,
		Name:         s.Name,
		Start:        s.Start,
		End:          s.End,
		Duration:     s.Duration,
		Progress:     s.Progress,
		Dependencies: []string(s.Dependencies),
		CustomClass:  s.CustomClass,
	}
}

// ReadTasks decodes a task file.
func ReadTasks(r io.Reader) (TaskFile, error) {
	var f TaskFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return TaskFile{}, fmt.Errorf("decode tasks: %w", err)
	}
	return f, nil
}

// LoadTasks reads a task file from disk.
func LoadTasks(path string) (TaskFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return TaskFile{}, fmt.Errorf("open tasks: %w", err)
	}
	defer f.Close()
	return ReadTasks(f)
}

// ChartTasks returns the file's tasks in order.
func (f TaskFile) ChartTasks() []gantt.Task {
	out := make([]gantt.Task, len(f.Tasks))
	for i, s := range f.Tasks {
		out[i] = s.Task()
	}
	return out
}
