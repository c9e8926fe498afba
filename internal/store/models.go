package store

import (
	"time"

	"github.com/sadopc/ganttr/internal/gantt"
)

// Task is a stored chart row. Dates keep the text the user entered, or the
// canonical form written back after a drag.
type Task struct {
	ID           string
	Name         string
	Start        string
	End          string
	Duration     string
	Progress     int
	Dependencies []string
	CustomClass  string
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChartTask converts the row into an unresolved chart task.
func (t Task) ChartTask() gantt.Task {
	return gantt.Task{
		ID:           t.ID,
		Name:         t.Name,
		Start:        t.Start,
		End:          t.End,
		Duration:     t.Duration,
		Progress:     t.Progress,
		Dependencies: append([]string(nil), t.Dependencies...),
		CustomClass:  t.CustomClass,
	}
}

// FromChartTask builds a row from a chart task.
func FromChartTask(t gantt.Task) Task {
	return Task{
		ID:           t.ID,
		Name:         t.Name,
		Start:        t.Start,
		End:          t.End,
		Duration:     t.Duration,
		Progress:     t.Progress,
		Dependencies: append([]string(nil), t.Dependencies...),
		CustomClass:  t.CustomClass,
	}
}

// CalendarDate is an ignored day or a holiday.
type CalendarDate struct {
	Date  time.Time
	Label string
}

type Setting struct {
	Key   string
	Value string
}
