package gantt

import (
	"errors"
	"fmt"
)

var (
	// ErrGestureActive is returned when an operation needs the chart idle
	// but a drag session is in progress.
	ErrGestureActive = errors.New("gesture in progress")
	ErrNoSession     = errors.New("no active gesture")
	ErrUnknownTask   = errors.New("unknown task")
	ErrReadonly      = errors.New("chart is readonly")
	ErrFixedRange    = errors.New("chart range is fixed")
)

// ValidationError describes a task that was excluded from the chart.
type ValidationError struct {
	TaskID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("task %q: %s", e.TaskID, e.Reason)
}

// ConfigurationError is fatal: the chart cannot compute a scale without
// the offending value.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ReferenceError reports a mount target that does not exist.
type ReferenceError struct {
	Selector string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("mount target %q not found", e.Selector)
}
