package gantt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/ganttr/internal/dates"
)

// maxSpan caps a task's length.
const maxSpan = 10

// Task is one row of the chart. Start, End and Duration are the raw input;
// Begin, Finish, Index and the durations are derived when the chart loads.
type Task struct {
	ID           string
	Name         string
	Start        string
	End          string
	Duration     string
	StartTime    time.Time
	EndTime      time.Time
	Progress     int
	Dependencies []string
	CustomClass  string

	Begin           time.Time
	Finish          time.Time
	Index           int
	ActualDuration  float64 // days not ignored
	IgnoredDuration float64 // ignored days
}

// Span is the total length of the task in days.
func (t *Task) Span() float64 {
	return t.ActualDuration + t.IgnoredDuration
}

// TaskPatch holds the fields UpdateTask changes. Nil fields are kept.
type TaskPatch struct {
	Name         *string
	Start        *string
	End          *string
	Duration     *string
	Progress     *int
	Dependencies *[]string
	CustomClass  *string
}

func (p TaskPatch) apply(t Task) Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Start != nil {
		t.Start = *p.Start
		t.StartTime = time.Time{}
	}
	if p.End != nil {
		t.End = *p.End
		t.EndTime = time.Time{}
		if *p.End != "" {
			t.Duration = ""
		}
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
		if *p.Duration != "" {
			t.End = ""
			t.EndTime = time.Time{}
		}
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Dependencies != nil {
		t.Dependencies = append([]string(nil), (*p.Dependencies)...)
	}
	if p.CustomClass != nil {
		t.CustomClass = *p.CustomClass
	}
	return t
}

// NormalizeID trims id and replaces inner spaces with underscores.
func NormalizeID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), " ", "_")
}

// SplitDependencies accepts the comma separated form used by loaders.
func SplitDependencies(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeDeps(id string, deps []string) []string {
	seen := make(map[string]bool, len(deps))
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		dep = NormalizeID(dep)
		if dep == "" || dep == id || seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}

// resolve fills the derived dates of t. A *ValidationError excludes the
// task; a *ConfigurationError (bad duration string) is fatal.
func resolve(t *Task, o Options) error {
	t.ID = NormalizeID(t.ID)
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV7()).String()
	}

	switch {
	case !t.StartTime.IsZero():
		t.Begin = t.StartTime.In(o.Location)
	case strings.TrimSpace(t.Start) == "":
		return &ValidationError{TaskID: t.ID, Reason: "missing start date"}
	default:
		begin, err := dates.Parse(t.Start, o.Location)
		if err != nil {
			return &ValidationError{TaskID: t.ID, Reason: "invalid start date: " + err.Error()}
		}
		t.Begin = begin
	}

	switch {
	case !t.EndTime.IsZero():
		t.Finish = t.EndTime.In(o.Location)
	case strings.TrimSpace(t.End) != "":
		finish, err := dates.Parse(t.End, o.Location)
		if err != nil {
			return &ValidationError{TaskID: t.ID, Reason: "invalid end date: " + err.Error()}
		}
		if o.InclusiveEnd && dates.IsMidnight(finish) {
			finish = finish.AddDate(0, 0, 1)
		}
		t.Finish = finish
	case strings.TrimSpace(t.Duration) != "":
		spans, err := dates.ParseDurations(t.Duration)
		if err != nil {
			return &ConfigurationError{Field: "duration", Value: t.Duration, Err: err}
		}
		finish := t.Begin
		for _, span := range spans {
			finish = span.AddTo(finish)
		}
		t.Finish = finish
	default:
		return &ValidationError{TaskID: t.ID, Reason: "missing end date or duration"}
	}

	if !t.Finish.After(t.Begin) {
		return &ValidationError{TaskID: t.ID, Reason: "end date is not after start date"}
	}
	if t.Finish.After(t.Begin.AddDate(maxSpan, 0, 0)) {
		return &ValidationError{TaskID: t.ID, Reason: "duration exceeds 10 years"}
	}

	t.Progress = clampProgress(t.Progress)
	t.Dependencies = normalizeDeps(t.ID, t.Dependencies)
	return nil
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// measure walks the days of [Begin, Finish) and splits them into actual
// and ignored time. Partial days contribute their overlap.
func measure(t *Task, tracker *Tracker) {
	t.ActualDuration, t.IgnoredDuration = 0, 0
	for day := dates.StartOf(t.Begin, dates.Day); day.Before(t.Finish); day = day.AddDate(0, 0, 1) {
		from, to := day, day.AddDate(0, 0, 1)
		if from.Before(t.Begin) {
			from = t.Begin
		}
		if to.After(t.Finish) {
			to = t.Finish
		}
		part := dates.Diff(to, from, dates.Day)
		if tracker.Ignored(day) {
			t.IgnoredDuration += part
		} else {
			t.ActualDuration += part
		}
	}
}
