package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/ganttr/internal/gantt"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	ViewMode   string     `json:"view_mode"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
	Invalid    []jsonSkip `json:"invalid,omitempty"`
}

type jsonTask struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Days         float64  `json:"days"`
	WorkingDays  float64  `json:"working_days"`
	IgnoredDays  float64  `json:"ignored_days"`
	Progress     int      `json:"progress"`
	Dependencies []string `json:"dependencies,omitempty"`
	CustomClass  string   `json:"custom_class,omitempty"`
	Bar          *jsonBar `json:"bar,omitempty"`
}

type jsonBar struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	ProgressWidth float64 `json:"progress_width"`
}

type jsonSkip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func ToJSON(c *gantt.Chart, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		ViewMode:   c.ViewMode().Name,
		Start:      formatTime(c.Start()),
		End:        formatTime(c.End()),
		Count:      len(c.Tasks()),
	}

	for _, t := range c.Tasks() {
		jt := jsonTask{
			ID:           t.ID,
			Name:         t.Name,
			Start:        formatTime(t.Begin),
			End:          formatTime(t.Finish),
			Days:         t.Span(),
			WorkingDays:  t.ActualDuration,
			IgnoredDays:  t.IgnoredDuration,
			Progress:     t.Progress,
			Dependencies: t.Dependencies,
			CustomClass:  t.CustomClass,
		}
		if b, ok := c.Bar(t.ID); ok {
			jt.Bar = &jsonBar{X: b.X, Y: b.Y, Width: b.Width, ProgressWidth: b.ProgressWidth}
		}
		export.Tasks = append(export.Tasks, jt)
	}
	for _, v := range c.Invalid() {
		export.Invalid = append(export.Invalid, jsonSkip{ID: v.TaskID, Reason: v.Reason})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
