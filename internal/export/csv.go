package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/ganttr/internal/gantt"
)

func ToCSV(c *gantt.Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"ID", "Name", "Start", "End", "Days", "Working days", "Ignored days", "Progress", "Dependencies", "X", "Width"}); err != nil {
		return err
	}

	for _, t := range c.Tasks() {
		var x, width string
		if b, ok := c.Bar(t.ID); ok {
			x, width = formatFloat(b.X), formatFloat(b.Width)
		}
		row := []string{
			t.ID,
			t.Name,
			formatTime(t.Begin),
			formatTime(t.Finish),
			formatFloat(t.Span()),
			formatFloat(t.ActualDuration),
			formatFloat(t.IgnoredDuration),
			strconv.Itoa(t.Progress),
			strings.Join(t.Dependencies, ","),
			x,
			width,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
