package gantt

import (
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// Scale maps dates to pixels relative to the chart start.
type Scale struct {
	Unit        dates.Unit
	Step        float64
	ColumnWidth float64
	Start       time.Time
}

// ToX returns the pixel offset of t. Months and years count whole units, the
// same way the inverse adds them, so the mapping does not drift.
func (s Scale) ToX(t time.Time) float64 {
	return dates.Diff(t, s.Start, s.Unit) / s.Step * s.ColumnWidth
}

// ToDate is the inverse of ToX.
func (s Scale) ToDate(px float64) time.Time {
	return dates.Add(s.Start, px/s.ColumnWidth*s.Step, s.Unit)
}

// Columns converts a number of days into a pixel width.
func (s Scale) Columns(days float64) float64 {
	return dates.ConvertScales(dates.Duration{Amount: days, Unit: dates.Day}, s.Unit) / s.Step * s.ColumnWidth
}

// DayWidth is the pixel width of one day.
func (s Scale) DayWidth() float64 {
	return s.Columns(1)
}
