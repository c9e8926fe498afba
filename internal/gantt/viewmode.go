package gantt

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// LabelFunc returns the header text for the column starting at d. prev is
// the previous column's date, or the zero time for the first column.
type LabelFunc func(d, prev time.Time) string

// ViewMode is a named scale preset.
type ViewMode struct {
	Name        string
	Step        dates.Duration
	ColumnWidth float64
	Padding     [2]dates.Duration // before, after
	SnapAt      dates.Duration    // zero amount means one step
	DateFormat  string
	Upper       LabelFunc
	Lower       LabelFunc
}

// Labels returns the upper and lower header text for a column.
func (m ViewMode) Labels(d, prev time.Time) (upper, lower string) {
	if m.Upper != nil {
		upper = m.Upper(d, prev)
	}
	if m.Lower != nil {
		lower = m.Lower(d, prev)
	} else {
		lower = dates.Format(d, m.DateFormat)
	}
	return upper, lower
}

func (m ViewMode) validate() error {
	if m.Step.Amount <= 0 {
		return &ConfigurationError{Field: "step", Value: m.Step.String(), Err: fmt.Errorf("view mode %q: step must be positive", m.Name)}
	}
	if m.ColumnWidth <= 0 {
		return &ConfigurationError{Field: "column width", Value: fmt.Sprint(m.ColumnWidth), Err: fmt.Errorf("view mode %q: column width must be positive", m.Name)}
	}
	return nil
}

func every(amount float64, unit dates.Unit) dates.Duration {
	return dates.Duration{Amount: amount, Unit: unit}
}

func format(layout string) LabelFunc {
	return func(t, _ time.Time) string { return dates.Format(t, layout) }
}

// changed returns a label that is shown only when the unit differs from the
// previous column.
func changed(layout string, same func(a, b time.Time) bool) LabelFunc {
	return func(t, prev time.Time) string {
		if !prev.IsZero() && same(t, prev) {
			return ""
		}
		return dates.Format(t, layout)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sameYear(a, b time.Time) bool { return a.Year() == b.Year() }

func sameDecade(a, b time.Time) bool { return a.Year()/10 == b.Year()/10 }

// DefaultViewModes returns the built-in presets, finest first.
func DefaultViewModes() []ViewMode {
	return []ViewMode{
		{
			Name:        "Hour",
			Step:        every(1, dates.Hour),
			ColumnWidth: 45,
			Padding:     [2]dates.Duration{every(7, dates.Day), every(7, dates.Day)},
			DateFormat:  "YYYY-MM-DD HH:mm",
			Upper:       changed("D MMMM", sameDay),
			Lower:       format("HH"),
		},
		{
			Name:        "Quarter Day",
			Step:        every(6, dates.Hour),
			ColumnWidth: 45,
			Padding:     [2]dates.Duration{every(7, dates.Day), every(7, dates.Day)},
			DateFormat:  "YYYY-MM-DD HH:mm",
			Upper:       changed("D MMM", sameDay),
			Lower:       format("HH"),
		},
		{
			Name:        "Half Day",
			Step:        every(12, dates.Hour),
			ColumnWidth: 45,
			Padding:     [2]dates.Duration{every(14, dates.Day), every(14, dates.Day)},
			DateFormat:  "YYYY-MM-DD HH:mm",
			Upper:       changed("D MMM", sameDay),
			Lower:       format("HH"),
		},
		{
			Name:        "Day",
			Step:        every(1, dates.Day),
			ColumnWidth: 45,
			Padding:     [2]dates.Duration{every(7, dates.Day), every(7, dates.Day)},
			DateFormat:  "YYYY-MM-DD",
			Upper:       changed("MMMM", sameMonth),
			Lower:       changed("D", sameDay),
		},
		{
			Name:        "Week",
			Step:        every(7, dates.Day),
			ColumnWidth: 140,
			Padding:     [2]dates.Duration{every(1, dates.Month), every(1, dates.Month)},
			SnapAt:      every(1, dates.Day),
			DateFormat:  "YYYY-MM-DD",
			Upper:       changed("MMMM", sameMonth),
			Lower: func(t, prev time.Time) string {
				if prev.IsZero() || !sameMonth(t, prev) {
					return dates.Format(t, "D MMM")
				}
				return dates.Format(t, "D")
			},
		},
		{
			Name:        "Month",
			Step:        every(1, dates.Month),
			ColumnWidth: 120,
			Padding:     [2]dates.Duration{every(2, dates.Month), every(2, dates.Month)},
			SnapAt:      every(7, dates.Day),
			DateFormat:  "YYYY-MM",
			Upper:       changed("YYYY", sameYear),
			Lower:       format("MMMM"),
		},
		{
			Name:        "Year",
			Step:        every(1, dates.Year),
			ColumnWidth: 120,
			Padding:     [2]dates.Duration{every(2, dates.Year), every(2, dates.Year)},
			SnapAt:      every(30, dates.Day),
			DateFormat:  "YYYY",
			Upper: func(t, prev time.Time) string {
				if !prev.IsZero() && sameDecade(t, prev) {
					return ""
				}
				return fmt.Sprintf("%d", t.Year()/10*10)
			},
			Lower: format("YYYY"),
		},
	}
}

// ViewModeNames lists the names of modes in order.
func ViewModeNames(modes []ViewMode) []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.Name
	}
	return names
}

// ResolveViewMode finds a mode by name, ignoring case.
func ResolveViewMode(name string, modes []ViewMode) (ViewMode, error) {
	for _, m := range modes {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			if err := m.validate(); err != nil {
				return ViewMode{}, err
			}
			return m, nil
		}
	}
	return ViewMode{}, &ConfigurationError{
		Field: "view mode",
		Value: name,
		Err:   fmt.Errorf("expected one of %s", strings.Join(ViewModeNames(modes), ", ")),
	}
}
