package gantt

import (
	"log"
	"time"

	"golang.org/x/text/language"
)

// PopupMode selects the pointer gesture that opens task details.
type PopupMode string

const (
	PopupOnClick PopupMode = "click"
	PopupOnHover PopupMode = "hover"
)

// IgnorePredicate reports whether a day is excluded. An error makes the
// day count as not ignored.
type IgnorePredicate func(day time.Time) (bool, error)

// IgnoreRule describes the days excluded from durations and movement.
type IgnoreRule struct {
	Weekends bool
	Dates    []time.Time
	Func     IgnorePredicate
}

// PopupTrigger carries what a popup collaborator needs to place itself.
type PopupTrigger struct {
	Task   *Task
	X, Y   float64
	Target Handle
}

// Popup renders task details outside the chart.
type Popup interface {
	Show(PopupTrigger)
	Hide()
}

// Events are the chart's notifications. Nil callbacks are skipped.
type Events struct {
	DateChange     func(t *Task, start, end time.Time)
	ProgressChange func(t *Task, progress int)
	ViewChange     func(mode ViewMode)
	Click          func(t *Task)
	DoubleClick    func(t *Task)
}

type Options struct {
	ViewMode  string
	ViewModes []ViewMode

	// ColumnWidth, SnapAt and DatePadding override the view mode's values
	// when set.
	ColumnWidth float64
	SnapAt      string
	DatePadding string

	BarHeight         float64
	BarCornerRadius   float64
	Padding           float64
	UpperHeaderHeight float64
	LowerHeaderHeight float64
	ArrowCurve        float64
	HandleWidth       float64

	MoveDependencies bool
	Readonly         bool
	ReadonlyDates    bool
	ReadonlyProgress bool

	InfinitePadding bool
	ExtendByUnits   int
	InclusiveEnd    bool

	Ignore   IgnoreRule
	Holidays []time.Time

	Language language.Tag
	Location *time.Location

	PopupOn PopupMode
	Popup   Popup
	Events  Events

	HoverDelay      time.Duration
	SettleDelay     time.Duration
	JitterThreshold float64

	Logger *log.Logger
	Now    func() time.Time
}

// DefaultOptions returns the options of a Day view chart that moves
// dependents with their predecessors.
func DefaultOptions() Options {
	return Options{
		ViewMode:          "Day",
		BarHeight:         30,
		BarCornerRadius:   3,
		Padding:           18,
		UpperHeaderHeight: 45,
		LowerHeaderHeight: 30,
		ArrowCurve:        5,
		HandleWidth:       8,
		MoveDependencies:  true,
		ExtendByUnits:     10,
		Language:          language.English,
		PopupOn:           PopupOnClick,
		HoverDelay:        250 * time.Millisecond,
		SettleDelay:       time.Second,
		JitterThreshold:   10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ViewMode == "" {
		o.ViewMode = d.ViewMode
	}
	if o.ViewModes == nil {
		o.ViewModes = DefaultViewModes()
	}
	if o.BarHeight <= 0 {
		o.BarHeight = d.BarHeight
	}
	if o.BarCornerRadius < 0 {
		o.BarCornerRadius = 0
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.UpperHeaderHeight <= 0 {
		o.UpperHeaderHeight = d.UpperHeaderHeight
	}
	if o.LowerHeaderHeight <= 0 {
		o.LowerHeaderHeight = d.LowerHeaderHeight
	}
	if o.ArrowCurve < 0 {
		o.ArrowCurve = 0
	}
	if o.HandleWidth <= 0 {
		o.HandleWidth = d.HandleWidth
	}
	if o.ExtendByUnits <= 0 {
		o.ExtendByUnits = d.ExtendByUnits
	}
	if o.Language == language.Und {
		o.Language = d.Language
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.PopupOn == "" {
		o.PopupOn = d.PopupOn
	}
	if o.HoverDelay <= 0 {
		o.HoverDelay = d.HoverDelay
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = d.SettleDelay
	}
	if o.JitterThreshold <= 0 {
		o.JitterThreshold = d.JitterThreshold
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// HeaderHeight is the space above the first row.
func (o Options) HeaderHeight() float64 {
	return o.UpperHeaderHeight + o.LowerHeaderHeight + 10
}
