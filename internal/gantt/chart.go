// Package gantt is the layout and interaction engine of the timeline chart.
// It maps dates to pixels, lays out bars and dependency arrows, and runs the
// pointer state machine that drags, resizes and adjusts progress.
//
// A Chart is not safe for concurrent use; hosts drive it from a single
// event loop.
package gantt

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// maxColumns bounds the grid so a malformed range cannot run away.
const maxColumns = 100000

type Chart struct {
	opts  Options
	mode  ViewMode
	scale Scale

	start   time.Time
	end     time.Time
	columns []time.Time

	tasks   []*Task
	byID    map[string]*Task
	bars    []*Bar
	barByID map[string]*Bar
	graph   *Graph
	arrows  []*Arrow
	tracker *Tracker

	invalid   []*ValidationError
	ignoreErr error

	holidays map[string]bool

	extendBefore int
	extendAfter  int

	session     *DragSession
	settleUntil time.Time
	hover       hoverState
	popupOpen   bool
}

// New loads tasks and lays out the chart. Invalid tasks are logged and
// excluded; configuration problems are returned as *ConfigurationError.
func New(tasks []Task, opts Options) (*Chart, error) {
	opts = opts.withDefaults()
	mode, err := ResolveViewMode(opts.ViewMode, opts.ViewModes)
	if err != nil {
		return nil, err
	}
	c := &Chart{
		opts:     opts,
		tracker:  NewTracker(opts.Ignore),
		holidays: make(map[string]bool, len(opts.Holidays)),
	}
	for _, h := range opts.Holidays {
		c.holidays[dayKey(h)] = true
	}
	if err := c.setMode(mode); err != nil {
		return nil, err
	}
	if err := c.load(tasks); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chart) setMode(mode ViewMode) error {
	if c.opts.ColumnWidth > 0 {
		mode.ColumnWidth = c.opts.ColumnWidth
	}
	if c.opts.SnapAt != "" {
		snap, err := dates.ParseDuration(c.opts.SnapAt)
		if err != nil {
			return &ConfigurationError{Field: "snap_at", Value: c.opts.SnapAt, Err: err}
		}
		mode.SnapAt = snap
	}
	if c.opts.DatePadding != "" {
		pad, err := dates.ParseDuration(c.opts.DatePadding)
		if err != nil {
			return &ConfigurationError{Field: "padding", Value: c.opts.DatePadding, Err: err}
		}
		mode.Padding = [2]dates.Duration{pad, pad}
	}
	if err := mode.validate(); err != nil {
		return err
	}
	c.mode = mode
	return nil
}

func (c *Chart) load(raw []Task) error {
	tasks := make([]*Task, 0, len(raw))
	byID := make(map[string]*Task, len(raw))
	var invalid []*ValidationError
	for i := range raw {
		t := raw[i]
		err := resolve(&t, c.opts)
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			invalid = append(invalid, verr)
			continue
		case err != nil:
			return fmt.Errorf("load task %q: %w", t.ID, err)
		}
		if _, dup := byID[t.ID]; dup {
			invalid = append(invalid, &ValidationError{TaskID: t.ID, Reason: "duplicate id"})
			continue
		}
		t.Index = len(tasks)
		tasks = append(tasks, &t)
		byID[t.ID] = &t
	}
	for _, v := range invalid {
		c.opts.Logger.Printf("gantt: task %q excluded: %s", v.TaskID, v.Reason)
	}
	c.tasks, c.byID, c.invalid = tasks, byID, invalid
	c.graph = BuildGraph(tasks)
	c.setup()
	return nil
}

// setup recomputes the date range, the ignored positions and every bar
// and arrow.
func (c *Chart) setup() {
	c.setupDates()
	c.ignoreErr = c.tracker.Compute(c.scale, c.end)
	if c.ignoreErr != nil {
		c.opts.Logger.Printf("gantt: %v", c.ignoreErr)
	}

	c.bars = make([]*Bar, len(c.tasks))
	c.barByID = make(map[string]*Bar, len(c.tasks))
	for i, t := range c.tasks {
		b := &Bar{Task: t}
		c.layoutBar(b)
		c.bars[i] = b
		c.barByID[t.ID] = b
	}
	c.buildArrows()
}

func (c *Chart) setupDates() {
	unit := c.mode.Step.Unit
	var lo, hi time.Time
	if len(c.tasks) == 0 {
		lo = dates.StartOf(c.opts.Now().In(c.opts.Location), dates.Day)
		hi = lo.AddDate(0, 0, 1)
	}
	for _, t := range c.tasks {
		if lo.IsZero() || t.Begin.Before(lo) {
			lo = t.Begin
		}
		if hi.IsZero() || t.Finish.After(hi) {
			hi = t.Finish
		}
	}

	before, after := c.mode.Padding[0], c.mode.Padding[1]
	if c.opts.InfinitePadding {
		pad := dates.Duration{Amount: float64(3*c.opts.ExtendByUnits) * c.mode.Step.Amount, Unit: unit}
		before, after = pad, pad
	}
	start := before.SubFrom(dates.StartOf(lo, unit))
	end := after.AddTo(dates.StartOf(hi, unit))
	chunk := float64(c.opts.ExtendByUnits) * c.mode.Step.Amount
	start = dates.Add(start, -float64(c.extendBefore)*chunk, unit)
	end = dates.Add(end, float64(c.extendAfter)*chunk, unit)
	start = dates.StartOf(start, dates.Day)

	c.columns = nil
	cur := start
	for i := 0; i < maxColumns && (!cur.After(end) || cur.Before(hi)); i++ {
		c.columns = append(c.columns, cur)
		cur = c.mode.Step.AddTo(cur)
	}
	c.start, c.end = start, cur
	c.scale = Scale{
		Unit:        unit,
		Step:        c.mode.Step.Amount,
		ColumnWidth: c.mode.ColumnWidth,
		Start:       start,
	}
}

func (c *Chart) buildArrows() {
	c.arrows = nil
	for _, e := range c.graph.Edges() {
		from, to := c.barByID[e[0]], c.barByID[e[1]]
		if from == nil || to == nil {
			continue
		}
		c.arrows = append(c.arrows, &Arrow{From: e[0], To: e[1], Path: Route(from, to, c.routeOptions())})
	}
}

func (c *Chart) routeOptions() RouteOptions {
	return RouteOptions{Curve: c.opts.ArrowCurve, Padding: c.opts.Padding}
}

// rerouteTouching recomputes the arrows with an endpoint in ids.
func (c *Chart) rerouteTouching(ids map[string]bool) {
	for _, a := range c.arrows {
		if ids[a.From] || ids[a.To] {
			a.Path = Route(c.barByID[a.From], c.barByID[a.To], c.routeOptions())
		}
	}
}

// Refresh replaces the task list.
func (c *Chart) Refresh(tasks []Task) error {
	if c.session != nil {
		return ErrGestureActive
	}
	return c.load(tasks)
}

// ChangeScale switches to the named view mode and notifies ViewChange.
func (c *Chart) ChangeScale(name string) error {
	if c.session != nil {
		return ErrGestureActive
	}
	mode, err := ResolveViewMode(name, c.opts.ViewModes)
	if err != nil {
		return err
	}
	if err := c.setMode(mode); err != nil {
		return err
	}
	c.extendBefore, c.extendAfter = 0, 0
	c.setup()
	if fn := c.opts.Events.ViewChange; fn != nil {
		fn(c.mode)
	}
	return nil
}

// ExtendRange grows an infinitely padded chart by ExtendByUnits steps in
// dir (Backward extends the start). It returns how far existing geometry
// moved right.
func (c *Chart) ExtendRange(dir Direction) (float64, error) {
	if c.session != nil {
		return 0, ErrGestureActive
	}
	if !c.opts.InfinitePadding {
		return 0, ErrFixedRange
	}
	before := c.start
	if dir == Backward {
		c.extendBefore++
	} else {
		c.extendAfter++
	}
	c.setup()
	return c.scale.ToX(before), nil
}

// UpdateTask applies patch to the task and re-lays it out. A patch that
// would make the task invalid is rejected and the task is left unchanged.
func (c *Chart) UpdateTask(id string, patch TaskPatch) error {
	if c.session != nil {
		return ErrGestureActive
	}
	t, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("update task %q: %w", id, ErrUnknownTask)
	}
	next := patch.apply(*t)
	next.ID = t.ID
	if err := resolve(&next, c.opts); err != nil {
		return fmt.Errorf("update task %q: %w", id, err)
	}
	depsChanged := !equalStrings(next.Dependencies, t.Dependencies)
	*t = next

	if depsChanged {
		c.graph = BuildGraph(c.tasks)
	}
	if t.Begin.Before(c.start) || t.Finish.After(c.end) {
		c.setup()
		return nil
	}
	c.layoutBar(c.barByID[id])
	if depsChanged {
		c.buildArrows()
	} else {
		c.rerouteTouching(map[string]bool{id: true})
	}
	return nil
}

// commitDates writes new dates into t and rewrites its raw fields to match.
// With InclusiveEnd the raw end names the last day, as it was entered.
func (c *Chart) commitDates(t *Task, begin, finish time.Time) {
	t.Begin, t.Finish = begin, finish
	t.Start, t.End, t.Duration = dates.Canonical(begin), dates.Canonical(c.RawEnd(finish)), ""
	t.StartTime, t.EndTime = time.Time{}, time.Time{}
}

// RawEnd converts an exclusive finish into the end date a task would be
// entered with under the chart's options.
func (c *Chart) RawEnd(finish time.Time) time.Time {
	if c.opts.InclusiveEnd && dates.IsMidnight(finish) {
		return finish.AddDate(0, 0, -1)
	}
	return finish
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Chart) Task(id string) (*Task, bool) {
	t, ok := c.byID[id]
	return t, ok
}

func (c *Chart) Bar(id string) (*Bar, bool) {
	b, ok := c.barByID[id]
	return b, ok
}

func (c *Chart) Tasks() []*Task { return c.tasks }

func (c *Chart) Bars() []*Bar { return c.bars }

func (c *Chart) Arrows() []*Arrow { return c.arrows }

// Dates returns the start of every column.
func (c *Chart) Dates() []time.Time { return c.columns }

func (c *Chart) Start() time.Time { return c.start }

// End is the exclusive end of the last column.
func (c *Chart) End() time.Time { return c.end }

func (c *Chart) Scale() Scale { return c.scale }

func (c *Chart) ViewMode() ViewMode { return c.mode }

func (c *Chart) Options() Options { return c.opts }

func (c *Chart) Tracker() *Tracker { return c.tracker }

func (c *Chart) Graph() *Graph { return c.graph }

// Invalid lists the tasks excluded by the last load.
func (c *Chart) Invalid() []*ValidationError { return c.invalid }

// IgnoreError is the first ignore predicate failure of the last layout.
func (c *Chart) IgnoreError() error { return c.ignoreErr }

// IsHoliday reports whether d is a highlighted holiday.
func (c *Chart) IsHoliday(d time.Time) bool { return c.holidays[dayKey(d)] }

// SetMoveDependencies toggles the dependency cascade for later gestures.
func (c *Chart) SetMoveDependencies(on bool) { c.opts.MoveDependencies = on }

func (c *Chart) Width() float64 {
	return float64(len(c.columns)) * c.scale.ColumnWidth
}

func (c *Chart) Height() float64 {
	o := c.opts
	return o.HeaderHeight() + o.Padding + float64(len(c.tasks))*(o.BarHeight+o.Padding)
}

// HitTest finds the bar and handle under (x, y). The progress handle wins
// over the resize handles, which win over the body.
func (c *Chart) HitTest(x, y float64) (string, Handle, bool) {
	hw := c.opts.HandleWidth
	for i := len(c.bars) - 1; i >= 0; i-- {
		b := c.bars[i]
		if c.progressHandle(b) && math.Abs(x-b.ProgressEndX()) <= hw/2+1 && math.Abs(y-(b.Y+b.Height)) <= hw/2+1 {
			return b.Task.ID, HandleProgress, true
		}
		if y < b.Y || y > b.Y+b.Height || x < b.X || x > b.EndX() {
			continue
		}
		if c.resizeHandles(b) {
			switch {
			case x >= b.EndX()-hw:
				return b.Task.ID, HandleRight, true
			case x <= b.X+hw:
				return b.Task.ID, HandleLeft, true
			}
		}
		return b.Task.ID, HandleBody, true
	}
	return "", HandleBody, false
}

// resizeHandles reports whether b shows its date handles.
func (c *Chart) resizeHandles(b *Bar) bool {
	return !c.opts.Readonly && !c.opts.ReadonlyDates && b.Width >= 3*c.opts.HandleWidth
}

// progressHandle reports whether b shows its progress handle.
func (c *Chart) progressHandle(b *Bar) bool {
	return !c.opts.Readonly && !c.opts.ReadonlyProgress && b.Width > 0
}

// HasResizeHandles and HasProgressHandle expose handle visibility to
// renderers.
func (c *Chart) HasResizeHandles(b *Bar) bool { return c.resizeHandles(b) }

func (c *Chart) HasProgressHandle(b *Bar) bool { return c.progressHandle(b) }
