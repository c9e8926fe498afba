package gantt

import (
	"fmt"
	"math"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// State is the phase of the pointer state machine.
type State int

const (
	Idle State = iota
	PendingDrag
	Dragging
	ResizingLeft
	ResizingRight
	ResizingProgress
)

var stateNames = [...]string{"idle", "pending", "dragging", "resizing-left", "resizing-right", "resizing-progress"}

func (s State) String() string {
	if s < Idle || s > ResizingProgress {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Handle is the part of a bar a gesture started on.
type Handle int

const (
	HandleBody Handle = iota
	HandleLeft
	HandleRight
	HandleProgress
)

func (h Handle) String() string {
	switch h {
	case HandleLeft:
		return "left"
	case HandleRight:
		return "right"
	case HandleProgress:
		return "progress"
	}
	return "body"
}

func (h Handle) state() State {
	switch h {
	case HandleLeft:
		return ResizingLeft
	case HandleRight:
		return ResizingRight
	case HandleProgress:
		return ResizingProgress
	}
	return Dragging
}

// Origin is a bar's geometry when the gesture started.
type Origin struct {
	X, Width, ProgressWidth float64
}

// DragSession is the bookkeeping of one gesture.
type DragSession struct {
	TargetID string
	Handle   Handle
	State    State
	Affected []string // target first, then its dependents breadth first
	Origins  map[string]Origin
	StartX   float64
	StartY   float64

	lastX   float64
	dir     float64 // last horizontal direction of travel
	refused bool    // ErrReadonly already reported
}

type hoverState struct {
	id       string
	x, y     float64
	deadline time.Time
}

// State returns the current phase of the state machine.
func (c *Chart) State() State {
	if c.session == nil {
		return Idle
	}
	return c.session.State
}

// Session returns a copy of the active session.
func (c *Chart) Session() (DragSession, bool) {
	if c.session == nil {
		return DragSession{}, false
	}
	return *c.session, true
}

func (c *Chart) settling() bool {
	return c.opts.Now().Before(c.settleUntil)
}

// PointerDown starts a gesture on a bar. The affected set is the target
// plus, when moving dates with MoveDependencies, every descendant that has
// a bar.
func (c *Chart) PointerDown(id string, handle Handle, x, y float64) error {
	if c.session != nil {
		return ErrGestureActive
	}
	if _, ok := c.barByID[id]; !ok {
		return fmt.Errorf("pointer down on %q: %w", id, ErrUnknownTask)
	}
	ids := []string{id}
	if c.opts.MoveDependencies && handle != HandleProgress {
		ids = append(ids, c.graph.Descendants(id)...)
	}
	s := &DragSession{
		TargetID: id,
		Handle:   handle,
		State:    PendingDrag,
		Origins:  make(map[string]Origin, len(ids)),
		StartX:   x,
		StartY:   y,
		lastX:    x,
	}
	for _, aid := range ids {
		b, ok := c.barByID[aid]
		if !ok {
			continue
		}
		s.Affected = append(s.Affected, aid)
		s.Origins[aid] = b.origin()
	}
	c.session = s
	c.hover = hoverState{}
	c.hidePopup()
	return nil
}

func (c *Chart) blocked(st State) bool {
	if c.opts.Readonly {
		return true
	}
	if st == ResizingProgress {
		return c.opts.ReadonlyProgress
	}
	return c.opts.ReadonlyDates
}

// PointerMove advances the active gesture. Without a session it does
// nothing. A move past the jitter threshold that the readonly flags forbid
// leaves the session pending; the first such move returns ErrReadonly and
// later ones return nil.
func (c *Chart) PointerMove(x, y float64) error {
	s := c.session
	if s == nil {
		return nil
	}
	dx, dy := x-s.StartX, y-s.StartY
	if d := sign(x - s.lastX); d != 0 {
		s.dir = d
	}
	s.lastX = x
	if s.State == PendingDrag {
		if math.Abs(dx) < c.opts.JitterThreshold && math.Abs(dy) < c.opts.JitterThreshold {
			return nil
		}
		next := s.Handle.state()
		if c.blocked(next) {
			if s.refused {
				return nil
			}
			s.refused = true
			return ErrReadonly
		}
		s.State = next
	}

	moved := make(map[string]bool, len(s.Affected))
	switch s.State {
	case Dragging:
		o := s.Origins[s.TargetID]
		sdx := c.Snap(dx, o.X, false)
		for _, id := range s.Affected {
			if c.place(id, s.Origins[id].X+sdx, s.Origins[id].Width) {
				moved[id] = true
			}
		}
	case ResizingLeft:
		o := s.Origins[s.TargetID]
		sdx := c.Snap(dx, o.X, false)
		if o.Width-sdx <= 0 {
			return nil
		}
		if c.place(s.TargetID, o.X+sdx, o.Width-sdx) {
			moved[s.TargetID] = true
		}
		for _, id := range s.Affected[1:] {
			if c.place(id, s.Origins[id].X+sdx, s.Origins[id].Width) {
				moved[id] = true
			}
		}
	case ResizingRight:
		o := s.Origins[s.TargetID]
		sdx := c.Snap(dx, o.X+o.Width, true)
		if o.Width+sdx <= 0 {
			return nil
		}
		if c.place(s.TargetID, o.X, o.Width+sdx) {
			moved[s.TargetID] = true
		}
	case ResizingProgress:
		b := c.barByID[s.TargetID]
		o := s.Origins[s.TargetID]
		pw := clamp(o.ProgressWidth+dx, 0, b.Width)
		pw = c.skipIgnored(b, pw, s.dir)
		b.ProgressWidth = clamp(pw, 0, b.Width)
	}
	if len(moved) > 0 {
		c.rerouteTouching(moved)
	}
	return nil
}

// place moves a bar to x with width w. A bar may not move left of the end
// of one of its predecessors; such a frame is rejected for that bar.
func (c *Chart) place(id string, x, w float64) bool {
	b := c.barByID[id]
	if b == nil {
		return false
	}
	if math.Abs(x-b.X) < epsilon && math.Abs(w-b.Width) < epsilon {
		return false
	}
	if x < b.X-epsilon {
		for _, pid := range c.graph.Predecessors(id) {
			if p := c.barByID[pid]; p != nil && x < p.EndX()-epsilon {
				return false
			}
		}
	}
	b.X, b.Width = x, w
	b.ProgressWidth = c.progressWidth(b)
	return true
}

func sign(v float64) float64 {
	switch {
	case v > epsilon:
		return 1
	case v < -epsilon:
		return -1
	}
	return 0
}

// SnapGrid is the pixel size of one snapping increment.
func (c *Chart) SnapGrid() float64 {
	snap := c.mode.SnapAt
	if snap.Amount <= 0 {
		return c.scale.ColumnWidth
	}
	ratio := dates.ConvertScales(c.mode.Step, snap.Unit) / snap.Amount
	if ratio <= 0 {
		return c.scale.ColumnWidth
	}
	return c.scale.ColumnWidth / ratio
}

// Snap rounds a drag delta to the grid and then moves it a column at a
// time in the direction of travel while the dragged edge sits on an ignored
// day. edge is the edge's position when the gesture began; trailing edges
// (the right side of a bar) use the Forward convention, leading edges the
// Backward one.
func (c *Chart) Snap(dx, edge float64, trailing bool) float64 {
	grid := c.SnapGrid()
	sdx := math.Round(dx/grid) * grid
	if math.Abs(sdx) < epsilon {
		return 0
	}
	dir := Backward
	if trailing {
		dir = Forward
	}
	step := sign(dx) * c.scale.ColumnWidth
	limit := len(c.tracker.positions)*c.columnsPerDay() + 1
	for i := 0; i < limit; i++ {
		if _, ok := c.tracker.RegionAt(edge+sdx, dir); !ok {
			break
		}
		sdx += step
	}
	return sdx
}

// PointerUp ends the gesture. A gesture that never left PendingDrag is a
// click; anything else commits the new geometry as dates and progress.
func (c *Chart) PointerUp(x, y float64) error {
	s := c.session
	if s == nil {
		return ErrNoSession
	}
	c.session = nil

	if s.State == PendingDrag {
		c.click(s, x)
		return nil
	}

	outOfRange := false
	for _, id := range s.Affected {
		b := c.barByID[id]
		if b == nil {
			continue
		}
		if c.commitBar(b, s.Origins[id]) {
			outOfRange = true
		}
	}
	if outOfRange {
		c.setup()
	} else {
		relaid := make(map[string]bool, len(s.Affected))
		for _, id := range s.Affected {
			if b := c.barByID[id]; b != nil {
				c.layoutBar(b)
				relaid[id] = true
			}
		}
		c.rerouteTouching(relaid)
	}
	c.settleUntil = c.opts.Now().Add(c.opts.SettleDelay)
	return nil
}

// commitBar turns a bar's final geometry into task dates and progress,
// notifying listeners of what changed. It reports whether the new dates
// fall outside the chart.
func (c *Chart) commitBar(b *Bar, o Origin) bool {
	t := b.Task
	xMoved := math.Abs(b.X-o.X) >= epsilon
	endMoved := math.Abs(b.EndX()-(o.X+o.Width)) >= epsilon

	if xMoved || endMoved {
		begin, finish := t.Begin, t.Finish
		if xMoved {
			begin = c.scale.ToDate(b.X).Round(time.Second)
		}
		switch {
		case !endMoved:
		case math.Abs(b.Width-o.Width) < epsilon:
			finish = dates.Add(begin, dates.Diff(t.Finish, t.Begin, dates.Day), dates.Day)
		default:
			finish = dates.Add(begin, b.Width/c.scale.ColumnWidth*c.scale.Step, c.scale.Unit).Round(time.Second)
		}
		if finish.After(begin) && (!begin.Equal(t.Begin) || !finish.Equal(t.Finish)) {
			c.commitDates(t, begin, finish)
			if fn := c.opts.Events.DateChange; fn != nil {
				fn(t, begin, finish)
			}
		}
	}

	if math.Abs(b.ProgressWidth-o.ProgressWidth) >= epsilon {
		if p := c.progressFrom(b); p != t.Progress {
			t.Progress = p
			if fn := c.opts.Events.ProgressChange; fn != nil {
				fn(t, p)
			}
		}
	}
	return t.Begin.Before(c.start) || t.Finish.After(c.end)
}

func (c *Chart) click(s *DragSession, x float64) {
	if c.settling() {
		return
	}
	t := c.byID[s.TargetID]
	if t == nil {
		return
	}
	if fn := c.opts.Events.Click; fn != nil {
		fn(t)
	}
	if c.opts.PopupOn == PopupOnClick && s.Handle != HandleProgress {
		c.showPopup(t, x)
	}
}

// Cancel aborts the gesture and restores every affected bar.
func (c *Chart) Cancel() error {
	s := c.session
	if s == nil {
		return ErrNoSession
	}
	c.session = nil
	restored := make(map[string]bool, len(s.Affected))
	for _, id := range s.Affected {
		if b := c.barByID[id]; b != nil {
			b.restore(s.Origins[id])
			restored[id] = true
		}
	}
	c.rerouteTouching(restored)
	return nil
}

// DoubleClick notifies a double click on a bar unless a drag just
// committed.
func (c *Chart) DoubleClick(id string) error {
	if c.settling() {
		return nil
	}
	t, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("double click on %q: %w", id, ErrUnknownTask)
	}
	if fn := c.opts.Events.DoubleClick; fn != nil {
		fn(t)
	}
	return nil
}

// PointerEnter arms the hover timer for a bar.
func (c *Chart) PointerEnter(id string, x, y float64) {
	if c.opts.PopupOn != PopupOnHover || c.session != nil {
		return
	}
	if _, ok := c.byID[id]; !ok {
		return
	}
	if c.hover.id == id {
		c.hover.x, c.hover.y = x, y
		return
	}
	c.hover = hoverState{id: id, x: x, y: y, deadline: c.opts.Now().Add(c.opts.HoverDelay)}
}

// PointerLeave disarms the hover timer and hides a hover popup.
func (c *Chart) PointerLeave(id string) {
	if c.hover.id != id {
		return
	}
	c.hover = hoverState{}
	if c.opts.PopupOn == PopupOnHover {
		c.hidePopup()
	}
}

// Tick fires the hover timer. Hosts call it from their event loop.
func (c *Chart) Tick(now time.Time) {
	h := c.hover
	if h.id == "" || h.deadline.IsZero() || now.Before(h.deadline) || c.session != nil {
		return
	}
	c.hover.deadline = time.Time{}
	if t := c.byID[h.id]; t != nil {
		c.showPopup(t, h.x)
	}
}

func (c *Chart) showPopup(t *Task, x float64) {
	if c.opts.Popup == nil {
		return
	}
	b := c.barByID[t.ID]
	if b == nil {
		return
	}
	c.opts.Popup.Show(PopupTrigger{Task: t, X: x, Y: b.Y + b.Height, Target: HandleBody})
	c.popupOpen = true
}

// HidePopup closes an open popup.
func (c *Chart) HidePopup() { c.hidePopup() }

func (c *Chart) hidePopup() {
	if !c.popupOpen || c.opts.Popup == nil {
		return
	}
	c.opts.Popup.Hide()
	c.popupOpen = false
}
