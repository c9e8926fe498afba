package gantt

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	dates    map[string][2]time.Time
	progress map[string]int
	clicks   []string
	doubles  []string
}

func newRecorder() *recorder {
	return &recorder{dates: map[string][2]time.Time{}, progress: map[string]int{}}
}

func (r *recorder) events() Events {
	return Events{
		DateChange:     func(t *Task, start, end time.Time) { r.dates[t.ID] = [2]time.Time{start, end} },
		ProgressChange: func(t *Task, p int) { r.progress[t.ID] = p },
		Click:          func(t *Task) { r.clicks = append(r.clicks, t.ID) },
		DoubleClick:    func(t *Task) { r.doubles = append(r.doubles, t.ID) },
	}
}

func drag(t *testing.T, c *Chart, id string, h Handle, dx float64) {
	t.Helper()
	b := mustBar(t, c, id)
	x, y := b.X+b.Width/2, b.Y+b.Height/2
	if err := c.PointerDown(id, h, x, y); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if err := c.PointerMove(x+dx, y); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if err := c.PointerUp(x+dx, y); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}
}

// weekdayTasks spans Mon 1 Jan to Sun 28 Jan 2024 so every weekend in
// between is tracked.
func weekdayTasks(extra ...Task) []Task {
	return append([]Task{{ID: "range", Start: "2024-01-01", End: "2024-01-28"}}, extra...)
}

// ==================== Moving ====================

func TestDragMovesDependents(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "t2", Start: "2024-01-05", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, func(o *Options) { o.Events = rec.events() })

	b1, b2 := mustBar(t, c, "t1"), mustBar(t, c, "t2")
	x1, x2 := b1.X, b2.X

	if err := c.PointerDown("t1", HandleBody, 20, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(110, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if c.State() != Dragging {
		t.Fatalf("State = %v", c.State())
	}
	if b1.X-x1 != 90 || b2.X-x2 != 90 {
		t.Fatalf("deltas %v and %v, want 90", b1.X-x1, b2.X-x2)
	}
	if err := c.PointerUp(110, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if c.State() != Idle {
		t.Fatalf("State after release = %v", c.State())
	}
	want := map[string][2]time.Time{
		"t1": {date(2024, 1, 3), date(2024, 1, 7)},
		"t2": {date(2024, 1, 7), date(2024, 1, 12)},
	}
	for id, w := range want {
		got := rec.dates[id]
		if !got[0].Equal(w[0]) || !got[1].Equal(w[1]) {
			t.Errorf("%s: DateChange %v, want %v", id, got, w)
		}
		task, _ := c.Task(id)
		if !task.Begin.Equal(w[0]) || task.Start != w[0].Format("2006-01-02") {
			t.Errorf("%s: task not committed: %v %q", id, task.Begin, task.Start)
		}
	}
	if len(rec.progress) != 0 {
		t.Errorf("unexpected progress changes %v", rec.progress)
	}
}

func TestDragWithoutMoveDependencies(t *testing.T) {
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "t2", Start: "2024-01-08", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, func(o *Options) { o.MoveDependencies = false })
	x2 := mustBar(t, c, "t2").X
	drag(t, c, "t1", HandleBody, 45)
	if got := mustBar(t, c, "t2").X; got != x2 {
		t.Fatalf("dependent moved to %v", got)
	}
}

func TestDragBeforePredecessorIsRejected(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "t2", Start: "2024-01-08", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, func(o *Options) { o.Events = rec.events() })

	b2 := mustBar(t, c, "t2")
	before := *b2
	drag(t, c, "t2", HandleBody, -180)

	b2 = mustBar(t, c, "t2")
	if b2.X != before.X || b2.Width != before.Width {
		t.Fatalf("geometry changed: %+v -> %+v", before, *b2)
	}
	if _, ok := rec.dates["t2"]; ok {
		t.Fatal("no date change expected")
	}
	task, _ := c.Task("t2")
	if !task.Begin.Equal(date(2024, 1, 8)) {
		t.Fatalf("Begin = %v", task.Begin)
	}
}

func TestDragSkipsWeekend(t *testing.T) {
	c, _ := newTestChart(t, weekdayTasks(Task{ID: "a", Start: "2024-01-01", End: "2024-01-03"}), func(o *Options) {
		o.Ignore.Weekends = true
	})
	// Sat 6 Jan starts at 225; landing there moves on to Monday.
	if got := c.Snap(225, 0, false); got != 315 {
		t.Errorf("forward snap = %v, want 315", got)
	}
	// moving left off Sunday 7 Jan lands on Friday
	if got := c.Snap(-45, 315, false); got != -135 {
		t.Errorf("backward snap = %v, want -135", got)
	}
	// a right edge ending on Saturday moves on to the end of Monday
	if got := c.Snap(45, 225, true); got != 135 {
		t.Errorf("trailing snap = %v, want 135", got)
	}

	drag(t, c, "a", HandleBody, 225)
	task, _ := c.Task("a")
	if !task.Begin.Equal(date(2024, 1, 8)) || !task.Finish.Equal(date(2024, 1, 10)) {
		t.Fatalf("dates = %v - %v", task.Begin, task.Finish)
	}
}

func TestSnapIsIdempotent(t *testing.T) {
	for _, mode := range []string{"Day", "Week", "Hour"} {
		c, _ := newTestChart(t, weekdayTasks(Task{ID: "a", Start: "2024-01-09", End: "2024-01-11"}), func(o *Options) {
			o.Ignore.Weekends = true
			o.ViewMode = mode
		})
		b := mustBar(t, c, "a")
		for dx := -400.0; dx <= 400; dx += 7 {
			for _, trailing := range []bool{false, true} {
				edge := b.X
				if trailing {
					edge = b.EndX()
				}
				once := c.Snap(dx, edge, trailing)
				twice := c.Snap(once, edge, trailing)
				if !approx(once, twice) {
					t.Errorf("%s: Snap(%v) = %v but Snap(Snap) = %v", mode, dx, once, twice)
				}
			}
		}
	}
}

func TestSnapGrid(t *testing.T) {
	tests := []struct {
		mode string
		want float64
	}{
		{"Day", 45},
		{"Week", 20},
		{"Hour", 45},
	}
	for _, tt := range tests {
		c, _ := newTestChart(t, weekdayTasks(), func(o *Options) { o.ViewMode = tt.mode })
		if got := c.SnapGrid(); !approx(got, tt.want) {
			t.Errorf("%s: SnapGrid = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

// ==================== Resizing ====================

func TestResizeRight(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "t2", Start: "2024-01-08", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, func(o *Options) { o.Events = rec.events() })
	x2 := mustBar(t, c, "t2").X

	drag(t, c, "t1", HandleRight, 47)

	got := rec.dates["t1"]
	if !got[0].Equal(date(2024, 1, 1)) || !got[1].Equal(date(2024, 1, 6)) {
		t.Fatalf("DateChange = %v", got)
	}
	if b := mustBar(t, c, "t1"); b.Width != 225 {
		t.Errorf("Width = %v", b.Width)
	}
	if mustBar(t, c, "t2").X != x2 {
		t.Error("resizing the end must not move dependents")
	}
}

func TestResizeLeftMovesDependents(t *testing.T) {
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-02", End: "2024-01-06"},
		{ID: "t2", Start: "2024-01-08", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, nil)
	b1, b2 := mustBar(t, c, "t1"), mustBar(t, c, "t2")
	x1, w1, x2 := b1.X, b1.Width, b2.X

	if err := c.PointerDown("t1", HandleLeft, b1.X+2, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(b1.X+2+45, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if c.State() != ResizingLeft {
		t.Fatalf("State = %v", c.State())
	}
	if b1.X != x1+45 || b1.Width != w1-45 || b2.X != x2+45 {
		t.Fatalf("geometry %v/%v/%v", b1.X, b1.Width, b2.X)
	}
	// shrinking to nothing skips the frame
	if err := c.PointerMove(b1.X+2+400, b1.Y+5); err != nil {
		t.Fatal(err)
	}
	if b1.Width != w1-45 {
		t.Fatalf("Width = %v after an impossible frame", b1.Width)
	}
	if err := c.PointerUp(0, 0); err != nil {
		t.Fatal(err)
	}
	task, _ := c.Task("t1")
	if !task.Begin.Equal(date(2024, 1, 3)) || !task.Finish.Equal(date(2024, 1, 6)) {
		t.Fatalf("dates = %v - %v", task.Begin, task.Finish)
	}
}

func TestProgressDragSkipsWeekend(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, weekdayTasks(Task{ID: "a", Start: "2024-01-01", End: "2024-01-15"}), func(o *Options) {
		o.Ignore.Weekends = true
		o.Events = rec.events()
	})
	b := mustBar(t, c, "a")
	if err := c.PointerDown("a", HandleProgress, b.X, b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(b.X+250, b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	if !approx(b.ProgressWidth, 340) {
		t.Fatalf("ProgressWidth = %v, want 340", b.ProgressWidth)
	}
	if err := c.PointerMove(b.X+2000, b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	if b.ProgressWidth != b.Width {
		t.Fatalf("ProgressWidth = %v, want clamp at %v", b.ProgressWidth, b.Width)
	}
	// coming back from the right, Saturday is skipped towards Friday
	if err := c.PointerMove(b.X+250, b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	if !approx(b.ProgressWidth, 205) {
		t.Fatalf("ProgressWidth = %v, want 205", b.ProgressWidth)
	}
	if err := c.PointerUp(b.X+250, b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	// 205 working pixels of 450
	if got := rec.progress["a"]; got != 45 {
		t.Fatalf("ProgressChange = %d, want 45", got)
	}
	if _, ok := rec.dates["a"]; ok {
		t.Fatal("progress drag must not change dates")
	}
}

func TestProgressDragHoldsEdgeWithoutHorizontalTravel(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, weekdayTasks(Task{ID: "a", Start: "2024-01-01", End: "2024-01-15"}), func(o *Options) {
		o.Ignore.Weekends = true
		o.Events = rec.events()
	})
	b := mustBar(t, c, "a")
	y := b.Y + b.Height
	if err := c.PointerDown("a", HandleProgress, b.X, y); err != nil {
		t.Fatal(err)
	}
	// lands on Saturday 6 Jan and is pushed on to Monday
	if err := c.PointerMove(b.X+250, y); err != nil {
		t.Fatal(err)
	}
	if !approx(b.ProgressWidth, 340) {
		t.Fatalf("ProgressWidth = %v, want 340", b.ProgressWidth)
	}
	for i := 1; i <= 3; i++ {
		if err := c.PointerMove(b.X+250, y+float64(i)); err != nil {
			t.Fatal(err)
		}
		if !approx(b.ProgressWidth, 340) {
			t.Fatalf("frame %d: ProgressWidth = %v, want 340", i, b.ProgressWidth)
		}
	}
	if err := c.PointerUp(b.X+250, y+3); err != nil {
		t.Fatal(err)
	}
	// 250 working pixels of 450
	if got := rec.progress["a"]; got != 55 {
		t.Fatalf("ProgressChange = %d, want 55", got)
	}
}

// ==================== Clicks, settle, cancel ====================

func TestClickWithinJitter(t *testing.T) {
	rec := newRecorder()
	popup := &fakePopup{}
	c, _ := newTestChart(t, []Task{{ID: "a", Start: "2024-01-01", End: "2024-01-05"}}, func(o *Options) {
		o.Events = rec.events()
		o.Popup = popup
	})
	b := mustBar(t, c, "a")
	if err := c.PointerDown("a", HandleBody, 50, b.Y+5); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(55, b.Y+8); err != nil {
		t.Fatal(err)
	}
	if c.State() != PendingDrag {
		t.Fatalf("State = %v", c.State())
	}
	if err := c.PointerUp(55, b.Y+8); err != nil {
		t.Fatal(err)
	}
	if len(rec.clicks) != 1 || len(rec.dates) != 0 {
		t.Fatalf("clicks %v dates %v", rec.clicks, rec.dates)
	}
	if len(popup.shown) != 1 || popup.shown[0].Task.ID != "a" || popup.shown[0].Y != b.Y+b.Height {
		t.Fatalf("popup = %+v", popup.shown)
	}
	// the next gesture hides it
	if err := c.PointerDown("a", HandleBody, 50, b.Y+5); err != nil {
		t.Fatal(err)
	}
	if popup.hidden != 1 {
		t.Fatalf("hidden = %d", popup.hidden)
	}
}

func TestSettleSuppressesClicks(t *testing.T) {
	rec := newRecorder()
	c, clock := newTestChart(t, []Task{{ID: "a", Start: "2024-01-01", End: "2024-01-05"}}, func(o *Options) {
		o.Events = rec.events()
	})
	drag(t, c, "a", HandleBody, 45)

	b := mustBar(t, c, "a")
	_ = c.PointerDown("a", HandleBody, b.X+5, b.Y+5)
	_ = c.PointerUp(b.X+5, b.Y+5)
	if err := c.DoubleClick("a"); err != nil {
		t.Fatal(err)
	}
	if len(rec.clicks) != 0 || len(rec.doubles) != 0 {
		t.Fatalf("clicks %v doubles %v during settle", rec.clicks, rec.doubles)
	}

	clock.Advance(1500 * time.Millisecond)
	_ = c.PointerDown("a", HandleBody, b.X+5, b.Y+5)
	_ = c.PointerUp(b.X+5, b.Y+5)
	_ = c.DoubleClick("a")
	if len(rec.clicks) != 1 || len(rec.doubles) != 1 {
		t.Fatalf("clicks %v doubles %v after settle", rec.clicks, rec.doubles)
	}
}

func TestCancelRestoresGeometry(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, []Task{
		{ID: "t1", Start: "2024-01-01", End: "2024-01-05", Progress: 20},
		{ID: "t2", Start: "2024-01-05", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, func(o *Options) { o.Events = rec.events() })
	b1, b2 := mustBar(t, c, "t1"), mustBar(t, c, "t2")
	o1, o2 := *b1, *b2
	path := c.Arrows()[0].Path.String()

	_ = c.PointerDown("t1", HandleBody, 10, b1.Y+5)
	_ = c.PointerMove(200, b1.Y+5)
	if c.Arrows()[0].Path.String() == path {
		t.Fatal("arrow not rerouted while dragging")
	}
	if err := c.Cancel(); err != nil {
		t.Fatal(err)
	}
	if b1.X != o1.X || b1.ProgressWidth != o1.ProgressWidth || b2.X != o2.X {
		t.Fatalf("not restored: %+v %+v", *b1, *b2)
	}
	if c.Arrows()[0].Path.String() != path {
		t.Fatal("arrow not restored")
	}
	if len(rec.dates) != 0 {
		t.Fatal("cancel must not commit")
	}
	if err := c.Cancel(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestOneSessionAtATime(t *testing.T) {
	c, _ := newTestChart(t, []Task{
		{ID: "a", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "b", Start: "2024-01-02", End: "2024-01-05"},
	}, nil)
	if err := c.PointerDown("a", HandleBody, 10, 70); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerDown("b", HandleBody, 10, 120); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("second PointerDown: %v", err)
	}
	if err := c.ChangeScale("Week"); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("ChangeScale: %v", err)
	}
	if err := c.Refresh(nil); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("Refresh: %v", err)
	}
	if err := c.UpdateTask("a", TaskPatch{}); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("UpdateTask: %v", err)
	}
	if err := c.PointerUp(10, 70); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerUp(10, 70); !errors.Is(err, ErrNoSession) {
		t.Fatalf("PointerUp without session: %v", err)
	}
	if err := c.PointerDown("ghost", HandleBody, 0, 0); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("unknown bar: %v", err)
	}
}

func TestReadonlyTurnsDragIntoClick(t *testing.T) {
	rec := newRecorder()
	c, _ := newTestChart(t, []Task{{ID: "a", Start: "2024-01-01", End: "2024-01-05", Progress: 10}}, func(o *Options) {
		o.ReadonlyDates = true
		o.Events = rec.events()
	})
	b := mustBar(t, c, "a")
	x := b.X
	_ = c.PointerDown("a", HandleBody, 50, b.Y+5)
	if err := c.PointerMove(140, b.Y+5); !errors.Is(err, ErrReadonly) {
		t.Fatalf("PointerMove: %v", err)
	}
	_ = c.PointerUp(140, b.Y+5)
	if b.X != x || len(rec.clicks) != 1 {
		t.Fatalf("X = %v clicks = %v", b.X, rec.clicks)
	}

	// progress stays editable
	if err := c.PointerDown("a", HandleProgress, b.ProgressEndX(), b.Y+b.Height); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(b.ProgressEndX()+40, b.Y+b.Height); err != nil {
		t.Fatalf("progress move: %v", err)
	}
	if c.State() != ResizingProgress {
		t.Fatalf("State = %v", c.State())
	}
}

func TestReadonlyReportedOncePerGesture(t *testing.T) {
	c, _ := newTestChart(t, []Task{{ID: "a", Start: "2024-01-01", End: "2024-01-05"}}, func(o *Options) {
		o.Readonly = true
	})
	b := mustBar(t, c, "a")
	y := b.Y + 5
	if err := c.PointerDown("a", HandleBody, 50, y); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(140, y); !errors.Is(err, ErrReadonly) {
		t.Fatalf("first move: %v", err)
	}
	for _, x := range []float64{150, 160, 40} {
		if err := c.PointerMove(x, y); err != nil {
			t.Fatalf("move to %v: %v", x, err)
		}
	}
	if c.State() != PendingDrag {
		t.Fatalf("State = %v", c.State())
	}
	if err := c.PointerUp(40, y); err != nil {
		t.Fatal(err)
	}

	// a new gesture reports again
	if err := c.PointerDown("a", HandleBody, 50, y); err != nil {
		t.Fatal(err)
	}
	if err := c.PointerMove(140, y); !errors.Is(err, ErrReadonly) {
		t.Fatalf("next gesture: %v", err)
	}
}

func TestHoverPopup(t *testing.T) {
	popup := &fakePopup{}
	c, clock := newTestChart(t, []Task{{ID: "a", Start: "2024-01-01", End: "2024-01-05"}}, func(o *Options) {
		o.PopupOn = PopupOnHover
		o.Popup = popup
	})
	c.PointerEnter("a", 30, 70)
	c.Tick(clock.Now().Add(100 * time.Millisecond))
	if len(popup.shown) != 0 {
		t.Fatal("popup before the hover delay")
	}
	c.Tick(clock.Now().Add(300 * time.Millisecond))
	if len(popup.shown) != 1 || popup.shown[0].X != 30 {
		t.Fatalf("shown = %+v", popup.shown)
	}
	c.Tick(clock.Now().Add(time.Second))
	if len(popup.shown) != 1 {
		t.Fatal("popup shown twice")
	}
	c.PointerLeave("a")
	if popup.hidden != 1 {
		t.Fatalf("hidden = %d", popup.hidden)
	}
}
