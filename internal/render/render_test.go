package render

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/ganttr/internal/dom"
	"github.com/sadopc/ganttr/internal/gantt"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type popup struct {
	shown  []string
	hidden int
}

func (p *popup) Show(t gantt.PopupTrigger) { p.shown = append(p.shown, t.Task.ID) }

func (p *popup) Hide() { p.hidden++ }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestView mounts two dependent tasks: t1 at x=0 w=180 and t2 right
// after it, both in the first rows of a Day view.
func newTestView(t *testing.T, mutate func(*gantt.Options)) (*View, *gantt.Chart, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	opts := gantt.DefaultOptions()
	opts.DatePadding = "0d"
	opts.Logger = log.New(io.Discard, "", 0)
	opts.Now = clk.Now
	opts.Ignore = gantt.IgnoreRule{Dates: []time.Time{date(2024, 1, 8)}}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := gantt.New([]gantt.Task{
		{ID: "t1", Name: "Design", Start: "2024-01-01", End: "2024-01-05"},
		{ID: "t2", Name: "Build", Start: "2024-01-05", End: "2024-01-10", Dependencies: []string{"t1"}},
	}, opts)
	if err != nil {
		t.Fatalf("gantt.New: %v", err)
	}
	doc := dom.Create("body", nil, nil)
	dom.Create("div", map[string]any{"id": "gantt"}, doc)
	v, err := Mount(doc, "#gantt", c)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v, c, clk
}

func barRect(t *testing.T, v *View, id string) *dom.Element {
	t.Helper()
	w, ok := v.Wrapper(id)
	if !ok {
		t.Fatalf("no wrapper for %q", id)
	}
	r := w.Query("rect.bar")
	if r == nil {
		t.Fatalf("no rect.bar for %q", id)
	}
	return r
}

// ==================== Mount ====================

func TestMountMissingTarget(t *testing.T) {
	_, c, _ := newTestView(t, nil)
	_, err := Mount(dom.Create("body", nil, nil), "#nope", c)
	var ref *gantt.ReferenceError
	if !errors.As(err, &ref) || ref.Selector != "#nope" {
		t.Fatalf("err = %v, want ReferenceError", err)
	}
}

func TestMountLayers(t *testing.T) {
	v, c, _ := newTestView(t, func(o *gantt.Options) {
		o.Holidays = []time.Time{date(2024, 1, 2)}
	})
	root := v.Root()
	if root.Parent == nil || root.Parent.Attr("id") != "gantt" {
		t.Fatal("svg not mounted under #gantt")
	}
	if root.Attr("width") != num(c.Width()) || root.Attr("height") != num(c.Height()) {
		t.Fatalf("svg size %s x %s", root.Attr("width"), root.Attr("height"))
	}

	counts := []struct {
		sel  string
		want int
	}{
		{"g.bar-wrapper", 2},
		{"rect.grid-row", 2},
		{"path[data-from=t1][data-to=t2]", 1},
		{"rect.ignored-bar", len(c.Tracker().Positions())},
		{"rect.holiday-highlight", 1},
		{"rect.today-highlight", 1},
		{"text.lower-text", len(c.Dates())},
		{"rect.handle.left", 2},
		{"circle.handle.progress", 2},
	}
	for _, tt := range counts {
		if got := len(root.QueryAll(tt.sel)); got != tt.want {
			t.Errorf("%s: %d elements, want %d", tt.sel, got, tt.want)
		}
	}
	if len(c.Tracker().Positions()) != 1 {
		t.Fatalf("positions = %v", c.Tracker().Positions())
	}

	r := barRect(t, v, "t1")
	if dom.X(r) != 0 || dom.Width(r) != 180 {
		t.Fatalf("t1 rect x=%v w=%v", dom.X(r), dom.Width(r))
	}
	b, _ := c.Bar("t2")
	if r2 := barRect(t, v, "t2"); dom.X(r2) != b.X || dom.Y(r2) != b.Y {
		t.Fatalf("t2 rect (%v,%v), bar (%v,%v)", dom.X(r2), dom.Y(r2), b.X, b.Y)
	}
}

func TestWriteSVG(t *testing.T) {
	v, _, _ := newTestView(t, nil)
	var buf bytes.Buffer
	if err := v.WriteSVG(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`<?xml version="1.0"`, `<svg `, `xmlns="http://www.w3.org/2000/svg"`, `data-id="t1"`, `>Design</text>`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

// ==================== Pointer events ====================

func TestDragThroughDispatch(t *testing.T) {
	var moved []string
	v, c, _ := newTestView(t, func(o *gantt.Options) {
		o.Events.DateChange = func(t *gantt.Task, start, end time.Time) { moved = append(moved, t.ID) }
	})
	y := 94.0 + 15

	if err := v.Dispatch("pointerdown", 90, y, false); err != nil {
		t.Fatal(err)
	}
	if s, ok := c.Session(); !ok || s.Handle != gantt.HandleBody || s.TargetID != "t1" {
		t.Fatalf("session = %+v", s)
	}
	if err := v.Dispatch("pointermove", 180, y, false); err != nil {
		t.Fatal(err)
	}
	if w, _ := v.Wrapper("t1"); !w.HasClass("active") {
		t.Fatal("dragged bar should be active")
	}
	if r := barRect(t, v, "t1"); dom.X(r) != 90 {
		t.Fatalf("live x = %v", dom.X(r))
	}
	if err := v.Dispatch("pointerup", 180, y, false); err != nil {
		t.Fatal(err)
	}

	if c.State() != gantt.Idle {
		t.Fatalf("state = %v", c.State())
	}
	if strings.Join(moved, ",") != "t1,t2" {
		t.Fatalf("DateChange = %v", moved)
	}
	task, _ := c.Task("t1")
	if !task.Begin.Equal(date(2024, 1, 3)) {
		t.Fatalf("t1 begins %v", task.Begin)
	}
	// t2 left the range, so the chart was laid out again from Jan 3
	b, _ := c.Bar("t1")
	if r := barRect(t, v, "t1"); dom.X(r) != b.X || b.X != 0 {
		t.Fatalf("committed rect x = %v, bar x = %v", dom.X(r), b.X)
	}
	if w, _ := v.Wrapper("t1"); w.HasClass("active") {
		t.Fatal("bar still active after release")
	}
	// the release outside a gesture is ignored
	if err := v.Dispatch("pointerup", 0, 0, false); err != nil {
		t.Fatal(err)
	}
}

func TestResizeHandleAndCancel(t *testing.T) {
	v, c, _ := newTestView(t, nil)
	y := 94.0 + 15

	v.Dispatch("pointerdown", 175, y, false)
	if s, _ := c.Session(); s.Handle != gantt.HandleRight {
		t.Fatalf("handle = %v", s.Handle)
	}
	v.Dispatch("pointermove", 220, y, false)
	if r := barRect(t, v, "t1"); dom.Width(r) != 225 {
		t.Fatalf("live width = %v", dom.Width(r))
	}
	if err := v.Cancel(); err != nil {
		t.Fatal(err)
	}
	if r := barRect(t, v, "t1"); dom.Width(r) != 180 {
		t.Fatalf("width after cancel = %v", dom.Width(r))
	}
}

func TestAltGrabsProgress(t *testing.T) {
	v, c, _ := newTestView(t, nil)
	v.Dispatch("pointerdown", 90, 109, true)
	if s, _ := c.Session(); s.Handle != gantt.HandleProgress {
		t.Fatalf("handle = %v", s.Handle)
	}
}

func TestDoubleClick(t *testing.T) {
	var doubles []string
	v, _, _ := newTestView(t, func(o *gantt.Options) {
		o.Events.DoubleClick = func(t *gantt.Task) { doubles = append(doubles, t.ID) }
	})
	if err := v.Dispatch("dblclick", 90, 109, false); err != nil {
		t.Fatal(err)
	}
	if len(doubles) != 1 || doubles[0] != "t1" {
		t.Fatalf("doubles = %v", doubles)
	}
}

func TestReadonlyDragIsRefused(t *testing.T) {
	var clicks []string
	v, c, _ := newTestView(t, func(o *gantt.Options) {
		o.Readonly = true
		o.Events.Click = func(t *gantt.Task) { clicks = append(clicks, t.ID) }
	})
	if w, _ := v.Wrapper("t1"); w.Query(".handle") != nil {
		t.Fatal("readonly bars have no handles")
	}
	v.Dispatch("pointerdown", 90, 109, false)
	if err := v.Dispatch("pointermove", 180, 109, false); !errors.Is(err, gantt.ErrReadonly) {
		t.Fatalf("err = %v, want ErrReadonly", err)
	}
	v.Dispatch("pointerup", 180, 109, false)
	if b, _ := c.Bar("t1"); b.X != 0 {
		t.Fatalf("readonly bar moved to %v", b.X)
	}
	if len(clicks) != 1 {
		t.Fatalf("clicks = %v", clicks)
	}
}

func TestHoverPopup(t *testing.T) {
	p := &popup{}
	v, c, clk := newTestView(t, func(o *gantt.Options) {
		o.PopupOn = gantt.PopupOnHover
		o.Popup = p
	})
	v.Dispatch("pointermove", 90, 109, false)
	clk.now = clk.now.Add(300 * time.Millisecond)
	c.Tick(clk.now)
	if len(p.shown) != 1 || p.shown[0] != "t1" {
		t.Fatalf("shown = %v", p.shown)
	}
	v.Dispatch("pointermove", 500, 10, false)
	if p.hidden != 1 {
		t.Fatalf("hidden = %d", p.hidden)
	}
}
