package gantt

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

func tasksWithDeps(deps map[string][]string, order ...string) []*Task {
	out := make([]*Task, len(order))
	for i, id := range order {
		out[i] = &Task{ID: id, Dependencies: deps[id]}
	}
	return out
}

func TestDescendantsDiamond(t *testing.T) {
	g := BuildGraph(tasksWithDeps(map[string][]string{
		"B": {"A"},
		"C": {"A"},
		"D": {"B", "C"},
	}, "A", "B", "C", "D"))

	got := g.Descendants("A")
	want := []string{"B", "C", "D"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Descendants(A) = %v, want %v", got, want)
	}
	if deps := g.Dependents("A"); strings.Join(deps, ",") != "B,C" {
		t.Errorf("Dependents(A) = %v", deps)
	}
	if preds := g.Predecessors("D"); strings.Join(preds, ",") != "B,C" {
		t.Errorf("Predecessors(D) = %v", preds)
	}
	if len(g.Edges()) != 4 {
		t.Errorf("Edges = %v", g.Edges())
	}
}

func TestDescendantsCycle(t *testing.T) {
	g := BuildGraph(tasksWithDeps(map[string][]string{
		"A": {"C"},
		"B": {"A"},
		"C": {"B"},
	}, "A", "B", "C"))
	got := g.Descendants("A")
	if strings.Join(got, ",") != "B,C" {
		t.Fatalf("Descendants(A) = %v", got)
	}
	if g.Descendants("missing") != nil {
		t.Fatal("unknown id should have no descendants")
	}
}

func TestGraphSkipsUnknownIDs(t *testing.T) {
	g := BuildGraph(tasksWithDeps(map[string][]string{"B": {"ghost", "A"}}, "A", "B"))
	if preds := g.Predecessors("B"); len(preds) != 1 || preds[0] != "A" {
		t.Fatalf("Predecessors(B) = %v", preds)
	}
}

// ==================== Arrows ====================

func TestRouteElbow(t *testing.T) {
	from := &Bar{X: 0, Y: 0, Width: 100, Height: 20}
	to := &Bar{X: 200, Y: 40, Width: 50, Height: 20}
	p := Route(from, to, RouteOptions{Curve: 5, Padding: 18})

	want := "M 100 10 L 145 10 A 5 5 0 0 1 150 15 L 150 45 A 5 5 0 0 0 155 50 L 200 50 " + arrowHead
	if got := p.String(); got != want {
		t.Fatalf("path =\n%s\nwant\n%s", got, want)
	}
	if p.Start() != (Point{100, 10}) || p.End() != (Point{200, 50}) {
		t.Fatalf("endpoints %v %v", p.Start(), p.End())
	}
}

func TestRouteStraight(t *testing.T) {
	from := &Bar{X: 0, Y: 0, Width: 100, Height: 20}
	to := &Bar{X: 200, Y: 0, Width: 50, Height: 20}
	if got := Route(from, to, RouteOptions{Curve: 5}).String(); got != "M 100 10 L 150 10 L 200 10 "+arrowHead {
		t.Fatalf("path = %s", got)
	}
}

func TestRouteOverlapping(t *testing.T) {
	from := &Bar{X: 0, Y: 0, Width: 100, Height: 20}
	to := &Bar{X: 50, Y: 40, Width: 50, Height: 20}
	p := Route(from, to, RouteOptions{Curve: 5, Padding: 18})

	want := []Point{{100, 10}, {109, 10}, {109, 29}, {41, 29}, {41, 50}, {50, 50}}
	if len(p.Points) != len(want) {
		t.Fatalf("points = %v", p.Points)
	}
	for i := range want {
		if p.Points[i] != want[i] {
			t.Fatalf("points = %v, want %v", p.Points, want)
		}
	}
	s := p.String()
	if !strings.HasPrefix(s, "M 100 10 ") || !strings.HasSuffix(s, "L 50 50 "+arrowHead) {
		t.Fatalf("path = %s", s)
	}
	if strings.Count(s, " A ") != 4 {
		t.Fatalf("expected four rounded corners: %s", s)
	}
}

// ==================== Tracker ====================

func TestRegionAtBoundaries(t *testing.T) {
	tr := NewTracker(IgnoreRule{Dates: []time.Time{date(2024, 1, 3)}})
	scale := Scale{Unit: dates.Day, Step: 1, ColumnWidth: 45, Start: date(2024, 1, 1)}
	if err := tr.Compute(scale, date(2024, 1, 10)); err != nil {
		t.Fatal(err)
	}
	if got := tr.Positions(); len(got) != 1 || got[0] != 90 {
		t.Fatalf("Positions = %v", got)
	}
	tests := []struct {
		px   float64
		dir  Direction
		want bool
	}{
		{90, Forward, false},
		{100, Forward, true},
		{135, Forward, true},
		{90, Backward, true},
		{134, Backward, true},
		{135, Backward, false},
		{200, Forward, false},
	}
	for _, tt := range tests {
		if _, ok := tr.RegionAt(tt.px, tt.dir); ok != tt.want {
			t.Errorf("RegionAt(%v, %v) = %v, want %v", tt.px, tt.dir, ok, tt.want)
		}
	}
	if w := tr.WidthIn(0, 90); w != 0 {
		t.Errorf("WidthIn(0, 90) = %v", w)
	}
	if w := tr.WidthIn(0, 91); w != 45 {
		t.Errorf("WidthIn(0, 91) = %v", w)
	}
}

func TestTrackerCoarseScaleHasNoPositions(t *testing.T) {
	tr := NewTracker(IgnoreRule{Weekends: true})
	scale := Scale{Unit: dates.Day, Step: 7, ColumnWidth: 140, Start: date(2024, 1, 1)}
	if err := tr.Compute(scale, date(2024, 2, 1)); err != nil {
		t.Fatal(err)
	}
	if len(tr.Positions()) != 0 {
		t.Fatalf("Positions = %v", tr.Positions())
	}
	if !tr.Ignored(date(2024, 1, 6)) {
		t.Fatal("Saturday should still count as ignored")
	}
}
