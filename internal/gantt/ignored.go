package gantt

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// Direction selects the boundary convention of Tracker.RegionAt.
type Direction int

const (
	// Forward matches px in (start, start+span].
	Forward Direction = iota
	// Backward matches px in [start, start+span).
	Backward
)

const epsilon = 1e-6

// Region is an ignored pixel interval [Start, End).
type Region struct {
	Start, End float64
}

// Tracker owns the ignored days of a chart and their pixel positions.
type Tracker struct {
	rule      IgnoreRule
	explicit  map[string]bool
	cache     map[string]bool
	span      float64
	positions []float64
	err       error
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NewTracker builds a tracker for rule. Compute must run before positions
// are available.
func NewTracker(rule IgnoreRule) *Tracker {
	t := &Tracker{
		rule:     rule,
		explicit: make(map[string]bool, len(rule.Dates)),
		cache:    make(map[string]bool),
	}
	for _, d := range rule.Dates {
		t.explicit[dayKey(d)] = true
	}
	return t
}

// Compute recomputes the ignored positions for every day in
// [scale.Start, end]. Positions are only tracked while one day spans at
// least a column; coarser scales keep an empty list. The first predicate
// failure is returned, and the failing day counts as not ignored.
func (t *Tracker) Compute(scale Scale, end time.Time) error {
	t.span = scale.DayWidth()
	t.cache = make(map[string]bool)
	t.positions = t.positions[:0]
	t.err = nil

	if t.span+epsilon < scale.ColumnWidth {
		for day := dates.StartOf(scale.Start, dates.Day); !day.After(end); day = day.AddDate(0, 0, 1) {
			t.Ignored(day)
		}
		return t.err
	}
	for day := dates.StartOf(scale.Start, dates.Day); !day.After(end); day = day.AddDate(0, 0, 1) {
		if t.Ignored(day) {
			t.positions = append(t.positions, scale.ToX(day))
		}
	}
	return t.err
}

// Err returns the first predicate failure since the last Compute.
func (t *Tracker) Err() error { return t.err }

// Ignored reports whether the day containing d is excluded.
func (t *Tracker) Ignored(d time.Time) bool {
	key := dayKey(d)
	if v, ok := t.cache[key]; ok {
		return v
	}
	v := t.evaluate(d)
	t.cache[key] = v
	return v
}

func (t *Tracker) evaluate(d time.Time) bool {
	if t.explicit[dayKey(d)] {
		return true
	}
	if t.rule.Weekends {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	if t.rule.Func == nil {
		return false
	}
	ok, err := t.call(dates.StartOf(d, dates.Day))
	if err != nil {
		if t.err == nil {
			t.err = fmt.Errorf("ignore predicate on %s: %w", dayKey(d), err)
		}
		return false
	}
	return ok
}

func (t *Tracker) call(day time.Time) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return t.rule.Func(day)
}

// Positions returns the ordered pixel starts of the ignored days.
func (t *Tracker) Positions() []float64 {
	out := make([]float64, len(t.positions))
	copy(out, t.positions)
	return out
}

// Span is the pixel width of one ignored day.
func (t *Tracker) Span() float64 { return t.span }

// RegionAt returns the ignored interval px falls in under the given
// boundary convention.
func (t *Tracker) RegionAt(px float64, dir Direction) (Region, bool) {
	if len(t.positions) == 0 {
		return Region{}, false
	}
	// the candidate is the last position before px (Forward) or at or
	// before px (Backward)
	var i int
	if dir == Forward {
		i = sort.Search(len(t.positions), func(k int) bool { return t.positions[k] >= px-epsilon })
	} else {
		i = sort.Search(len(t.positions), func(k int) bool { return t.positions[k] > px+epsilon })
	}
	if i == 0 {
		return Region{}, false
	}
	p := t.positions[i-1]
	if dir == Forward {
		if px > p+epsilon && px <= p+t.span+epsilon {
			return Region{Start: p, End: p + t.span}, true
		}
		return Region{}, false
	}
	if px >= p-epsilon && px < p+t.span-epsilon {
		return Region{Start: p, End: p + t.span}, true
	}
	return Region{}, false
}

// WidthIn sums the spans of ignored days starting in [from, to).
func (t *Tracker) WidthIn(from, to float64) float64 {
	if to <= from {
		return 0
	}
	lo := sort.Search(len(t.positions), func(k int) bool { return t.positions[k] >= from-epsilon })
	hi := sort.Search(len(t.positions), func(k int) bool { return t.positions[k] >= to-epsilon })
	return float64(hi-lo) * t.span
}
