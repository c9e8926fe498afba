package gantt

import "math"

// Bar is the geometry of one task. It is mutated in place while dragging.
type Bar struct {
	Task          *Task
	X             float64
	Y             float64
	Width         float64
	Height        float64
	ProgressWidth float64
}

func (b *Bar) EndX() float64 { return b.X + b.Width }

func (b *Bar) ProgressEndX() float64 { return b.X + b.ProgressWidth }

func (b *Bar) origin() Origin {
	return Origin{X: b.X, Width: b.Width, ProgressWidth: b.ProgressWidth}
}

func (b *Bar) restore(o Origin) {
	b.X, b.Width, b.ProgressWidth = o.X, o.Width, o.ProgressWidth
}

// RowY is the top of the bar in row index.
func (c *Chart) RowY(index int) float64 {
	o := c.opts
	return o.HeaderHeight() + o.Padding/2 + float64(index)*(o.BarHeight+o.Padding)
}

func (c *Chart) layoutBar(b *Bar) {
	t := b.Task
	measure(t, c.tracker)
	b.X = c.scale.ToX(t.Begin)
	b.Width = c.scale.Columns(t.Span())
	b.Y = c.RowY(t.Index)
	b.Height = c.opts.BarHeight
	b.ProgressWidth = c.progressWidth(b)
}

// progressWidth turns the task's progress into a width that skips the
// ignored columns inside the filled segment.
func (c *Chart) progressWidth(b *Bar) float64 {
	if b.Width <= 0 || b.Task.Progress <= 0 {
		return 0
	}
	available := b.Width - c.tracker.WidthIn(b.X, b.EndX())
	if available <= 0 {
		return c.dayBoundary(b, b.Width*float64(b.Task.Progress)/100)
	}
	raw := available * float64(b.Task.Progress) / 100
	pw := raw
	for i := 0; i <= len(c.tracker.positions); i++ {
		next := raw + c.tracker.WidthIn(b.X, b.X+pw)
		if math.Abs(next-pw) < epsilon {
			break
		}
		pw = next
	}
	pw = c.skipIgnored(b, pw, 1)
	return clamp(pw, 0, b.Width)
}

// dayBoundary returns the edge nearest pw that does not fall inside an
// ignored day: the bar's own ends or the start or end of one of its days.
// In the sub-day views a day spans several columns, so whole columns are
// not enough.
func (c *Chart) dayBoundary(b *Bar, pw float64) float64 {
	best := 0.0
	if b.Width-pw < pw {
		best = b.Width
	}
	span := c.tracker.Span()
	for _, p := range c.tracker.positions {
		for _, edge := range [2]float64{p - b.X, p + span - b.X} {
			if edge < 0 || edge > b.Width {
				continue
			}
			if math.Abs(edge-pw) < math.Abs(best-pw) {
				best = edge
			}
		}
	}
	return best
}

// skipIgnored moves a progress edge a column at a time in direction sign
// until it leaves every ignored interval or reaches the bar's bounds.
func (c *Chart) skipIgnored(b *Bar, pw float64, sign float64) float64 {
	if pw <= 0 || sign == 0 {
		return pw
	}
	cw := c.scale.ColumnWidth
	for i := 0; i <= len(c.tracker.positions)*c.columnsPerDay(); i++ {
		if pw <= 0 || pw >= b.Width {
			break
		}
		if _, ok := c.tracker.RegionAt(b.X+pw, Forward); !ok {
			break
		}
		pw += sign * cw
	}
	return pw
}

// progressFrom is the inverse of progressWidth.
func (c *Chart) progressFrom(b *Bar) int {
	if b.Width <= 0 {
		return b.Task.Progress
	}
	available := b.Width - c.tracker.WidthIn(b.X, b.EndX())
	if available <= 0 {
		return clampProgress(int(math.Floor(b.ProgressWidth/b.Width*100 + epsilon)))
	}
	done := b.ProgressWidth - c.tracker.WidthIn(b.X, b.X+b.ProgressWidth)
	return clampProgress(int(math.Floor(done/available*100 + epsilon)))
}

func (c *Chart) columnsPerDay() int {
	n := int(math.Ceil(c.tracker.Span()/c.scale.ColumnWidth - epsilon))
	if n < 1 {
		return 1
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
