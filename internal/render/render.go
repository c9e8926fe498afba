// Package render draws a chart into a dom tree as SVG elements and routes
// pointer events from that tree back into the chart's state machine.
package render

import (
	"errors"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sadopc/ganttr/internal/dom"
	"github.com/sadopc/ganttr/internal/gantt"
)

const svgNS = "http://www.w3.org/2000/svg"

// labelCharWidth approximates the advance of one label glyph.
const labelCharWidth = 7

const stylesheet = `
.grid-background { fill: none; }
.grid-row { fill: #ffffff; }
.grid-row:nth-child(even) { fill: #f5f5f5; }
.row-line { stroke: #ebeff2; }
.tick { stroke: #e0e0e0; stroke-width: 0.2; }
.holiday-highlight { fill: #fff7e6; }
.today-highlight { fill: #fcf8e3; opacity: 0.5; }
.ignored-bar { fill: url(#diagonalHatch); }
.upper-text { font-size: 12px; fill: #555; }
.lower-text { font-size: 12px; fill: #333; text-anchor: middle; }
.arrow { fill: none; stroke: #666; stroke-width: 1.4; }
.bar { fill: #b8c2cc; stroke: #8d99a6; stroke-width: 0; }
.bar-progress { fill: #a3a3ff; }
.bar-label { fill: #fff; dominant-baseline: central; text-anchor: middle; font-size: 12px; }
.bar-label.big { fill: #555; text-anchor: start; }
.handle { fill: #ddd; cursor: ew-resize; opacity: 0; }
.bar-wrapper:hover .handle, .bar-wrapper.active .handle { opacity: 1; }
`

// View is a chart mounted into a dom tree.
type View struct {
	chart *gantt.Chart
	root  *dom.Element

	grid, date, arrow, bar *dom.Element
	wrappers               map[string]*dom.Element

	width, height float64
	hover         string
	err           error
}

// Mount creates the chart's <svg> under the first element of doc matching
// selector.
func Mount(doc *dom.Element, selector string, c *gantt.Chart) (*View, error) {
	target := doc
	if !dom.Matches(doc, selector) {
		target = doc.Query(selector)
	}
	if target == nil {
		return nil, &gantt.ReferenceError{Selector: selector}
	}
	v := &View{
		chart: c,
		root:  dom.Create("svg", map[string]any{"xmlns": svgNS, "class": "gantt"}, target),
	}
	v.Build()
	if err := v.listen(); err != nil {
		return nil, err
	}
	return v, nil
}

// Root returns the <svg> element.
func (v *View) Root() *dom.Element { return v.root }

// Wrapper returns the group holding a task's bar.
func (v *View) Wrapper(id string) (*dom.Element, bool) {
	w, ok := v.wrappers[id]
	return w, ok
}

// Build redraws every layer from the chart.
func (v *View) Build() {
	c := v.chart
	v.root.Clear()
	v.width, v.height = c.Width(), c.Height()
	v.root.SetAttr("width", v.width)
	v.root.SetAttr("height", v.height)
	v.root.SetAttr("viewBox", "0 0 "+num(v.width)+" "+num(v.height))

	dom.Create("style", map[string]any{"text": stylesheet}, v.root)
	defs := dom.Create("defs", nil, v.root)
	pattern := dom.Create("pattern", map[string]any{
		"id": "diagonalHatch", "patternUnits": "userSpaceOnUse", "width": 4, "height": 4,
	}, defs)
	dom.Create("path", map[string]any{
		"d": "M-1,1 l2,-2 M0,4 l4,-4 M3,5 l2,-2", "style": "stroke:grey; stroke-width:0.3",
	}, pattern)

	v.grid = dom.Create("g", map[string]any{"class": "grid", "pointer-events": "none"}, v.root)
	v.date = dom.Create("g", map[string]any{"class": "date", "pointer-events": "none"}, v.root)
	v.arrow = dom.Create("g", map[string]any{"class": "arrow", "pointer-events": "none"}, v.root)
	v.bar = dom.Create("g", map[string]any{"class": "bar"}, v.root)

	v.drawGrid()
	v.drawDates()
	v.drawArrows()
	v.drawBars()
}

// Sync re-applies live bar geometry and arrow paths after a frame. A chart
// whose range or task list changed is rebuilt.
func (v *View) Sync() {
	c := v.chart
	if c.Width() != v.width || c.Height() != v.height || len(c.Bars()) != len(v.wrappers) {
		v.Build()
		return
	}
	active := v.active()
	for _, b := range c.Bars() {
		w, ok := v.wrappers[b.Task.ID]
		if !ok {
			v.Build()
			return
		}
		v.fillBar(w, b, active[b.Task.ID])
	}
	v.arrow.Clear()
	v.drawArrows()
}

func (v *View) active() map[string]bool {
	s, ok := v.chart.Session()
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(s.Affected))
	for _, id := range s.Affected {
		out[id] = true
	}
	return out
}

func (v *View) drawGrid() {
	c := v.chart
	o := c.Options()
	header := o.HeaderHeight()
	rowHeight := o.BarHeight + o.Padding

	dom.Create("rect", map[string]any{
		"class": "grid-background", "x": 0, "y": 0, "width": v.width, "height": v.height,
	}, v.grid)
	rows := dom.Create("g", map[string]any{"class": "rows"}, v.grid)
	for i := range c.Tasks() {
		y := header + float64(i)*rowHeight
		dom.Create("rect", map[string]any{
			"class": "grid-row", "x": 0, "y": y, "width": v.width, "height": rowHeight,
		}, rows)
		dom.Create("line", map[string]any{
			"class": "row-line", "x1": 0, "y1": y + rowHeight, "x2": v.width, "y2": y + rowHeight,
		}, rows)
	}

	cw := c.Scale().ColumnWidth
	for i := range c.Dates() {
		x := float64(i) * cw
		dom.Create("path", map[string]any{
			"class": "tick", "d": "M " + num(x) + " " + num(header) + " v " + num(v.height-header),
		}, v.grid)
	}

	s := c.Scale()
	dayWidth := s.DayWidth()
	for d := c.Start(); d.Before(c.End()); d = d.AddDate(0, 0, 1) {
		if !c.IsHoliday(d) {
			continue
		}
		dom.Create("rect", map[string]any{
			"class": "holiday-highlight", "x": s.ToX(d), "y": header,
			"width": dayWidth, "height": v.height - header,
		}, v.grid)
	}

	tracker := c.Tracker()
	for _, p := range tracker.Positions() {
		dom.Create("rect", map[string]any{
			"class": "ignored-bar", "x": p, "y": header,
			"width": tracker.Span(), "height": v.height - header,
		}, v.grid)
	}

	today := o.Now().In(o.Location)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, o.Location)
	if !today.Before(c.Start()) && today.Before(c.End()) {
		dom.Create("rect", map[string]any{
			"class": "today-highlight", "x": s.ToX(today), "y": 0,
			"width": dayWidth, "height": v.height,
		}, v.grid)
	}
}

func (v *View) drawDates() {
	c := v.chart
	o := c.Options()
	mode := c.ViewMode()
	cw := c.Scale().ColumnWidth

	dom.Create("rect", map[string]any{
		"class": "grid-header", "x": 0, "y": 0, "width": v.width, "height": o.HeaderHeight(),
	}, v.date)
	var prev time.Time
	for i, d := range c.Dates() {
		upper, lower := mode.Labels(d, prev)
		prev = d
		x := float64(i) * cw
		if upper != "" {
			dom.Create("text", map[string]any{
				"class": "upper-text", "x": x, "y": o.UpperHeaderHeight / 2, "text": upper,
			}, v.date)
		}
		if lower != "" {
			dom.Create("text", map[string]any{
				"class": "lower-text", "x": x + cw/2, "y": o.UpperHeaderHeight + o.LowerHeaderHeight/2, "text": lower,
			}, v.date)
		}
	}
}

func (v *View) drawArrows() {
	for _, a := range v.chart.Arrows() {
		dom.Create("path", map[string]any{
			"class": "arrow", "d": a.Path.String(), "data-from": a.From, "data-to": a.To,
		}, v.arrow)
	}
}

func (v *View) drawBars() {
	v.wrappers = make(map[string]*dom.Element, len(v.chart.Bars()))
	active := v.active()
	for _, b := range v.chart.Bars() {
		w := dom.Create("g", map[string]any{"data-id": b.Task.ID}, v.bar)
		v.wrappers[b.Task.ID] = w
		v.fillBar(w, b, active[b.Task.ID])
	}
}

// fillBar redraws the children of a bar wrapper for the bar's current
// geometry.
func (v *View) fillBar(w *dom.Element, b *gantt.Bar, active bool) {
	c := v.chart
	o := c.Options()
	w.Clear()
	class := "bar-wrapper"
	if b.Task.CustomClass != "" {
		class += " " + b.Task.CustomClass
	}
	if active {
		class += " active"
	}
	w.SetAttr("class", class)

	dom.Create("rect", map[string]any{
		"class": "bar", "x": b.X, "y": b.Y, "width": b.Width, "height": b.Height,
		"rx": o.BarCornerRadius, "ry": o.BarCornerRadius,
	}, w)
	dom.Create("rect", map[string]any{
		"class": "bar-progress", "x": b.X, "y": b.Y, "width": b.ProgressWidth, "height": b.Height,
		"rx": o.BarCornerRadius, "ry": o.BarCornerRadius,
	}, w)

	label := dom.Create("text", map[string]any{
		"class": "bar-label", "x": b.X + b.Width/2, "y": b.Y + b.Height/2, "text": b.Task.Name,
	}, w)
	if float64(utf8.RuneCountInString(b.Task.Name))*labelCharWidth > b.Width {
		label.AddClass("big")
		label.SetAttr("x", b.EndX()+5)
	}

	hw := o.HandleWidth
	if c.HasResizeHandles(b) {
		dom.Create("rect", map[string]any{
			"class": "handle left", "x": b.X + 1, "y": b.Y + 1, "width": hw, "height": b.Height - 2,
		}, w)
		dom.Create("rect", map[string]any{
			"class": "handle right", "x": b.EndX() - hw - 1, "y": b.Y + 1, "width": hw, "height": b.Height - 2,
		}, w)
	}
	if c.HasProgressHandle(b) {
		dom.Create("circle", map[string]any{
			"class": "handle progress", "cx": b.ProgressEndX(), "cy": b.Y + b.Height, "r": hw/2 + 1,
		}, w)
	}
}

// WriteSVG serializes the mounted <svg>.
func (v *View) WriteSVG(w io.Writer) error {
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}
	return dom.WriteXML(w, v.root)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Dispatch feeds a pointer event at chart coordinates into the tree and
// returns the chart's response, if any. Readonly refusals surface as
// gantt.ErrReadonly; gestures on bars are otherwise best effort.
func (v *View) Dispatch(event string, x, y float64, alt bool) error {
	v.err = nil
	dom.Dispatch(v.root, &dom.Event{Type: event, X: x, Y: y, Alt: alt})
	return v.err
}

func (v *View) fail(err error) {
	if err != nil && v.err == nil {
		v.err = err
	}
}

// ignorable reports errors a pointer stream produces in normal use.
func ignorable(err error) bool {
	return errors.Is(err, gantt.ErrNoSession)
}
