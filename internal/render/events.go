package render

import (
	"github.com/sadopc/ganttr/internal/dom"
	"github.com/sadopc/ganttr/internal/gantt"
)

func (v *View) listen() error {
	if err := dom.On(v.root, "pointerdown", ".bar-wrapper, .handle", v.onPointerDown); err != nil {
		return err
	}
	if err := dom.On(v.root, "dblclick", ".bar-wrapper", v.onDoubleClick); err != nil {
		return err
	}
	if err := dom.On(v.root, "pointermove", "", v.onPointerMove); err != nil {
		return err
	}
	return dom.On(v.root, "pointerup", "", v.onPointerUp)
}

// handleOf maps the hit element to the gesture it starts. Alt on the body
// grabs the progress handle so hosts without a fine pointer can reach it.
func (v *View) handleOf(target *dom.Element, alt bool) gantt.Handle {
	switch {
	case target.HasClass("handle") && target.HasClass("progress"):
		return gantt.HandleProgress
	case target.HasClass("handle") && target.HasClass("left"):
		return gantt.HandleLeft
	case target.HasClass("handle") && target.HasClass("right"):
		return gantt.HandleRight
	case alt:
		return gantt.HandleProgress
	}
	return gantt.HandleBody
}

func (v *View) onPointerDown(ev *dom.Event) {
	ev.StopPropagation()
	w := ev.Current.Closest(".bar-wrapper")
	if w == nil {
		return
	}
	h := v.handleOf(ev.Target, ev.Alt)
	if h == gantt.HandleProgress && !ev.Target.HasClass("progress") {
		if b, ok := v.chart.Bar(w.Attr("data-id")); !ok || !v.chart.HasProgressHandle(b) {
			h = gantt.HandleBody
		}
	}
	v.fail(v.chart.PointerDown(w.Attr("data-id"), h, ev.X, ev.Y))
	v.Sync()
}

func (v *View) onPointerMove(ev *dom.Event) {
	c := v.chart
	if c.State() != gantt.Idle {
		v.fail(c.PointerMove(ev.X, ev.Y))
		v.Sync()
		return
	}
	id := ""
	if w := ev.Target.Closest(".bar-wrapper"); w != nil {
		id = w.Attr("data-id")
	}
	if id != v.hover {
		if v.hover != "" {
			c.PointerLeave(v.hover)
		}
		v.hover = id
	}
	if id != "" {
		c.PointerEnter(id, ev.X, ev.Y)
	}
}

func (v *View) onPointerUp(ev *dom.Event) {
	if err := v.chart.PointerUp(ev.X, ev.Y); !ignorable(err) {
		v.fail(err)
	}
	v.Sync()
}

func (v *View) onDoubleClick(ev *dom.Event) {
	ev.StopPropagation()
	v.fail(v.chart.DoubleClick(ev.Current.Attr("data-id")))
}

// Cancel aborts the active gesture and redraws the restored bars.
func (v *View) Cancel() error {
	err := v.chart.Cancel()
	v.Sync()
	return err
}
