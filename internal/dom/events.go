package dom

import "math"

// Event is a pointer event travelling from its target up to the top of the
// tree.
type Event struct {
	Type   string
	X, Y   float64
	Alt    bool
	Target *Element
	// Current is the element the running handler matched.
	Current *Element

	stopped bool
}

// StopPropagation prevents handlers on further ancestors from running.
func (ev *Event) StopPropagation() { ev.stopped = true }

type Handler func(*Event)

type listener struct {
	event string
	raw   string
	sel   Selector
	fn    Handler
}

// On registers a delegated handler on root. The handler runs for events
// whose path passes through an element under root matching selector. An
// empty selector matches root itself.
func On(root *Element, event, selector string, fn Handler) error {
	l := listener{event: event, raw: selector, fn: fn}
	if selector != "" {
		s, err := Compile(selector)
		if err != nil {
			return err
		}
		l.sel = s
	}
	root.listeners = append(root.listeners, l)
	return nil
}

// Dispatch delivers ev. When ev.Target is nil the target is hit-tested at
// (ev.X, ev.Y); with nothing under the pointer the event starts at root.
// Reports whether any handler ran.
func Dispatch(root *Element, ev *Event) bool {
	if ev.Target == nil {
		ev.Target = HitTest(root, ev.X, ev.Y)
		if ev.Target == nil {
			ev.Target = root
		}
	}
	var path []*Element
	for n := ev.Target; n != nil; n = n.Parent {
		path = append(path, n)
	}
	fired := false
	for i, n := range path {
		for _, holder := range path[i:] {
			for _, l := range holder.listeners {
				if l.event != ev.Type {
					continue
				}
				if l.raw == "" && n != holder || l.raw != "" && !l.sel.Match(n) {
					continue
				}
				ev.Current = n
				l.fn(ev)
				fired = true
				if ev.stopped {
					return true
				}
			}
		}
	}
	return fired
}

// HitTest returns the topmost rect or circle under (x, y). Later elements
// in document order paint over earlier ones. Elements with
// pointer-events="none", and their subtrees, are skipped.
func HitTest(root *Element, x, y float64) *Element {
	var hit *Element
	var visit func(e *Element)
	visit = func(e *Element) {
		if e.Attr("pointer-events") == "none" || e.Attr("visibility") == "hidden" {
			return
		}
		if contains(e, x, y) {
			hit = e
		}
		for _, c := range e.Children {
			visit(c)
		}
	}
	visit(root)
	return hit
}

func contains(e *Element, x, y float64) bool {
	switch e.Kind {
	case "rect":
		return x >= X(e) && x <= EndX(e) && y >= Y(e) && y <= Y(e)+Height(e)
	case "circle":
		return math.Hypot(x-e.Float("cx"), y-e.Float("cy")) <= e.Float("r")
	}
	return false
}
