// Package dom is a small retained element tree. It holds the rendered chart
// as attribute-bearing nodes that can be queried with simple selectors,
// hit-tested, dispatched to, and serialized as XML.
package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is one node of the tree.
type Element struct {
	Kind     string
	Parent   *Element
	Children []*Element
	Text     string

	attrs     map[string]string
	listeners []listener
}

// Create builds an element of the given kind, applies attrs and appends it
// to parent when parent is not nil. The "text" attribute sets the element's
// character data instead of an attribute.
func Create(kind string, attrs map[string]any, parent *Element) *Element {
	e := &Element{Kind: kind, attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		if k == "text" {
			e.Text = stringify(v)
			continue
		}
		e.SetAttr(k, v)
	}
	if parent != nil {
		parent.Append(e)
	}
	return e
}

// Append adds child as the last child of e, detaching it from any previous
// parent.
func (e *Element) Append(child *Element) {
	if child.Parent != nil {
		child.Remove()
	}
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	p := e.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == e {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	e.Parent = nil
}

// Clear removes every child of e.
func (e *Element) Clear() {
	for _, c := range e.Children {
		c.Parent = nil
	}
	e.Children = nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// Attr returns the attribute value, or "" when unset.
func (e *Element) Attr(name string) string {
	return e.attrs[name]
}

// HasAttr reports whether the attribute is set.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

// SetAttr sets an attribute. Numbers are written in their shortest form.
func (e *Element) SetAttr(name string, v any) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = stringify(v)
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	delete(e.attrs, name)
}

// Float parses a numeric attribute. Missing or malformed values are 0.
func (e *Element) Float(name string) float64 {
	v, err := strconv.ParseFloat(e.attrs[name], 64)
	if err != nil {
		return 0
	}
	return v
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.attrs["class"])
}

func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(e.attrs["class"]+" "+name))
}

func (e *Element) RemoveClass(name string) {
	cs := e.Classes()
	out := cs[:0]
	for _, c := range cs {
		if c != name {
			out = append(out, c)
		}
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// ToggleClass sets or clears a class.
func (e *Element) ToggleClass(name string, on bool) {
	if on {
		e.AddClass(name)
	} else {
		e.RemoveClass(name)
	}
}

// Closest returns e or its nearest ancestor that matches sel.
func (e *Element) Closest(sel string) *Element {
	s, err := Compile(sel)
	if err != nil {
		return nil
	}
	for n := e; n != nil; n = n.Parent {
		if s.Match(n) {
			return n
		}
	}
	return nil
}

// Query returns the first descendant in document order matching sel.
func (e *Element) Query(sel string) *Element {
	s, err := Compile(sel)
	if err != nil {
		return nil
	}
	var found *Element
	e.walk(func(n *Element) bool {
		if n != e && s.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every descendant matching sel in document order.
func (e *Element) QueryAll(sel string) []*Element {
	s, err := Compile(sel)
	if err != nil {
		return nil
	}
	var out []*Element
	e.walk(func(n *Element) bool {
		if n != e && s.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// walk visits e and its descendants in pre-order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Geometry accessors read the SVG attributes of an element.

func X(e *Element) float64 { return e.Float("x") }

func Y(e *Element) float64 { return e.Float("y") }

func Width(e *Element) float64 { return e.Float("width") }

func Height(e *Element) float64 { return e.Float("height") }

func EndX(e *Element) float64 { return X(e) + Width(e) }
