package dom

import (
	"fmt"
	"strings"
	"sync"
)

// Selector is a comma separated list of compound selectors. Each compound
// is an optional kind followed by any number of .class, #id, [attr] and
// [attr=value] parts. Combinators are not supported.
type Selector []compound

type compound struct {
	kind    string
	id      string
	classes []string
	attrs   []attrCond
}

type attrCond struct {
	name     string
	value    string
	hasValue bool
}

var (
	cacheMu sync.Mutex
	cache   = map[string]Selector{}
)

// Compile parses sel. Parsed selectors are cached.
func Compile(sel string) (Selector, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[sel]; ok {
		return s, nil
	}
	var out Selector
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("selector %q: empty group", sel)
		}
		c, err := parseCompound(part)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", sel, err)
		}
		out = append(out, c)
	}
	cache[sel] = out
	return out, nil
}

func isIdent(r byte) bool {
	return r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func ident(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdent(s[j]) {
		j++
	}
	return s[i:j], j
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	if s[0] == '*' {
		i = 1
	} else if isIdent(s[0]) {
		c.kind, i = ident(s, 0)
	}
	for i < len(s) {
		switch s[i] {
		case '.', '#':
			name, j := ident(s, i+1)
			if name == "" {
				return c, fmt.Errorf("missing name at offset %d", i)
			}
			if s[i] == '.' {
				c.classes = append(c.classes, name)
			} else {
				c.id = name
			}
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute at offset %d", i)
			}
			body := s[i+1 : i+end]
			var a attrCond
			if k, v, ok := strings.Cut(body, "="); ok {
				a = attrCond{name: strings.TrimSpace(k), value: strings.Trim(strings.TrimSpace(v), `"'`), hasValue: true}
			} else {
				a = attrCond{name: strings.TrimSpace(body)}
			}
			if a.name == "" {
				return c, fmt.Errorf("empty attribute at offset %d", i)
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			return c, fmt.Errorf("unexpected %q at offset %d", s[i], i)
		}
	}
	return c, nil
}

// Match reports whether e matches any group of the selector.
func (s Selector) Match(e *Element) bool {
	for _, c := range s {
		if c.match(e) {
			return true
		}
	}
	return false
}

func (c compound) match(e *Element) bool {
	if c.kind != "" && c.kind != e.Kind {
		return false
	}
	if c.id != "" && e.Attr("id") != c.id {
		return false
	}
	for _, cl := range c.classes {
		if !e.HasClass(cl) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := e.attrs[a.name]
		if !ok || a.hasValue && v != a.value {
			return false
		}
	}
	return true
}

// Matches reports whether e matches sel. A malformed selector matches
// nothing.
func Matches(e *Element, sel string) bool {
	s, err := Compile(sel)
	return err == nil && s.Match(e)
}
