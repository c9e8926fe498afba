package dom

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// WriteXML serializes e and its subtree, two spaces per level, attributes
// in name order.
func WriteXML(w io.Writer, e *Element) error {
	var buf bytes.Buffer
	writeElement(&buf, e, 0)
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the serialized subtree.
func (e *Element) String() string {
	var buf bytes.Buffer
	writeElement(&buf, e, 0)
	return buf.String()
}

func writeElement(buf *bytes.Buffer, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(e.Kind)

	names := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(e.attrs[k]))
		buf.WriteByte('"')
	}

	switch {
	case len(e.Children) == 0 && e.Text == "":
		buf.WriteString("/>\n")
	case len(e.Children) == 0:
		buf.WriteByte('>')
		xml.EscapeText(buf, []byte(e.Text))
		buf.WriteString("</" + e.Kind + ">\n")
	default:
		buf.WriteString(">\n")
		if e.Text != "" {
			buf.WriteString(indent + "  ")
			xml.EscapeText(buf, []byte(e.Text))
			buf.WriteByte('\n')
		}
		for _, c := range e.Children {
			writeElement(buf, c, depth+1)
		}
		buf.WriteString(indent + "</" + e.Kind + ">\n")
	}
}
