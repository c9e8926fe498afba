package export

import (
	"fmt"
	"os"

	"github.com/sadopc/ganttr/internal/dom"
	"github.com/sadopc/ganttr/internal/gantt"
	"github.com/sadopc/ganttr/internal/render"
)

// ToSVG renders the chart into a standalone SVG document.
func ToSVG(c *gantt.Chart, path string) error {
	doc := dom.Create("body", nil, nil)
	v, err := render.Mount(doc, "body", c)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg file: %w", err)
	}
	if err := v.WriteSVG(f); err != nil {
		f.Close()
		return fmt.Errorf("write svg file: %w", err)
	}
	return f.Close()
}
