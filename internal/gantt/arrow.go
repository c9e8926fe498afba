package gantt

import (
	"math"
	"strconv"
	"strings"
)

// arrowHead is drawn relative to the end point of every connector.
const arrowHead = "m -5 -5 l 5 5 l -5 5"

type Point struct {
	X, Y float64
}

// Path is an orthogonal polyline whose corners are rounded with Curve.
type Path struct {
	Points []Point
	Curve  float64
}

// Start is the first point of the path.
func (p Path) Start() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[0]
}

// End is the point the arrow head is attached to.
func (p Path) End() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[len(p.Points)-1]
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// String renders SVG path data.
func (p Path) String() string {
	pts := dedupe(p.Points)
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M " + num(pts[0].X) + " " + num(pts[0].Y))
	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := pts[i-1], pts[i], pts[i+1]
		inX, inY, inLen := unit(prev, cur)
		outX, outY, outLen := unit(cur, next)
		cross := inX*outY - inY*outX
		r := math.Min(p.Curve, math.Min(inLen/2, outLen/2))
		if cross == 0 || r <= 0 {
			b.WriteString(" L " + num(cur.X) + " " + num(cur.Y))
			continue
		}
		sweep := "0"
		if cross > 0 {
			sweep = "1"
		}
		b.WriteString(" L " + num(cur.X-inX*r) + " " + num(cur.Y-inY*r))
		b.WriteString(" A " + num(r) + " " + num(r) + " 0 0 " + sweep + " " + num(cur.X+outX*r) + " " + num(cur.Y+outY*r))
	}
	last := pts[len(pts)-1]
	if len(pts) > 1 {
		b.WriteString(" L " + num(last.X) + " " + num(last.Y))
	}
	b.WriteString(" " + arrowHead)
	return b.String()
}

func unit(a, b Point) (dx, dy, length float64) {
	dx, dy = b.X-a.X, b.Y-a.Y
	length = math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0, 0
	}
	return dx / length, dy / length, length
}

func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && math.Abs(out[n-1].X-p.X) < epsilon && math.Abs(out[n-1].Y-p.Y) < epsilon {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Arrow connects a predecessor to a dependent.
type Arrow struct {
	From string
	To   string
	Path Path
}

type RouteOptions struct {
	Curve   float64
	Padding float64
}

// Route connects from's right edge to to's left edge. When to starts too
// close to, or before, from's end the path leaves to the right, drops into
// the gutter between the rows and enters to from the left.
func Route(from, to *Bar, o RouteOptions) Path {
	start := Point{X: from.EndX(), Y: from.Y + from.Height/2}
	end := Point{X: to.X, Y: to.Y + to.Height/2}

	if end.X-start.X >= 2*o.Curve+epsilon && end.X > start.X {
		mid := start.X + (end.X-start.X)/2
		return Path{
			Points: []Point{start, {mid, start.Y}, {mid, end.Y}, end},
			Curve:  o.Curve,
		}
	}

	out := start.X + o.Padding/2
	in := end.X - o.Padding/2
	gutter := from.Y + from.Height + o.Padding/2
	if to.Y+to.Height <= from.Y {
		gutter = from.Y - o.Padding/2
	}
	return Path{
		Points: []Point{start, {out, start.Y}, {out, gutter}, {in, gutter}, {in, end.Y}, end},
		Curve:  o.Curve,
	}
}
