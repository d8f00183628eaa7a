// Package shape builds the outlines of parametric shapes.
//
// Every outline is centred on the origin and sized by half-extents hw and hh,
// which may be negative while a box is being dragged out. Positional maths
// keeps the sign; radii always use absolute values.
package shape

import (
	"math"
	"strings"
)

// Kind names a parametric shape.
type Kind string

const (
	Rectangle Kind = "rectangle"
	Circle    Kind = "circle"
	Triangle  Kind = "triangle"
	Star      Kind = "star"
	Star4     Kind = "star_4"
	Star6     Kind = "star_6"
	Hexagon   Kind = "hexagon"
	Pentagon  Kind = "pentagon"
	Octagon   Kind = "octagon"
	Diamond   Kind = "diamond"
	Heart     Kind = "heart"
	Arrow     Kind = "arrow"
	Cross     Kind = "cross"
	Drop      Kind = "drop"
	Capsule   Kind = "capsule"
	Crescent  Kind = "crescent"
	LShape    Kind = "l_shape"
	Chevron   Kind = "chevron"
	Spiral    Kind = "spiral"
	Shamrock  Kind = "shamrock"
	Badge     Kind = "badge"
	Cube3D    Kind = "cube_3d"

	Trapezoid     Kind = "trapezoid"
	Parallelogram Kind = "parallelogram"
	Kite          Kind = "kite"
	Ring          Kind = "ring"
	Hexagram      Kind = "hexagram"
	Cylinder      Kind = "cylinder"
	Pie           Kind = "pie"
)

// Kinds lists every kind with its own outline, in toolbar order.
var Kinds = []Kind{
	Rectangle, Circle, Triangle, Star, Star4, Star6, Hexagon, Pentagon,
	Octagon, Diamond, Heart, Arrow, Cross, Drop, Capsule, Crescent, LShape,
	Chevron, Spiral, Shamrock, Badge, Cube3D,
	Trapezoid, Parallelogram, Kite, Ring, Hexagram, Cylinder, Pie,
}

// ParseKind normalises a shape name ("Star 4", "star-4" and "STAR_4" are the
// same kind). Any name is accepted: kinds without an outline of their own
// render as a rectangle.
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "" {
		return Rectangle
	}
	return Kind(s)
}

// String returns the display form of k.
func (k Kind) String() string { return strings.ReplaceAll(string(k), "_", " ") }

// Star parameters: point count and inner radius as a fraction of r.
var stars = map[Kind]struct {
	points int
	inner  float64
}{
	Star:  {5, 0.45},
	Star4: {4, 0.3},
	Star6: {6, 0.577},
}

// StarRatio returns the point count and inner radius ratio of a star kind.
func StarRatio(k Kind) (points int, inner float64, ok bool) {
	s, ok := stars[k]
	return s.points, s.inner, ok
}

// Pen receives path construction calls. *gg.Context satisfies it.
type Pen interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
}

// path tracks whether a subpath is open so that a leading LineTo becomes a
// MoveTo, the same way an empty canvas path treats it.
type path struct {
	pen  Pen
	open bool
}

func (p *path) moveTo(x, y float64) {
	p.pen.MoveTo(x, y)
	p.open = true
}

func (p *path) lineTo(x, y float64) {
	if !p.open {
		p.moveTo(x, y)
		return
	}
	p.pen.LineTo(x, y)
}

func (p *path) quadTo(cx, cy, x, y float64) {
	if !p.open {
		p.moveTo(cx, cy)
	}
	p.pen.QuadraticTo(cx, cy, x, y)
}

func (p *path) cubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if !p.open {
		p.moveTo(c1x, c1y)
	}
	p.pen.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

func (p *path) close() {
	if p.open {
		p.pen.ClosePath()
	}
	p.open = false
}

// rect is a closed axis-aligned rectangle with corner (x, y) and signed size.
func (p *path) rect(x, y, w, h float64) {
	p.moveTo(x, y)
	p.lineTo(x+w, y)
	p.lineTo(x+w, y+h)
	p.lineTo(x, y+h)
	p.close()
}

// poly connects the vertices and closes the path.
func (p *path) poly(pts ...[2]float64) {
	for _, v := range pts {
		p.lineTo(v[0], v[1])
	}
	p.close()
}

// ellipseArc appends the arc of an ellipse centred at (cx, cy) with radii rx,
// ry rotated by rot, from angle a0 to a1 (increasing angles turn clockwise
// on a y-down surface). The arc is joined to the current point with a line,
// or starts a new subpath. Segments span at most a quarter turn.
func (p *path) ellipseArc(cx, cy, rx, ry, rot, a0, a1 float64) {
	rx, ry = math.Abs(rx), math.Abs(ry)
	sinR, cosR := math.Sincos(rot)
	at := func(t float64) (x, y, dx, dy float64) {
		s, c := math.Sincos(t)
		ex, ey := rx*c, ry*s
		tx, ty := -rx*s, ry*c
		return cx + ex*cosR - ey*sinR, cy + ex*sinR + ey*cosR,
			tx*cosR - ty*sinR, tx*sinR + ty*cosR
	}

	x0, y0, _, _ := at(a0)
	p.lineTo(x0, y0)

	sweep := a1 - a0
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		t0 := a0 + float64(i)*step
		t1 := t0 + step
		sx, sy, sdx, sdy := at(t0)
		ex, ey, edx, edy := at(t1)
		p.pen.CubicTo(sx+k*sdx, sy+k*sdy, ex-k*edx, ey-k*edy, ex, ey)
	}
}

// ellipse is a closed full ellipse.
func (p *path) ellipse(cx, cy, rx, ry, rot float64) {
	p.open = false
	p.ellipseArc(cx, cy, rx, ry, rot, 0, 2*math.Pi)
	p.close()
}

// Render emits the outline of kind k with half-extents hw, hh into pen.
// Unknown kinds emit the rectangle outline.
func Render(pen Pen, k Kind, hw, hh float64) {
	p := &path{pen: pen}
	w, h := 2*hw, 2*hh
	r := math.Min(math.Abs(hw), math.Abs(hh))

	switch k {
	case Circle:
		p.ellipse(0, 0, hw, hh, 0)
	case Triangle:
		p.poly([2]float64{0, -hh}, [2]float64{hw, hh}, [2]float64{-hw, hh})
	case Star, Star4, Star6:
		n, inner, _ := StarRatio(k)
		for i := 0; i < 2*n; i++ {
			dist := r
			if i%2 == 1 {
				dist = r * inner
			}
			a := math.Pi*float64(i)/float64(n) - math.Pi/2
			p.lineTo(math.Cos(a)*dist, math.Sin(a)*dist)
		}
		p.close()
	case Hexagon:
		stretched(p, 6, 0, hw, hh)
	case Pentagon:
		stretched(p, 5, -math.Pi/2, hw, hh)
	case Octagon:
		stretched(p, 8, math.Pi/8, hw, hh)
	case Diamond:
		p.poly([2]float64{0, -hh}, [2]float64{hw, 0}, [2]float64{0, hh}, [2]float64{-hw, 0})
	case Heart:
		p.moveTo(0, hh*0.5)
		p.cubicTo(-hw, -hh*0.5, -hw*1.5, hh*0.5, 0, hh)
		p.cubicTo(hw*1.5, hh*0.5, hw, -hh*0.5, 0, hh*0.5)
	case Arrow:
		p.poly(
			[2]float64{-hw, -hh / 3}, [2]float64{hw / 4, -hh / 3}, [2]float64{hw / 4, -hh},
			[2]float64{hw, 0}, [2]float64{hw / 4, hh}, [2]float64{hw / 4, hh / 3},
			[2]float64{-hw, hh / 3},
		)
	case Cross:
		t := r * 0.3
		p.poly(
			[2]float64{-t, -hh}, [2]float64{t, -hh}, [2]float64{t, -t}, [2]float64{hw, -t},
			[2]float64{hw, t}, [2]float64{t, t}, [2]float64{t, hh}, [2]float64{-t, hh},
			[2]float64{-t, t}, [2]float64{-hw, t}, [2]float64{-hw, -t}, [2]float64{-t, -t},
		)
	case Drop:
		p.moveTo(0, -hh)
		p.cubicTo(hw, -hh*0.2, hw, hh, 0, hh)
		p.cubicTo(-hw, hh, -hw, -hh*0.2, 0, -hh)
	case Capsule:
		ar := math.Abs(hh)
		p.moveTo(-hw+hh, -hh)
		p.lineTo(hw-hh, -hh)
		p.ellipseArc(hw-hh, 0, ar, ar, 0, -math.Pi/2, math.Pi/2)
		p.lineTo(-hw+hh, hh)
		p.ellipseArc(-hw+hh, 0, ar, ar, 0, math.Pi/2, 3*math.Pi/2)
	case Crescent:
		p.ellipseArc(0, 0, r, r, 0, math.Pi*0.2, math.Pi*1.8)
		p.quadTo(hw*0.6, 0, 0, hh*0.95)
	case LShape:
		t := r * 0.4
		p.poly(
			[2]float64{-hw, -hh}, [2]float64{-hw + t, -hh}, [2]float64{-hw + t, hh - t},
			[2]float64{hw, hh - t}, [2]float64{hw, hh}, [2]float64{-hw, hh},
		)
	case Chevron:
		t := r * 0.4
		p.poly(
			[2]float64{-hw, -hh}, [2]float64{0, hh - t}, [2]float64{hw, -hh},
			[2]float64{hw, -hh + t}, [2]float64{0, hh}, [2]float64{-hw, -hh + t},
		)
	case Spiral:
		for i := 0; i < 50; i++ {
			a := 0.1 * float64(i)
			f := 0.2 + 0.1*a
			p.lineTo(f*math.Cos(a)*hw, f*math.Sin(a)*hh)
		}
	case Shamrock:
		for i := 0; i < 3; i++ {
			a := 2 * math.Pi * float64(i) / 3
			p.ellipse(math.Cos(a)*hw*0.4, math.Sin(a)*hh*0.4, hw*0.4, hh*0.4, a)
		}
	case Badge:
		for i := 0; i < 16; i++ {
			dist := r
			if i%2 == 1 {
				dist = r * 0.85
			}
			a := math.Pi * float64(i) / 8
			p.lineTo(math.Cos(a)*dist, math.Sin(a)*dist)
		}
		p.close()
	case Cube3D:
		d := r * 0.4
		p.rect(-hw, -hh+d, w-d, h-d)
		p.rect(-hw+d, -hh, w-d, h-d)
		edge := func(x0, y0, x1, y1 float64) {
			p.moveTo(x0, y0)
			p.lineTo(x1, y1)
			p.open = false
		}
		edge(-hw, -hh+d, -hw+d, -hh)
		edge(hw-d, -hh+d, hw, -hh)
		edge(-hw, hh, -hw+d, hh-d)
		edge(hw-d, hh, hw, hh-d)
	case Trapezoid:
		p.poly([2]float64{-hw * 0.6, -hh}, [2]float64{hw * 0.6, -hh}, [2]float64{hw, hh}, [2]float64{-hw, hh})
	case Parallelogram:
		s := hw * 0.25
		p.poly([2]float64{-hw + s, -hh}, [2]float64{hw, -hh}, [2]float64{hw - s, hh}, [2]float64{-hw, hh})
	case Kite:
		p.poly([2]float64{0, -hh}, [2]float64{hw, -hh * 0.3}, [2]float64{0, hh}, [2]float64{-hw, -hh * 0.3})
	case Ring:
		p.ellipse(0, 0, hw, hh, 0)
		p.ellipse(0, 0, hw*0.6, hh*0.6, 0)
	case Hexagram:
		for _, start := range []float64{-math.Pi / 2, math.Pi / 2} {
			for i := 0; i < 3; i++ {
				a := start + 2*math.Pi*float64(i)/3
				p.lineTo(math.Cos(a)*r, math.Sin(a)*r)
			}
			p.close()
		}
	case Cylinder:
		e := hh * 0.2
		p.ellipse(0, -hh+e, hw, e, 0)
		p.moveTo(-hw, -hh+e)
		p.lineTo(-hw, hh-e)
		p.ellipseArc(0, hh-e, hw, e, 0, math.Pi, 0)
		p.lineTo(hw, -hh+e)
	case Pie:
		p.moveTo(0, 0)
		p.ellipseArc(0, 0, r, r, 0, 0, 1.5*math.Pi)
		p.close()
	default:
		p.rect(-hw, -hh, w, h)
	}
}

// stretched emits a regular n-gon using hw and hh as independent radii.
func stretched(p *path, n int, start, hw, hh float64) {
	for i := 0; i < n; i++ {
		a := 2*math.Pi*float64(i)/float64(n) + start
		p.lineTo(math.Cos(a)*hw, math.Sin(a)*hh)
	}
	p.close()
}
