// Package window draws the particle field in a desktop window with
// anti-aliased vector primitives.
package window

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/field"
)

var background = color.RGBA{R: 5, G: 6, B: 10, A: 255}

type opKind uint8

const (
	opDot opKind = iota
	opRing
	opLine
)

type op struct {
	kind  opKind
	a, b  r2.Vec
	r, w  float32
	color color.RGBA
}

// DisplayList records one frame of field drawing during Update so Draw can
// replay it. Ebiten may call Draw more or less often than Update.
type DisplayList struct {
	ops []op
}

var _ field.Surface = (*DisplayList)(nil)

func (d *DisplayList) Clear() { d.ops = d.ops[:0] }

func (d *DisplayList) Dot(c r2.Vec, radius float64, p field.Paint) {
	d.add(op{kind: opDot, a: c, r: float32(math.Max(radius, 0.5))}, p)
}

func (d *DisplayList) Ring(c r2.Vec, radius, width float64, p field.Paint) {
	d.add(op{kind: opRing, a: c, r: float32(radius), w: float32(width)}, p)
}

func (d *DisplayList) Line(a, b r2.Vec, width float64, p field.Paint) {
	d.add(op{kind: opLine, a: a, b: b, w: float32(width)}, p)
}

func (d *DisplayList) add(o op, p field.Paint) {
	o.color = toColor(p)
	if o.color.A == 0 {
		return
	}
	d.ops = append(d.ops, o)
}

// Len returns the number of recorded primitives.
func (d *DisplayList) Len() int { return len(d.ops) }

// Replay paints the recorded frame onto dst.
func (d *DisplayList) Replay(dst *ebiten.Image) {
	dst.Fill(background)
	for _, o := range d.ops {
		ax, ay := float32(o.a.X), float32(o.a.Y)
		switch o.kind {
		case opDot:
			vector.DrawFilledCircle(dst, ax, ay, o.r, o.color, true)
		case opRing:
			vector.StrokeCircle(dst, ax, ay, o.r, o.w, o.color, true)
		case opLine:
			vector.StrokeLine(dst, ax, ay, float32(o.b.X), float32(o.b.Y), o.w, o.color, true)
		}
	}
}

// toColor converts a paint to the alpha-premultiplied colour ebiten draws
// with.
func toColor(p field.Paint) color.RGBA {
	a := math.Max(0, math.Min(1, p.Alpha))
	c := p.Color.Clamped()
	return color.RGBA{
		R: uint8(c.R*a*255 + 0.5),
		G: uint8(c.G*a*255 + 0.5),
		B: uint8(c.B*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}
