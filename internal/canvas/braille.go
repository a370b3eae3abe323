// Package canvas rasterizes field drawing calls onto a grid of Unicode
// Braille cells for display in a terminal.
package canvas

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/field"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// minAlpha is the faintest paint that still lights a dot.
const minAlpha = 0.02

type cell struct {
	bits  uint8
	color colorful.Color
	alpha float64
}

// Braille is a field.Surface backed by a cols×rows grid of Braille cells.
// Each cell holds 2×4 dots and one colour: the strongest paint that touched
// it this frame. Scale is the number of field pixels per dot.
type Braille struct {
	cols, rows int
	scale      float64
	cells      []cell
	profile    Profile
}

var _ field.Surface = (*Braille)(nil)

// NewBraille returns an empty canvas using the detected colour profile.
func NewBraille(cols, rows int, scale float64) *Braille {
	b := &Braille{profile: DetectProfile()}
	b.scale = scale
	if b.scale <= 0 {
		b.scale = 1
	}
	b.Resize(cols, rows)
	return b
}

// SetProfile overrides the colour profile.
func (b *Braille) SetProfile(p Profile) { b.profile = p }

// Resize changes the grid size and clears it.
func (b *Braille) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b.cols, b.rows = cols, rows
	if cap(b.cells) < cols*rows {
		b.cells = make([]cell, cols*rows)
	}
	b.cells = b.cells[:cols*rows]
	b.Clear()
}

// Size returns the grid size in cells.
func (b *Braille) Size() (cols, rows int) { return b.cols, b.rows }

// PixelSize returns the field size in pixels that the grid covers.
func (b *Braille) PixelSize() (w, h float64) {
	return float64(b.cols*2) * b.scale, float64(b.rows*4) * b.scale
}

// CellToPixel returns the field position at the centre of a cell.
func (b *Braille) CellToPixel(col, row int) r2.Vec {
	return r2.Vec{
		X: (float64(col) + 0.5) * 2 * b.scale,
		Y: (float64(row) + 0.5) * 4 * b.scale,
	}
}

func (b *Braille) Clear() {
	for i := range b.cells {
		b.cells[i] = cell{}
	}
}

// Lit reports whether any dot in the cell is on.
func (b *Braille) Lit(col, row int) bool {
	if col < 0 || row < 0 || col >= b.cols || row >= b.rows {
		return false
	}
	return b.cells[row*b.cols+col].bits != 0
}

// plot lights the dot at dot coordinates (dx, dy).
func (b *Braille) plot(dx, dy int, p field.Paint) {
	if dx < 0 || dy < 0 || dx >= b.cols*2 || dy >= b.rows*4 {
		return
	}
	c := &b.cells[(dy/4)*b.cols+dx/2]
	c.bits |= 1 << brailleBits[dx%2][dy%4]
	if p.Alpha > c.alpha {
		c.alpha = p.Alpha
		c.color = p.Color
	}
}

func (b *Braille) toDot(v r2.Vec) (float64, float64) {
	return v.X / b.scale, v.Y / b.scale
}

// Dot fills a disk.
func (b *Braille) Dot(c r2.Vec, radius float64, p field.Paint) {
	if p.Alpha < minAlpha {
		return
	}
	cx, cy := b.toDot(c)
	r := radius / b.scale
	if r < 0.75 {
		b.plot(int(math.Floor(cx)), int(math.Floor(cy)), p)
		return
	}
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ddx := float64(x) + 0.5 - cx
			ddy := float64(y) + 0.5 - cy
			if ddx*ddx+ddy*ddy <= r*r {
				b.plot(x, y, p)
			}
		}
	}
}

// Ring strokes a circle outline. Width is ignored below one dot.
func (b *Braille) Ring(c r2.Vec, radius, width float64, p field.Paint) {
	if p.Alpha < minAlpha || radius <= 0 {
		return
	}
	cx, cy := b.toDot(c)
	r := radius / b.scale
	n := int(math.Ceil(2 * math.Pi * r * 1.5))
	if n < 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		b.plot(int(math.Floor(cx+r*math.Cos(a))), int(math.Floor(cy+r*math.Sin(a))), p)
	}
}

// Line strokes a segment one dot wide.
func (b *Braille) Line(from, to r2.Vec, width float64, p field.Paint) {
	if p.Alpha < minAlpha {
		return
	}
	x0, y0 := b.toDot(from)
	x1, y1 := b.toDot(to)
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps < 1 {
		b.plot(int(math.Floor(x0)), int(math.Floor(y0)), p)
		return
	}
	sx := (x1 - x0) / float64(steps)
	sy := (y1 - y0) / float64(steps)
	for i := 0; i <= steps; i++ {
		b.plot(int(math.Floor(x0+sx*float64(i))), int(math.Floor(y0+sy*float64(i))), p)
	}
}

// View renders the grid, one line per row. Faint cells are drawn darker.
func (b *Braille) View() string {
	var sb strings.Builder
	sb.Grow(b.rows * (b.cols*4 + 1))
	for row := 0; row < b.rows; row++ {
		state := newANSIState(b.profile)
		for col := 0; col < b.cols; col++ {
			c := b.cells[row*b.cols+col]
			if c.bits == 0 {
				sb.WriteByte(' ')
				continue
			}
			state.set(&sb, shade(c.color, 0.35+0.65*c.alpha))
			sb.WriteRune(rune(0x2800 + int(c.bits)))
		}
		state.reset(&sb)
		if row < b.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
