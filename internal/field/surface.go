package field

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is the drawing target for one frame. Coordinates are in field
// pixels; implementations decide how those map to their own resolution.
type Surface interface {
	Clear()
	Dot(c r2.Vec, radius float64, p Paint)
	Ring(c r2.Vec, radius, width float64, p Paint)
	Line(a, b r2.Vec, width float64, p Paint)
}

// Paint is a colour with an opacity in [0,1].
type Paint struct {
	Color colorful.Color
	Alpha float64
}

var (
	colorParticle = colorful.Color{R: 0.94, G: 0.97, B: 1}
	colorNeutral  = colorful.Color{R: 1, G: 1, B: 1}
	colorCyan     = colorful.Hsv(183, 1, 1)
	colorLaser    = colorful.Hsv(355, 0.85, 1)
	colorMagenta  = colorful.Hsv(300, 0.7, 1)
	colorAmber    = colorful.Hsv(38, 0.9, 1)
)

// GradientLine approximates a linear gradient stroke with short segments.
func GradientLine(s Surface, a, b r2.Vec, width float64, from, to Paint, segments int) {
	if segments < 1 {
		segments = 1
	}
	prev := a
	for i := 1; i <= segments; i++ {
		t := float64(i) / float64(segments)
		next := r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
		mid := (float64(i) - 0.5) / float64(segments)
		s.Line(prev, next, width, lerpPaint(from, to, mid))
		prev = next
	}
}

func lerpPaint(a, b Paint, t float64) Paint {
	t = clamp(t, 0, 1)
	return Paint{
		Color: a.Color.BlendRgb(b.Color, t).Clamped(),
		Alpha: a.Alpha + (b.Alpha-a.Alpha)*t,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
