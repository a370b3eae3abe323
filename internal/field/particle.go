package field

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// alpha easing per frame toward full brightness while influenced
	alphaRise = 0.2
	// alpha easing per frame back toward the resting opacity
	alphaRestore = 0.05
	maxIntensity = 2
)

// Bounds is the drawable area plus the overscan margin particles may
// travel into before wrapping to the opposite edge.
type Bounds struct {
	W, H   float64
	Margin float64
}

// Contains reports whether p lies inside the bounds extended by the margin.
func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= -b.Margin && p.X <= b.W+b.Margin &&
		p.Y >= -b.Margin && p.Y <= b.H+b.Margin
}

// Particle is one simulated point of the field.
type Particle struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Base      r2.Vec // velocity the particle relaxes back to
	Radius    float64
	Alpha     float64
	BaseAlpha float64
	Tint      colorful.Color

	// Influenced is set by ApplyForce and cleared by Step.
	Influenced bool
	// Lit records whether the particle was influenced during the current
	// frame. It survives Step so later passes of the same frame can use it.
	Lit bool
}

func newParticle(rng *rand.Rand, b Bounds, p Params) Particle {
	base := r2.Vec{
		X: (rng.Float64() - 0.5) * p.Speed,
		Y: (rng.Float64() - 0.5) * p.Speed,
	}
	alpha := 0.3 + rng.Float64()*0.3
	return Particle{
		Pos:       r2.Vec{X: rng.Float64() * b.W, Y: rng.Float64() * b.H},
		Vel:       base,
		Base:      base,
		Radius:    p.MinSize + rng.Float64()*(p.MaxSize-p.MinSize),
		Alpha:     alpha,
		BaseAlpha: alpha,
		Tint:      colorParticle,
	}
}

// ApplyForce adds (fx, fy) scaled by intensity to the velocity. Calls within
// one frame accumulate.
func (pt *Particle) ApplyForce(fx, fy, intensity float64) {
	intensity = clamp(intensity, 0, maxIntensity)
	pt.Vel.X += fx * intensity
	pt.Vel.Y += fy * intensity
	pt.Influenced = true
}

// Step advances the particle by one frame. Velocity decays toward the base
// velocity by relax, and position wraps across the bounds without touching
// velocity.
func (pt *Particle) Step(b Bounds, relax float64) {
	pt.Pos = r2.Add(pt.Pos, pt.Vel)
	pt.Vel = r2.Add(pt.Vel, r2.Scale(relax, r2.Sub(pt.Base, pt.Vel)))

	pt.Pos.X = wrap(pt.Pos.X, b.W, b.Margin)
	pt.Pos.Y = wrap(pt.Pos.Y, b.H, b.Margin)

	if pt.Influenced {
		pt.Alpha += (1 - pt.Alpha) * alphaRise
	} else {
		pt.Alpha += (pt.BaseAlpha - pt.Alpha) * alphaRestore
		pt.Tint = colorParticle
	}
	pt.Lit = pt.Influenced
	pt.Influenced = false
}

// Render draws the particle as a filled dot.
func (pt *Particle) Render(s Surface) {
	s.Dot(pt.Pos, pt.Radius, Paint{Color: pt.Tint, Alpha: pt.Alpha})
}

// Speed returns the magnitude of the current velocity.
func (pt *Particle) Speed() float64 {
	return r2.Norm(pt.Vel)
}

func wrap(v, bound, margin float64) float64 {
	lo, hi := -margin, bound+margin
	if v >= lo && v <= hi {
		return v
	}
	span := hi - lo
	if span <= 0 {
		return lo
	}
	v = math.Mod(v-lo, span)
	if v < 0 {
		v += span
	}
	return v + lo
}
