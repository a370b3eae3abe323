package field

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polarity selects the direction of a source's force.
type Polarity int

const (
	Neutral Polarity = iota
	Repel
	Attract
)

func (p Polarity) String() string {
	switch p {
	case Repel:
		return "repel"
	case Attract:
		return "attract"
	default:
		return "neutral"
	}
}

// Source is anything that pushes particles around for one frame: the
// pointer, an open or closed palm, a pointing fingertip.
type Source struct {
	Pos       r2.Vec
	Polarity  Polarity
	Radius    float64
	Strength  float64
	Intensity float64

	// Hand marks sources derived from gesture tracking. Their particles
	// are tinted so the user can see what the hand touches.
	Hand bool
	// Pointing turns the source into a laser: random jitter around Pos
	// instead of a directional push.
	Pointing bool
	// Beam is the far endpoint of the pointing ray (the palm) when HasBeam.
	Beam    r2.Vec
	HasBeam bool
}

// ForceAt returns the force the source exerts on a particle at p, with a
// linear falloff from Strength at the centre to zero at Radius. It reports
// false outside the radius, for neutral sources, and at exactly zero
// distance where no direction exists.
func ForceAt(s Source, p r2.Vec) (r2.Vec, bool) {
	if s.Polarity == Neutral || s.Radius <= 0 {
		return r2.Vec{}, false
	}
	d := r2.Sub(p, s.Pos)
	dist := r2.Norm(d)
	if dist >= s.Radius || dist == 0 {
		return r2.Vec{}, false
	}
	mag := s.Strength * (s.Radius - dist) / s.Radius
	dir := r2.Scale(1/dist, d)
	if s.Polarity == Attract {
		dir = r2.Scale(-1, dir)
	}
	return r2.Scale(mag, dir), true
}

// Resolver accumulates forces from all active sources into the particles.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver returns a resolver drawing laser jitter from rng.
func NewResolver(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng}
}

// Resolve applies every source to every particle within its radius. Any
// hand source suppresses the pointer for the frame. pointer may be nil.
func (r *Resolver) Resolve(ps []Particle, pointer *Source, hands []Source) {
	if len(hands) == 0 {
		if pointer != nil {
			r.apply(ps, *pointer)
		}
		return
	}
	for _, h := range hands {
		if h.Pointing {
			r.jitter(ps, h)
			continue
		}
		r.apply(ps, h)
	}
}

func (r *Resolver) apply(ps []Particle, s Source) {
	for i := range ps {
		f, ok := ForceAt(s, ps[i].Pos)
		if !ok {
			continue
		}
		ps[i].ApplyForce(f.X, f.Y, s.Intensity)
		if s.Hand {
			ps[i].Tint = colorCyan
		}
	}
}

func (r *Resolver) jitter(ps []Particle, s Source) {
	r2max := s.Radius * s.Radius
	for i := range ps {
		d := r2.Sub(ps[i].Pos, s.Pos)
		if r2.Norm2(d) > r2max {
			continue
		}
		fx := (r.rng.Float64() - 0.5) * 2 * s.Strength
		fy := (r.rng.Float64() - 0.5) * 2 * s.Strength
		ps[i].ApplyForce(fx, fy, s.Intensity)
		ps[i].Tint = colorLaser
	}
}
