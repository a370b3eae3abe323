package field

import (
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params holds every tunable of the simulation. Distances are in field
// pixels and rates are per frame.
type Params struct {
	Count   int
	Speed   float64
	MinSize float64
	MaxSize float64
	Relax   float64
	Margin  float64

	ConnectionDistance float64
	ConnectionAlpha    float64

	PointerRadius float64
	PointerForce  float64
	TrailLength   int

	HandRadius     float64
	HandForce      float64
	PinchIntensity float64
	LaserRadius    float64
	LaserJitter    float64

	RippleMaxRadius float64
	RippleSpeed     float64
	RippleChance    float64
	BeamDecay       float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		Count:              60,
		Speed:              0.5,
		MinSize:            1,
		MaxSize:            3,
		Relax:              0.02,
		Margin:             20,
		ConnectionDistance: 150,
		ConnectionAlpha:    0.12,
		PointerRadius:      150,
		PointerForce:       0.15,
		TrailLength:        20,
		HandRadius:         200,
		HandForce:          0.5,
		PinchIntensity:     2,
		LaserRadius:        60,
		LaserJitter:        1.5,
		RippleMaxRadius:    100,
		RippleSpeed:        2,
		RippleChance:       0.05,
		BeamDecay:          0.05,
	}
}

// Hand is one smoothed hand as reported by gesture tracking, in field
// pixels.
type Hand struct {
	Label    string
	Palm     r2.Vec
	Tip      r2.Vec
	Open     bool
	Pinch    bool
	Pointing bool
}

// Sim owns the whole field: particles, pointer, hands and effects. Input
// handlers only call its setters; Frame is the only thing that advances it.
// A Sim is not safe for concurrent use.
type Sim struct {
	params Params
	log    *zap.SugaredLogger
	rng    *rand.Rand

	bounds    Bounds
	particles []Particle
	edges     []Edge
	resolver  *Resolver
	effects   Pool

	pointer    r2.Vec
	hasPointer bool
	trail      Trail

	hands      []Hand
	pending    []Hand
	hasPending bool
	tracking   bool

	frame           uint64
	afterIndicators func()
	onRipple        func(Effect)
}

// New creates a field of p.Count particles over a w×h area.
func New(p Params, w, h float64, log *zap.SugaredLogger, rng *rand.Rand) *Sim {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Sim{
		params:   p,
		log:      log,
		rng:      rng,
		resolver: NewResolver(rng),
		trail:    NewTrail(p.TrailLength),
	}
	s.Resize(w, h)
	return s
}

// Params returns the tuning the field was built with.
func (s *Sim) Params() Params { return s.params }

// Bounds returns the current drawable area.
func (s *Sim) Bounds() Bounds { return s.bounds }

// Particles returns the particle set. The slice is owned by the Sim.
func (s *Sim) Particles() []Particle { return s.particles }

// Edges returns the connections computed by the last frame.
func (s *Sim) Edges() []Edge { return s.edges }

// Effects returns the live transient effects.
func (s *Sim) Effects() []Effect { return s.effects.Effects() }

// Hands returns the hands consumed by the last frame.
func (s *Sim) Hands() []Hand { return s.hands }

// Frames returns how many frames have run.
func (s *Sim) Frames() uint64 { return s.frame }

// Pointer returns the pointer position and whether it is over the field.
func (s *Sim) Pointer() (r2.Vec, bool) { return s.pointer, s.hasPointer }

// SetAfterIndicators registers fn to run each frame right after the hand
// indicators are drawn and before transient effects.
func (s *Sim) SetAfterIndicators(fn func()) { s.afterIndicators = fn }

// OnRipple registers fn to be told about every ripple spawned by a click.
func (s *Sim) OnRipple(fn func(Effect)) { s.onRipple = fn }

// Resize replaces every particle with a fresh one inside the new bounds.
// The count stays fixed.
func (s *Sim) Resize(w, h float64) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.bounds = Bounds{W: w, H: h, Margin: s.params.Margin}
	s.reseed()
	s.log.Debugw("field resized", "w", w, "h", h, "particles", len(s.particles))
}

// Reset scatters the particles again without changing the bounds.
func (s *Sim) Reset() {
	s.reseed()
	s.effects.Reset()
}

func (s *Sim) reseed() {
	if cap(s.particles) < s.params.Count {
		s.particles = make([]Particle, s.params.Count)
	}
	s.particles = s.particles[:s.params.Count]
	for i := range s.particles {
		s.particles[i] = newParticle(s.rng, s.bounds, s.params)
	}
	s.edges = s.edges[:0]
}

// SetPointer moves the pointer to (x, y).
func (s *Sim) SetPointer(x, y float64) {
	s.pointer = r2.Vec{X: x, Y: y}
	s.hasPointer = true
	s.trail.Push(s.pointer)
}

// ClearPointer removes the pointer, e.g. when it leaves the window.
func (s *Sim) ClearPointer() {
	s.hasPointer = false
	s.trail.Clear()
}

// Click spawns a ripple at (x, y). accent selects the modifier colour.
func (s *Sim) Click(x, y float64, accent bool) Effect {
	tone := ToneNeutral
	if accent {
		tone = ToneAccent
	}
	e := NewRipple(r2.Vec{X: x, Y: y}, s.params.RippleMaxRadius, s.params.RippleSpeed, tone)
	s.effects.Add(e)
	if s.onRipple != nil {
		s.onRipple(e)
	}
	return e
}

// EnqueueHands stores the latest hand set for the next frame to consume.
// An empty set clears hand influence.
func (s *Sim) EnqueueHands(hands []Hand) {
	s.pending = append(s.pending[:0], hands...)
	s.hasPending = true
}

// SetTracking records whether gesture tracking is live. It only affects
// connection highlighting.
func (s *Sim) SetTracking(on bool) {
	s.tracking = on
	if !on {
		s.EnqueueHands(nil)
	}
}

// Tracking reports whether gesture tracking is live.
func (s *Sim) Tracking() bool { return s.tracking }

// Frame advances the field by one tick and draws it, in order: clear,
// forces, particles, connections, hand indicators, the after-indicators
// hook, transient effects.
func (s *Sim) Frame(surface Surface) {
	s.frame++
	if s.hasPending {
		s.hands = append(s.hands[:0], s.pending...)
		s.hasPending = false
	}

	surface.Clear()

	sources := s.handSources()
	var pointer *Source
	if s.hasPointer {
		ps := s.pointerSource()
		pointer = &ps
	}
	s.resolver.Resolve(s.particles, pointer, sources)

	for i := range s.particles {
		s.particles[i].Step(s.bounds, s.params.Relax)
		s.particles[i].Render(surface)
	}

	s.edges = Connections(s.particles, s.params.ConnectionDistance, s.params.ConnectionAlpha, s.tracking, s.edges[:0])
	DrawConnections(surface, s.particles, s.edges)

	s.drawIndicators(surface, sources)
	if s.afterIndicators != nil {
		s.afterIndicators()
	}

	s.spawnGestureEffects(sources)
	s.effects.Step(surface)
}

func (s *Sim) pointerSource() Source {
	return Source{
		Pos:       s.pointer,
		Polarity:  Repel,
		Radius:    s.params.PointerRadius,
		Strength:  s.params.PointerForce,
		Intensity: 1,
	}
}

func (s *Sim) handSources() []Source {
	if len(s.hands) == 0 {
		return nil
	}
	out := make([]Source, 0, len(s.hands))
	for _, h := range s.hands {
		if h.Pointing {
			out = append(out, Source{
				Pos:       h.Tip,
				Polarity:  Neutral,
				Radius:    s.params.LaserRadius,
				Strength:  s.params.LaserJitter,
				Intensity: 1,
				Hand:      true,
				Pointing:  true,
				Beam:      h.Palm,
				HasBeam:   true,
			})
			continue
		}
		src := Source{
			Pos:       h.Palm,
			Polarity:  Attract,
			Radius:    s.params.HandRadius,
			Strength:  s.params.HandForce,
			Intensity: 1,
			Hand:      true,
		}
		if h.Open {
			src.Polarity = Repel
		}
		if h.Pinch {
			src.Intensity = s.params.PinchIntensity
		}
		out = append(out, src)
	}
	return out
}

func (s *Sim) drawIndicators(surface Surface, sources []Source) {
	for _, src := range sources {
		switch {
		case src.Pointing:
			surface.Line(src.Beam, src.Pos, 2, Paint{Color: colorLaser, Alpha: 0.7})
			surface.Dot(src.Pos, 4, Paint{Color: colorLaser, Alpha: 1})
			surface.Ring(src.Pos, src.Radius, 1, Paint{Color: colorLaser, Alpha: 0.25})
		case src.Polarity == Repel:
			surface.Ring(src.Pos, src.Radius*0.25, 2, Paint{Color: colorCyan, Alpha: 0.6})
		default:
			surface.Dot(src.Pos, src.Radius*0.1, Paint{Color: colorAmber, Alpha: 0.5})
		}
	}
	if s.hasPointer {
		s.trail.Draw(surface)
		drawCursor(surface, s.pointer)
	}
}

// spawnGestureEffects adds the gesture-driven effects for this frame: a
// beam between two open palms, and the occasional ripple under a closed
// palm that is touching particles.
func (s *Sim) spawnGestureEffects(sources []Source) {
	if len(sources) == 0 {
		return
	}
	var open []r2.Vec
	for _, src := range sources {
		switch {
		case src.Pointing:
		case src.Polarity == Repel:
			open = append(open, src.Pos)
		case src.Polarity == Attract:
			if s.near(src) && s.rng.Float64() < s.params.RippleChance {
				s.effects.Add(NewRipple(src.Pos, s.params.RippleMaxRadius, s.params.RippleSpeed, ToneGesture))
			}
		}
	}
	if len(sources) == 2 && len(open) == 2 {
		s.effects.Add(NewBeam(open[0], open[1], s.params.BeamDecay))
	}
}

func (s *Sim) near(src Source) bool {
	r := src.Radius * src.Radius
	for i := range s.particles {
		if r2.Norm2(r2.Sub(s.particles[i].Pos, src.Pos)) < r {
			return true
		}
	}
	return false
}
