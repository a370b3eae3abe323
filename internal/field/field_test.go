package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/spatial/r2"
)

type recordingSurface struct {
	clears int
	dots   int
	rings  []r2.Vec
	lines  int
}

func (r *recordingSurface) Clear()                               { r.clears++ }
func (r *recordingSurface) Dot(r2.Vec, float64, Paint)           { r.dots++ }
func (r *recordingSurface) Ring(c r2.Vec, _, _ float64, _ Paint) { r.rings = append(r.rings, c) }
func (r *recordingSurface) Line(_, _ r2.Vec, _ float64, _ Paint) { r.lines++ }

func newTestSim(t *testing.T, w, h float64) *Sim {
	t.Helper()
	return New(DefaultParams(), w, h, zaptest.NewLogger(t).Sugar(), rand.New(rand.NewSource(7)))
}

func TestStepKeepsParticlesInsideOverscan(t *testing.T) {
	b := Bounds{W: 200, H: 100, Margin: 20}
	rng := rand.New(rand.NewSource(1))
	ps := make([]Particle, 50)
	for i := range ps {
		ps[i] = newParticle(rng, b, DefaultParams())
		// Large velocities so particles cross the edges many times.
		ps[i].Vel = r2.Vec{X: (rng.Float64() - 0.5) * 400, Y: (rng.Float64() - 0.5) * 400}
		ps[i].Base = ps[i].Vel
	}
	for step := 0; step < 1000; step++ {
		for i := range ps {
			ps[i].Step(b, 0.02)
			require.Truef(t, b.Contains(ps[i].Pos), "particle %d escaped to %v at step %d", i, ps[i].Pos, step)
		}
	}
}

func TestWrapPreservesVelocity(t *testing.T) {
	b := Bounds{W: 100, H: 100, Margin: 10}
	p := Particle{Pos: r2.Vec{X: 109.5, Y: 50}, Vel: r2.Vec{X: 1, Y: 0}, Base: r2.Vec{X: 1, Y: 0}}
	p.Step(b, 0.02)
	assert.InDelta(t, -9.5, p.Pos.X, 1e-9)
	assert.Equal(t, r2.Vec{X: 1, Y: 0}, p.Vel)
}

func TestVelocityRelaxesToBase(t *testing.T) {
	b := Bounds{W: 1000, H: 1000, Margin: 20}
	p := Particle{
		Pos:  r2.Vec{X: 500, Y: 500},
		Vel:  r2.Vec{X: 6, Y: -4},
		Base: r2.Vec{X: 0.2, Y: 0.1},
	}
	for i := 0; i < 1000; i++ {
		p.Step(b, 0.02)
	}
	assert.Less(t, r2.Norm(r2.Sub(p.Vel, p.Base)), 1e-6)
	assert.InDelta(t, r2.Norm(p.Base), p.Speed(), 1e-6)
}

func TestApplyForceAccumulatesAndClampsIntensity(t *testing.T) {
	var p Particle
	p.ApplyForce(1, 0, 1)
	p.ApplyForce(0.5, 2, 1)
	assert.Equal(t, r2.Vec{X: 1.5, Y: 2}, p.Vel)
	assert.True(t, p.Influenced)

	var q Particle
	q.ApplyForce(1, 1, 5)
	assert.Equal(t, r2.Vec{X: 2, Y: 2}, q.Vel)
	q.ApplyForce(1, 1, -1)
	assert.Equal(t, r2.Vec{X: 2, Y: 2}, q.Vel)
}

func TestStepClearsInfluenceButKeepsLit(t *testing.T) {
	b := Bounds{W: 100, H: 100}
	p := Particle{Pos: r2.Vec{X: 50, Y: 50}, Alpha: 0.3, BaseAlpha: 0.3}
	p.ApplyForce(0, 0, 1)
	p.Step(b, 0.02)
	assert.False(t, p.Influenced)
	assert.True(t, p.Lit)
	assert.Greater(t, p.Alpha, 0.3)

	p.Step(b, 0.02)
	assert.False(t, p.Lit)
}

func TestForceAtFalloffAndZeroDistance(t *testing.T) {
	s := Source{Pos: r2.Vec{X: 100, Y: 100}, Polarity: Repel, Radius: 150, Strength: 0.15, Intensity: 1}

	f, ok := ForceAt(s, r2.Vec{X: 100, Y: 100})
	assert.False(t, ok, "zero distance must be skipped")
	assert.False(t, math.IsNaN(f.X) || math.IsNaN(f.Y))

	f, ok = ForceAt(s, r2.Vec{X: 100 + 1e-9, Y: 100})
	require.True(t, ok)
	assert.InDelta(t, 0.15, r2.Norm(f), 1e-9)
	assert.Greater(t, f.X, 0.0, "repel pushes away from the source")

	_, ok = ForceAt(s, r2.Vec{X: 250, Y: 100})
	assert.False(t, ok, "distance equal to radius is outside")

	half, ok := ForceAt(s, r2.Vec{X: 175, Y: 100})
	require.True(t, ok)
	assert.InDelta(t, 0.075, r2.Norm(half), 1e-9)

	s.Polarity = Attract
	pull, ok := ForceAt(s, r2.Vec{X: 175, Y: 100})
	require.True(t, ok)
	assert.Less(t, pull.X, 0.0)
}

func TestHandSuppressesPointer(t *testing.T) {
	ps := []Particle{{Pos: r2.Vec{X: 10, Y: 0}}}
	pointer := Source{Pos: r2.Vec{}, Polarity: Repel, Radius: 100, Strength: 1, Intensity: 1}
	hand := Source{Pos: r2.Vec{X: 1000, Y: 1000}, Polarity: Repel, Radius: 50, Strength: 1, Intensity: 1, Hand: true}

	r := NewResolver(rand.New(rand.NewSource(1)))
	r.Resolve(ps, &pointer, []Source{hand})
	assert.Equal(t, r2.Vec{}, ps[0].Vel, "pointer must be ignored while a hand is present")

	r.Resolve(ps, &pointer, nil)
	assert.Greater(t, ps[0].Vel.X, 0.0)
}

func TestPointingJittersAndTintsLaser(t *testing.T) {
	ps := []Particle{
		{Pos: r2.Vec{X: 5, Y: 5}, Tint: colorParticle},
		{Pos: r2.Vec{X: 500, Y: 500}, Tint: colorParticle},
	}
	laser := Source{Pos: r2.Vec{}, Radius: 60, Strength: 1.5, Intensity: 1, Hand: true, Pointing: true}
	NewResolver(rand.New(rand.NewSource(3))).Resolve(ps, nil, []Source{laser})

	assert.True(t, ps[0].Influenced)
	assert.Equal(t, colorLaser, ps[0].Tint)
	assert.False(t, ps[1].Influenced)
	assert.LessOrEqual(t, math.Abs(ps[0].Vel.X), 1.5)
}

func TestConnectionsStrictThresholdAndMonotoneAlpha(t *testing.T) {
	ps := []Particle{
		{Pos: r2.Vec{X: 0, Y: 0}},
		{Pos: r2.Vec{X: 150, Y: 0}},
		{Pos: r2.Vec{X: 0, Y: 149.999}},
	}
	edges := Connections(ps, 150, 0.12, false, nil)
	require.Len(t, edges, 1)
	assert.Equal(t, 0, edges[0].A)
	assert.Equal(t, 2, edges[0].B)

	prev := math.Inf(1)
	for d := 0.0; d < 150; d += 7.5 {
		a := EdgeAlpha(d, 150, 0.12)
		assert.Less(t, a, prev)
		prev = a
	}
	assert.InDelta(t, 0.12, EdgeAlpha(0, 150, 0.12), 1e-12)
	assert.Zero(t, EdgeAlpha(150, 150, 0.12))
}

func TestConnectionsHighlightOnlyWhileTracking(t *testing.T) {
	ps := []Particle{
		{Pos: r2.Vec{X: 0, Y: 0}, Lit: true},
		{Pos: r2.Vec{X: 10, Y: 0}},
	}
	assert.False(t, Connections(ps, 150, 0.1, false, nil)[0].Highlight)
	assert.True(t, Connections(ps, 150, 0.1, true, nil)[0].Highlight)
}

func TestRipplePrunedWhenItReachesMaxRadius(t *testing.T) {
	var pool Pool
	pool.Add(NewRipple(r2.Vec{X: 100, Y: 100}, 100, 2, ToneNeutral))
	surface := &recordingSurface{}

	for frame := 1; frame < 50; frame++ {
		pool.Step(surface)
		require.Equalf(t, 1, pool.Len(), "ripple removed early at frame %d", frame)
	}
	pool.Step(surface)
	assert.Zero(t, pool.Len())
	assert.Len(t, surface.rings, 50, "ripple must be drawn on its final frame too")
}

func TestBeamLifeDecaysToRemoval(t *testing.T) {
	var pool Pool
	pool.Add(NewBeam(r2.Vec{}, r2.Vec{X: 10}, 0.25))
	surface := &recordingSurface{}
	for i := 0; i < 3; i++ {
		pool.Step(surface)
		require.Equal(t, 1, pool.Len())
	}
	pool.Step(surface)
	assert.Zero(t, pool.Len())
	assert.Positive(t, surface.lines)
}

func TestClickSpawnsNeutralRippleAndExpires(t *testing.T) {
	s := newTestSim(t, 800, 600)
	var heard []Effect
	s.OnRipple(func(e Effect) { heard = append(heard, e) })

	s.Click(100, 100, false)
	effects := s.Effects()
	require.Len(t, effects, 1)
	assert.Equal(t, KindRipple, effects[0].Kind)
	assert.Equal(t, ToneNeutral, effects[0].Tone)
	assert.Equal(t, r2.Vec{X: 100, Y: 100}, effects[0].Origin)
	assert.Len(t, heard, 1)

	p := s.Params()
	frames := int(p.RippleMaxRadius / p.RippleSpeed)
	surface := &recordingSurface{}
	for i := 0; i < frames-1; i++ {
		s.Frame(surface)
	}
	assert.Equal(t, 1, len(s.Effects()))
	s.Frame(surface)
	assert.Empty(t, s.Effects())
}

func TestResizeReinitialisesWithinNewBounds(t *testing.T) {
	s := newTestSim(t, 800, 600)
	s.Frame(&recordingSurface{})

	s.Resize(375, 667)
	ps := s.Particles()
	require.Len(t, ps, DefaultParams().Count)
	for i, p := range ps {
		assert.Truef(t, p.Pos.X >= 0 && p.Pos.X <= 375 && p.Pos.Y >= 0 && p.Pos.Y <= 667,
			"particle %d at %v outside 375x667", i, p.Pos)
	}
}

func TestTwoOpenHandsSpawnBeam(t *testing.T) {
	s := newTestSim(t, 800, 600)
	s.SetTracking(true)
	s.EnqueueHands([]Hand{
		{Label: "Left", Palm: r2.Vec{X: 100, Y: 300}, Open: true},
		{Label: "Right", Palm: r2.Vec{X: 700, Y: 300}, Open: true},
	})
	s.Frame(&recordingSurface{})
	assert.Equal(t, 1, s.effects.Count(KindBeam))

	s.effects.Reset()
	s.EnqueueHands([]Hand{
		{Label: "Left", Palm: r2.Vec{X: 100, Y: 300}, Open: true},
		{Label: "Right", Palm: r2.Vec{X: 700, Y: 300}, Open: false},
	})
	s.Frame(&recordingSurface{})
	assert.Zero(t, s.effects.Count(KindBeam))

	s.EnqueueHands([]Hand{{Label: "Left", Palm: r2.Vec{X: 100, Y: 300}, Open: true}})
	s.Frame(&recordingSurface{})
	assert.Zero(t, s.effects.Count(KindBeam))
}

func TestEmptyHandFrameClearsHandInfluence(t *testing.T) {
	s := newTestSim(t, 800, 600)
	s.EnqueueHands([]Hand{{Palm: r2.Vec{X: 400, Y: 300}, Open: true}})
	s.Frame(&recordingSurface{})
	require.Len(t, s.Hands(), 1)

	s.EnqueueHands(nil)
	s.Frame(&recordingSurface{})
	assert.Empty(t, s.Hands())
}

func TestFrameOrderRunsHookBeforeEffects(t *testing.T) {
	s := newTestSim(t, 400, 300)
	surface := &recordingSurface{}
	s.Click(10, 10, true)

	var ringsAtHook int
	s.SetAfterIndicators(func() { ringsAtHook = len(surface.rings) })
	s.Frame(surface)

	assert.Equal(t, 1, surface.clears)
	assert.Zero(t, ringsAtHook, "effects must draw after the hook")
	assert.Len(t, surface.rings, 1)
}

func TestTrailKeepsMostRecentPoints(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 5; i++ {
		tr.Push(r2.Vec{X: float64(i)})
	}
	pts := tr.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, 2.0, pts[0].X)
	assert.Equal(t, 4.0, pts[2].X)

	tr.Clear()
	assert.Empty(t, tr.Points())
}
