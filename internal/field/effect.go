package field

import "gonum.org/v1/gonum/spatial/r2"

// Kind discriminates the variants of Effect.
type Kind uint8

const (
	KindRipple Kind = iota
	KindBeam
)

func (k Kind) String() string {
	switch k {
	case KindBeam:
		return "beam"
	default:
		return "ripple"
	}
}

// Tone is the colour family of a ripple.
type Tone uint8

const (
	ToneNeutral Tone = iota // plain click
	ToneAccent              // click with a modifier held
	ToneGesture             // spawned by a closed palm
)

func (t Tone) paint() Paint {
	switch t {
	case ToneAccent:
		return Paint{Color: colorCyan, Alpha: 0.6}
	case ToneGesture:
		return Paint{Color: colorMagenta, Alpha: 0.5}
	default:
		return Paint{Color: colorNeutral, Alpha: 0.5}
	}
}

// Effect is a short-lived overlay. Ripple fields are Radius, MaxRadius,
// Speed and Tone; beam fields are End, Life and Decay.
type Effect struct {
	Kind   Kind
	Origin r2.Vec
	End    r2.Vec

	Radius    float64
	MaxRadius float64
	Speed     float64
	Tone      Tone

	Life  float64
	Decay float64
}

// NewRipple returns a ripple at origin that grows by speed per frame.
func NewRipple(origin r2.Vec, maxRadius, speed float64, tone Tone) Effect {
	return Effect{
		Kind:      KindRipple,
		Origin:    origin,
		MaxRadius: maxRadius,
		Speed:     speed,
		Tone:      tone,
	}
}

// NewBeam returns a force-field beam between a and b at full life.
func NewBeam(a, b r2.Vec, decay float64) Effect {
	return Effect{
		Kind:   KindBeam,
		Origin: a,
		End:    b,
		Life:   1,
		Decay:  decay,
	}
}

// Update advances the effect by one frame and reports whether it is still
// alive afterwards.
func (e *Effect) Update() bool {
	switch e.Kind {
	case KindBeam:
		e.Life -= e.Decay
		if e.Life <= 0 {
			e.Life = 0
			return false
		}
		return true
	default:
		e.Radius += e.Speed
		if e.Radius >= e.MaxRadius {
			e.Radius = e.MaxRadius
			return false
		}
		return true
	}
}

// Remaining is the fraction of life left, in [0,1].
func (e *Effect) Remaining() float64 {
	if e.Kind == KindBeam {
		return clamp(e.Life, 0, 1)
	}
	if e.MaxRadius <= 0 {
		return 0
	}
	return clamp(1-e.Radius/e.MaxRadius, 0, 1)
}

// Draw renders the effect in its current state.
func (e *Effect) Draw(s Surface) {
	life := e.Remaining()
	switch e.Kind {
	case KindBeam:
		from := Paint{Color: colorCyan, Alpha: 0.8 * life}
		to := Paint{Color: colorMagenta, Alpha: 0.8 * life}
		GradientLine(s, e.Origin, e.End, 2*life+1, from, to, 8)
		glow := 4 + 8*life
		s.Dot(e.Origin, glow, Paint{Color: colorCyan, Alpha: 0.3 * life})
		s.Dot(e.End, glow, Paint{Color: colorMagenta, Alpha: 0.3 * life})
	default:
		p := e.Tone.paint()
		p.Alpha *= life
		s.Ring(e.Origin, e.Radius, 2, p)
	}
}

// Pool holds live effects. Effects are appended on trigger and pruned by Step.
type Pool struct {
	effects []Effect
}

// Add appends an effect.
func (p *Pool) Add(e Effect) {
	p.effects = append(p.effects, e)
}

// Len returns the number of live effects.
func (p *Pool) Len() int {
	return len(p.effects)
}

// Effects returns the live effects. The slice is owned by the pool.
func (p *Pool) Effects() []Effect {
	return p.effects
}

// Count returns the number of live effects of kind k.
func (p *Pool) Count(k Kind) int {
	n := 0
	for i := range p.effects {
		if p.effects[i].Kind == k {
			n++
		}
	}
	return n
}

// Step updates every effect once, draws it once whether or not it survived,
// and drops the expired ones.
func (p *Pool) Step(s Surface) {
	kept := p.effects[:0]
	for i := range p.effects {
		e := p.effects[i]
		alive := e.Update()
		e.Draw(s)
		if alive {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(p.effects); i++ {
		p.effects[i] = Effect{}
	}
	p.effects = kept
}

// Reset drops all effects.
func (p *Pool) Reset() {
	p.effects = p.effects[:0]
}
