// Package tilt computes the pointer-driven 3D tilt of flat cards and eases
// each card toward its target with critically tuned springs.
package tilt

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params tunes the tilt. MaxRotation is in degrees; Perspective is the
// viewer distance in the card's own units.
type Params struct {
	MaxRotation float64
	Scale       float64
	Perspective float64
	Frequency   float64
	Damping     float64
}

// DefaultParams returns the stock tilt.
func DefaultParams() Params {
	return Params{
		MaxRotation: 10,
		Scale:       1.02,
		Perspective: 1000,
		Frequency:   8,
		Damping:     0.7,
	}
}

// Rect is an axis-aligned card area in field pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Center returns the middle of r.
func (r Rect) Center() r2.Vec {
	return r2.Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Transform is the visual state of one card. Rotations are in degrees.
// Glow is the highlight position relative to the card's top-left corner.
type Transform struct {
	RotateX float64
	RotateY float64
	Scale   float64
	Glow    r2.Vec
}

// Flat is the resting transform.
func Flat() Transform {
	return Transform{Scale: 1}
}

// Target returns the transform for a pointer at p over r. The card leans
// away from the pointer on both axes, up to MaxRotation at the edges.
func Target(r Rect, p r2.Vec, prm Params) Transform {
	x := p.X - r.X
	y := p.Y - r.Y
	cx := r.W / 2
	cy := r.H / 2
	t := Transform{Scale: prm.Scale, Glow: r2.Vec{X: x, Y: y}}
	if cy > 0 {
		t.RotateX = (y - cy) / cy * -prm.MaxRotation
	}
	if cx > 0 {
		t.RotateY = (x - cx) / cx * prm.MaxRotation
	}
	return t
}

// Project returns the four corners of r (top-left, top-right,
// bottom-right, bottom-left) after applying t around the card centre and
// a perspective divide at distance perspective.
func (t Transform) Project(r Rect, perspective float64) [4]r2.Vec {
	c := r.Center()
	ax := t.RotateX * math.Pi / 180
	ay := t.RotateY * math.Pi / 180
	hw, hh := r.W/2*t.Scale, r.H/2*t.Scale
	local := [4]r2.Vec{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}

	var out [4]r2.Vec
	for i, p := range local {
		// Screen y grows downwards, so a positive rotateX tips the top
		// edge away from the viewer.
		y := p.Y * math.Cos(ax)
		z := p.Y * math.Sin(ax)
		x := p.X*math.Cos(ay) - z*math.Sin(ay)
		z = p.X*math.Sin(ay) + z*math.Cos(ay)

		f := 1.0
		if perspective > 0 && perspective-z > 0 {
			f = perspective / (perspective - z)
		}
		out[i] = r2.Vec{X: c.X + x*f, Y: c.Y + y*f}
	}
	return out
}

// Card is one tilting card with spring-eased state.
type Card struct {
	Title string
	Body  string
	Rect  Rect

	params  Params
	spring  harmonica.Spring
	pos     [3]float64
	vel     [3]float64
	target  Transform
	hovered bool
}

// NewCard returns a flat card. fps is the rate Step is called at.
func NewCard(title, body string, p Params, fps int) *Card {
	return &Card{
		Title:  title,
		Body:   body,
		params: p,
		spring: harmonica.NewSpring(harmonica.FPS(fps), p.Frequency, p.Damping),
		pos:    [3]float64{0, 0, 1},
		target: Flat(),
	}
}

// Hover aims the card at a pointer over it. It reports false, and lets the
// card fall flat, when p is outside.
func (c *Card) Hover(p r2.Vec) bool {
	if !c.Rect.Contains(p) {
		c.Leave()
		return false
	}
	c.target = Target(c.Rect, p, c.params)
	c.hovered = true
	return true
}

// Leave resets the target to flat.
func (c *Card) Leave() {
	if !c.hovered {
		return
	}
	glow := c.target.Glow
	c.target = Flat()
	c.target.Glow = glow
	c.hovered = false
}

// Hovered reports whether the pointer is over the card.
func (c *Card) Hovered() bool { return c.hovered }

// Step eases the card one frame toward its target.
func (c *Card) Step() {
	goal := [3]float64{c.target.RotateX, c.target.RotateY, c.target.Scale}
	for i := range goal {
		c.pos[i], c.vel[i] = c.spring.Update(c.pos[i], c.vel[i], goal[i])
	}
}

// Current returns the eased transform.
func (c *Card) Current() Transform {
	return Transform{
		RotateX: c.pos[0],
		RotateY: c.pos[1],
		Scale:   c.pos[2],
		Glow:    c.target.Glow,
	}
}

// Settled reports whether the card is at rest at its target.
func (c *Card) Settled() bool {
	goal := [3]float64{c.target.RotateX, c.target.RotateY, c.target.Scale}
	for i := range goal {
		if math.Abs(c.pos[i]-goal[i]) > 1e-3 || math.Abs(c.vel[i]) > 1e-3 {
			return false
		}
	}
	return true
}

// Deck is a row of cards sharing one pointer.
type Deck struct {
	cards []*Card
}

// NewDeck groups cards.
func NewDeck(cards ...*Card) *Deck {
	return &Deck{cards: cards}
}

// Copy is the text on one card.
type Copy struct {
	Title string
	Body  string
}

// Concepts are the three stock cards.
var Concepts = []Copy{
	{Title: "The Inbox", Body: "Agents report back here"},
	{Title: "The Playground", Body: "Try ideas without risk"},
	{Title: "Workspaces", Body: "Parallel sessions, one view"},
}

// NewConceptDeck returns a deck of the stock cards. Rects are left for the
// front end to lay out.
func NewConceptDeck(p Params, fps int) *Deck {
	cards := make([]*Card, len(Concepts))
	for i, c := range Concepts {
		cards[i] = NewCard(c.Title, c.Body, p, fps)
	}
	return NewDeck(cards...)
}

// Cards returns the cards in order.
func (d *Deck) Cards() []*Card { return d.cards }

// Pointer hovers every card with p and returns the index of the card under
// it, or -1.
func (d *Deck) Pointer(p r2.Vec) int {
	hit := -1
	for i, c := range d.cards {
		if c.Hover(p) {
			hit = i
		}
	}
	return hit
}

// Leave flattens every card.
func (d *Deck) Leave() {
	for _, c := range d.cards {
		c.Leave()
	}
}

// Step eases every card one frame.
func (d *Deck) Step() {
	for _, c := range d.cards {
		c.Step()
	}
}
