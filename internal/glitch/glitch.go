// Package glitch scrambles a line of text and reveals it again one
// character at a time.
package glitch

import (
	"math/rand"
	"time"
)

// Charset is the pool scrambled characters are drawn from.
const Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@#$%&"

// stepsPerChar is how many reveal steps it takes to settle one character.
const stepsPerChar = 3

// Params tunes how often the text glitches and how fast it settles.
type Params struct {
	TriggerChance float64
	CheckInterval time.Duration
	RevealStep    time.Duration
	Charset       string
}

// DefaultParams returns the stock timing.
func DefaultParams() Params {
	return Params{
		TriggerChance: 0.05,
		CheckInterval: 2 * time.Second,
		RevealStep:    30 * time.Millisecond,
		Charset:       Charset,
	}
}

// Text is a glitching label. It is driven by the caller's clock and is not
// safe for concurrent use.
type Text struct {
	text    []rune
	charset []rune
	params  Params
	rng     *rand.Rand

	view      string
	animating bool
	steps     int
	nextStep  time.Time
	lastCheck time.Time
}

// New returns a settled label showing text.
func New(text string, p Params, rng *rand.Rand) *Text {
	if p.Charset == "" {
		p.Charset = Charset
	}
	return &Text{
		text:    []rune(text),
		charset: []rune(p.Charset),
		params:  p,
		rng:     rng,
		view:    text,
	}
}

// View returns the text as currently displayed.
func (g *Text) View() string { return g.view }

// Text returns the settled text.
func (g *Text) Text() string { return string(g.text) }

// SetText replaces the label and cancels any reveal in progress.
func (g *Text) SetText(text string) {
	g.text = []rune(text)
	g.view = text
	g.animating = false
}

// Animating reports whether a reveal is in progress.
func (g *Text) Animating() bool { return g.animating }

// Trigger starts a reveal at now. It does nothing while one is running.
func (g *Text) Trigger(now time.Time) bool {
	if g.animating {
		return false
	}
	g.animating = true
	g.steps = 0
	g.nextStep = now
	return true
}

// Update advances the label to now and returns its view. Outside a reveal
// it rolls for a new glitch once per check interval.
func (g *Text) Update(now time.Time) string {
	if !g.animating {
		if g.lastCheck.IsZero() {
			g.lastCheck = now
		}
		if now.Sub(g.lastCheck) >= g.params.CheckInterval {
			g.lastCheck = now
			if g.rng.Float64() < g.params.TriggerChance {
				g.Trigger(now)
			}
		}
	}
	for g.animating && !now.Before(g.nextStep) {
		g.step()
		g.nextStep = g.nextStep.Add(g.params.RevealStep)
	}
	return g.view
}

func (g *Text) step() {
	out := make([]rune, len(g.text))
	for i, r := range g.text {
		switch {
		case i*stepsPerChar < g.steps:
			out[i] = r
		case r == ' ':
			out[i] = ' '
		default:
			out[i] = g.charset[g.rng.Intn(len(g.charset))]
		}
	}
	g.view = string(out)
	if g.steps >= len(g.text)*stepsPerChar {
		g.animating = false
		g.view = string(g.text)
	}
	g.steps++
}
