package window

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/tilt"
)

func newTestGame(t *testing.T, tracker *gesture.Tracker) *Game {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	rng := rand.New(rand.NewSource(7))
	tp := tilt.DefaultParams()
	g := New(Options{
		Sim:     field.New(field.DefaultParams(), 100, 100, log, rng),
		Banner:  glitch.New("AGENTIC CODING", glitch.DefaultParams(), rng),
		Deck:    tilt.NewConceptDeck(tp, 60),
		Tilt:    tp,
		Tracker: tracker,
		Log:     log,
	})
	g.Layout(1000, 600)
	require.NoError(t, g.step(input{}, time.Now()))
	return g
}

func TestToColorPremultiplies(t *testing.T) {
	c := toColor(field.Paint{Color: colorful.Color{R: 1, G: 1, B: 1}, Alpha: 0.5})
	assert.Equal(t, uint8(128), c.R)
	assert.Equal(t, uint8(128), c.A)

	c = toColor(field.Paint{Color: colorful.Color{R: 1, G: 0, B: 0}, Alpha: 3})
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(255), c.A)
}

func TestDisplayListSkipsInvisiblePaint(t *testing.T) {
	var d DisplayList
	white := colorful.Color{R: 1, G: 1, B: 1}
	d.Dot(r2.Vec{X: 1, Y: 1}, 2, field.Paint{Color: white, Alpha: 1})
	d.Ring(r2.Vec{X: 1, Y: 1}, 10, 1, field.Paint{Color: white, Alpha: 0})
	d.Line(r2.Vec{}, r2.Vec{X: 5, Y: 5}, 1, field.Paint{Color: white, Alpha: 0.2})
	assert.Equal(t, 2, d.Len())

	d.Clear()
	assert.Equal(t, 0, d.Len())
}

func TestLayoutResizesFieldAndCards(t *testing.T) {
	g := newTestGame(t, nil)

	b := g.sim.Bounds()
	assert.Equal(t, 1000.0, b.W)
	assert.Equal(t, 600.0, b.H)

	cards := g.deck.Cards()
	require.Len(t, cards, 3)
	for i, c := range cards {
		assert.Greater(t, c.Rect.W, 0.0)
		assert.GreaterOrEqual(t, c.Rect.X, 0.0)
		assert.LessOrEqual(t, c.Rect.X+c.Rect.W, 1000.0)
		assert.Equal(t, 600-cardH-cardBottom, c.Rect.Y)
		if i > 0 {
			assert.Greater(t, c.Rect.X, cards[i-1].Rect.X+cards[i-1].Rect.W)
		}
	}
	assert.Greater(t, g.list.Len(), 0)
}

func TestClickOutsideCardsRipples(t *testing.T) {
	g := newTestGame(t, nil)

	require.NoError(t, g.step(input{x: 100, y: 100, inside: true, click: true}, time.Now()))
	effects := g.sim.Effects()
	require.Len(t, effects, 1)
	assert.Equal(t, field.KindRipple, effects[0].Kind)
	assert.Equal(t, field.ToneNeutral, effects[0].Tone)

	require.NoError(t, g.step(input{x: 300, y: 100, inside: true, click: true, accent: true}, time.Now()))
	assert.Equal(t, field.ToneAccent, g.sim.Effects()[1].Tone)
}

func TestClickOnCardDoesNotRipple(t *testing.T) {
	g := newTestGame(t, nil)
	c := g.deck.Cards()[1].Rect.Center()

	require.NoError(t, g.step(input{x: c.X, y: c.Y, inside: true, click: true}, time.Now()))
	assert.Empty(t, g.sim.Effects())
	assert.True(t, g.deck.Cards()[1].Hovered())

	p, ok := g.sim.Pointer()
	assert.True(t, ok)
	assert.Equal(t, c, p)
}

func TestLeavingWindowClearsPointer(t *testing.T) {
	g := newTestGame(t, nil)
	c := g.deck.Cards()[0].Rect.Center()
	require.NoError(t, g.step(input{x: c.X, y: c.Y, inside: true}, time.Now()))

	require.NoError(t, g.step(input{}, time.Now()))
	_, ok := g.sim.Pointer()
	assert.False(t, ok)
	assert.False(t, g.deck.Cards()[0].Hovered())
}

func TestPauseHoldsFrames(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.step(input{pause: true}, time.Now()))
	frames := g.sim.Frames()
	require.NoError(t, g.step(input{}, time.Now()))
	assert.Equal(t, frames, g.sim.Frames())

	require.NoError(t, g.step(input{pause: true}, time.Now()))
	assert.Equal(t, frames+1, g.sim.Frames())
}

func TestQuitTerminates(t *testing.T) {
	g := newTestGame(t, nil)
	err := g.step(input{quit: true}, time.Now())
	assert.True(t, errors.Is(err, ebiten.Termination))
}

type chanFeed struct {
	frames chan gesture.Frame
	once   sync.Once
	closed chan struct{}
}

func (f *chanFeed) Next() (gesture.Frame, error) {
	select {
	case fr := <-f.frames:
		return fr, nil
	case <-f.closed:
		return gesture.Frame{}, io.EOF
	}
}

func (f *chanFeed) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func TestTrackerFramesReachField(t *testing.T) {
	feed := &chanFeed{frames: make(chan gesture.Frame, 1), closed: make(chan struct{})}
	tracker := gesture.NewTracker(func(context.Context) (gesture.Feed, error) { return feed, nil }, time.Second, zaptest.NewLogger(t).Sugar())
	tracker.Start(context.Background())
	t.Cleanup(func() { tracker.Close() })

	g := newTestGame(t, tracker)
	lm := make([]gesture.Landmark, gesture.LandmarkCount)
	for i := range lm {
		lm[i] = gesture.Landmark{X: 0.5, Y: 0.5}
	}
	feed.frames <- gesture.Frame{Hands: []gesture.Record{{Label: "Left", Landmarks: lm}}}

	require.Eventually(t, func() bool {
		if err := g.step(input{}, time.Now()); err != nil {
			return false
		}
		return len(g.sim.Hands()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, gesture.Ready, g.status)
	assert.True(t, g.sim.Tracking())
}

func TestTrackerFailureFallsBackToPointer(t *testing.T) {
	dial := func(context.Context) (gesture.Feed, error) { return nil, errors.New("no camera") }
	tracker := gesture.NewTracker(dial, time.Second, zaptest.NewLogger(t).Sugar())
	tracker.Start(context.Background())
	t.Cleanup(func() { tracker.Close() })

	g := newTestGame(t, tracker)
	require.Eventually(t, func() bool {
		_ = g.step(input{}, time.Now())
		return g.status == gesture.Unavailable
	}, time.Second, 5*time.Millisecond)
	assert.False(t, g.sim.Tracking())
	assert.Contains(t, g.statusLine(), "unavailable")
}
