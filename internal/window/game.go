package window

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/tilt"
	"github.com/olivier-w/driftfield/internal/util"
)

const (
	cardW      = 240.0
	cardH      = 120.0
	cardGap    = 24.0
	cardBottom = 40.0
)

var (
	cardEdge  = color.RGBA{R: 70, G: 70, B: 80, A: 160}
	cardHover = color.RGBA{R: 0, G: 180, B: 190, A: 220}
	cardGlow  = color.RGBA{R: 0, G: 40, B: 45, A: 45}
)

// Chimer plays ripple sounds.
type Chimer interface {
	Ripple(e field.Effect)
	SetMuted(bool)
	Muted() bool
}

// Options wires the game to its collaborators. Tracker and Sound may be
// nil.
type Options struct {
	Sim     *field.Sim
	Banner  *glitch.Text
	Deck    *tilt.Deck
	Tilt    tilt.Params
	Tracker *gesture.Tracker
	Adapter *gesture.Adapter
	Sound   Chimer
	Log     *zap.SugaredLogger
}

// Game is the ebiten front end. Update advances the field once per tick and
// Draw replays the last frame with the cards and text on top.
type Game struct {
	sim     *field.Sim
	list    DisplayList
	banner  *glitch.Text
	deck    *tilt.Deck
	tilt    tilt.Params
	tracker *gesture.Tracker
	adapter *gesture.Adapter
	sound   Chimer
	log     *zap.SugaredLogger

	width, height int
	outW, outH    int

	paused  bool
	status  gesture.Status
	started time.Time
	now     time.Time
}

// New creates a Game.
func New(o Options) *Game {
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	if o.Adapter == nil {
		o.Adapter = gesture.NewAdapter(gesture.DefaultParams())
	}
	if o.Deck == nil {
		o.Deck = tilt.NewDeck()
	}
	g := &Game{
		sim:     o.Sim,
		banner:  o.Banner,
		deck:    o.Deck,
		tilt:    o.Tilt,
		tracker: o.Tracker,
		adapter: o.Adapter,
		sound:   o.Sound,
		log:     o.Log,
	}
	g.sim.SetAfterIndicators(g.deck.Step)
	if g.sound != nil {
		g.sim.OnRipple(g.sound.Ripple)
	}
	return g
}

// input is one tick's worth of pointer and key state.
type input struct {
	x, y   float64
	inside bool
	click  bool
	accent bool

	pause, reset, glitch, mute, quit bool
}

func (g *Game) readInput() input {
	x, y := ebiten.CursorPosition()
	return input{
		x:      float64(x),
		y:      float64(y),
		inside: ebiten.IsFocused() && x >= 0 && y >= 0 && x < g.width && y < g.height,
		click:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		accent: ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyControl),
		pause:  inpututil.IsKeyJustPressed(ebiten.KeySpace),
		reset:  inpututil.IsKeyJustPressed(ebiten.KeyR),
		glitch: inpututil.IsKeyJustPressed(ebiten.KeyG),
		mute:   inpututil.IsKeyJustPressed(ebiten.KeyS),
		quit:   inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
}

func (g *Game) Update() error {
	return g.step(g.readInput(), time.Now())
}

func (g *Game) step(in input, now time.Time) error {
	if in.quit {
		return ebiten.Termination
	}
	if g.outW != g.width || g.outH != g.height {
		g.resize(g.outW, g.outH)
	}
	g.pollTracker()

	if in.pause {
		g.paused = !g.paused
	}
	if in.reset {
		g.sim.Reset()
	}
	if in.glitch && g.banner != nil {
		g.banner.Trigger(now)
	}
	if in.mute && g.sound != nil {
		g.sound.SetMuted(!g.sound.Muted())
	}
	g.pointer(in)

	if g.paused {
		return nil
	}
	if g.started.IsZero() {
		g.started = now
	}
	g.now = now
	if g.banner != nil {
		g.banner.Update(now)
	}
	g.sim.Frame(&g.list)
	return nil
}

func (g *Game) pointer(in input) {
	if !in.inside {
		g.sim.ClearPointer()
		g.deck.Leave()
		return
	}
	p := r2.Vec{X: in.x, Y: in.y}
	g.sim.SetPointer(p.X, p.Y)
	overCard := g.deck.Pointer(p) >= 0
	if in.click && !overCard {
		g.sim.Click(p.X, p.Y, in.accent)
	}
}

// pollTracker moves any pending status and the latest detection into the
// simulation without blocking.
func (g *Game) pollTracker() {
	if g.tracker == nil {
		return
	}
drain:
	for {
		select {
		case s := <-g.tracker.Status():
			g.setStatus(s)
		default:
			break drain
		}
	}
	if g.status == gesture.Unavailable {
		return
	}
	select {
	case f := <-g.tracker.Frames():
		b := g.sim.Bounds()
		g.sim.EnqueueHands(g.adapter.Update(f.Hands, b.W, b.H))
	default:
	}
}

func (g *Game) setStatus(s gesture.Status) {
	g.status = s
	switch s {
	case gesture.Ready:
		g.sim.SetTracking(true)
		g.log.Infow("hand tracking active")
	case gesture.Unavailable:
		g.sim.SetTracking(false)
		g.adapter.Reset()
		g.log.Warnw("hand tracking unavailable, pointer only")
	}
}

func (g *Game) resize(w, h int) {
	g.width, g.height = w, h
	g.sim.Resize(float64(w), float64(h))
	g.layoutCards()
	g.log.Debugw("window resized", "w", w, "h", h)
}

// layoutCards centres the cards in a row near the bottom edge.
func (g *Game) layoutCards() {
	cards := g.deck.Cards()
	if len(cards) == 0 {
		return
	}
	g.deck.Leave()
	n := float64(len(cards))
	w := math.Min(cardW, (float64(g.width)-(n+1)*cardGap)/n)
	if w < 0 {
		w = 0
	}
	x := (float64(g.width) - n*w - (n-1)*cardGap) / 2
	y := float64(g.height) - cardH - cardBottom
	for i, c := range cards {
		c.Rect = tilt.Rect{X: x + float64(i)*(w+cardGap), Y: y, W: w, H: cardH}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.list.Replay(screen)
	for _, c := range g.deck.Cards() {
		g.drawCard(screen, c)
	}
	g.drawText(screen)
}

func (g *Game) drawCard(screen *ebiten.Image, c *tilt.Card) {
	if c.Rect.W <= 0 {
		return
	}
	cur := c.Current()
	quad := cur.Project(c.Rect, g.tilt.Perspective)
	edge := cardEdge
	if c.Hovered() {
		edge = cardHover
		vector.DrawFilledCircle(screen,
			float32(c.Rect.X+cur.Glow.X), float32(c.Rect.Y+cur.Glow.Y),
			float32(c.Rect.W/3), cardGlow, true)
	}
	for i := range quad {
		a, b := quad[i], quad[(i+1)%len(quad)]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1.5, edge, true)
	}
	x, y := int(quad[0].X)+12, int(quad[0].Y)+12
	ebitenutil.DebugPrintAt(screen, c.Title, x, y)
	ebitenutil.DebugPrintAt(screen, c.Body, x, y+20)
}

func (g *Game) drawText(screen *ebiten.Image) {
	if g.banner != nil {
		text := g.banner.View()
		// The debug font is 6px wide.
		ebitenutil.DebugPrintAt(screen, text, (g.width-len(text)*6)/2, 16)
	}
	ebitenutil.DebugPrintAt(screen, "ANTI-GRAVITY", 16, 16)
	ebitenutil.DebugPrintAt(screen, g.statusLine(), 16, g.height-20)
}

func (g *Game) statusLine() string {
	s := util.FormatElapsed(g.now.Sub(g.started))
	if g.paused {
		s += "  paused"
	}
	if g.sound != nil && g.sound.Muted() {
		s += "  muted"
	}
	s += fmt.Sprintf("  %s  %s  %s",
		util.Count(len(g.sim.Particles()), "particle"),
		util.Count(len(g.sim.Edges()), "link"),
		util.Count(len(g.sim.Hands()), "hand"))
	if g.tracker != nil {
		s += "  gestures " + g.status.String()
	}
	return s
}

// Layout follows the window size one to one. The field is resized on the
// next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outW, g.outH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
