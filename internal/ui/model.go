package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/canvas"
	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/tilt"
	"github.com/olivier-w/driftfield/internal/util"
)

// Chimer plays ripple sounds.
type Chimer interface {
	Ripple(e field.Effect)
	SetMuted(bool)
	Muted() bool
	Close() error
}

// Options wires the model to its collaborators. Tracker and Sound may be
// nil.
type Options struct {
	Sim          *field.Sim
	Banner       *glitch.Text
	Deck         *tilt.Deck
	Tilt         tilt.Params
	Tracker      *gesture.Tracker
	Adapter      *gesture.Adapter
	Sound        Chimer
	FPS          int
	Scale        float64
	SetupTimeout time.Duration
	Log          *zap.SugaredLogger
}

// Model is the Bubbletea model for the driftfield TUI.
type Model struct {
	sim     *field.Sim
	surface *canvas.Braille
	banner  *glitch.Text
	deck    *tilt.Deck
	tilt    tilt.Params
	tracker *gesture.Tracker
	adapter *gesture.Adapter
	sound   Chimer
	log     *zap.SugaredLogger

	fps          int
	scale        float64
	setupTimeout time.Duration

	width  int
	height int
	layout Layout
	gen    uint64

	paused   bool
	quitting bool
	status   gesture.Status
	started  time.Time
	now      time.Time

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	title    textinput.Model
	editing  bool
}

// New creates a Model. Call Init through tea.NewProgram to start the loop.
func New(o Options) Model {
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Scale <= 0 {
		o.Scale = 4
	}
	if o.Adapter == nil {
		o.Adapter = gesture.NewAdapter(gesture.DefaultParams())
	}
	if o.Deck == nil {
		o.Deck = tilt.NewDeck()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	p := progress.New(
		progress.WithScaledGradient("#00F3FF", "#FF5FD7"),
		progress.WithoutPercentage(),
		progress.WithWidth(12),
	)

	ti := textinput.New()
	ti.Prompt = "title: "
	ti.CharLimit = 40

	m := Model{
		sim:          o.Sim,
		surface:      canvas.NewBraille(1, 1, o.Scale),
		banner:       o.Banner,
		deck:         o.Deck,
		tilt:         o.Tilt,
		tracker:      o.Tracker,
		adapter:      o.Adapter,
		sound:        o.Sound,
		log:          o.Log,
		fps:          o.FPS,
		scale:        o.Scale,
		setupTimeout: o.SetupTimeout,
		keys:         newKeyMap(),
		help:         help.New(),
		spinner:      s,
		progress:     p,
		title:        ti,
	}
	m.sim.SetAfterIndicators(m.deck.Step)
	if m.sound != nil {
		m.sim.OnRipple(m.sound.Ripple)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		frameCmd(m.gen, m.fps),
		tea.SetWindowTitle("driftfield"),
	}
	if m.tracker != nil {
		cmds = append(cmds, m.spinner.Tick, waitForStatus(m.tracker), waitForFrame(m.tracker))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.BlurMsg:
		m.sim.ClearPointer()
		m.deck.Leave()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.relayout()

	case frameMsg:
		if msg.gen != m.gen || m.paused || m.quitting {
			return m, nil
		}
		if m.started.IsZero() {
			m.started = msg.at
		}
		m.now = msg.at
		if m.banner != nil {
			m.banner.Update(msg.at)
		}
		m.sim.Frame(m.surface)
		return m, frameCmd(m.gen, m.fps)

	case spinner.TickMsg:
		if m.status != gesture.Pending || m.tracker == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case gestureStatusMsg:
		m.status = msg.status
		switch msg.status {
		case gesture.Ready:
			m.sim.SetTracking(true)
			m.log.Infow("hand tracking active")
			return m, waitForStatus(m.tracker)
		case gesture.Unavailable:
			m.sim.SetTracking(false)
			m.adapter.Reset()
			m.log.Warnw("hand tracking unavailable, pointer only")
		}
		return m, nil

	case gestureFrameMsg:
		if m.status == gesture.Unavailable {
			return m, nil
		}
		b := m.sim.Bounds()
		m.sim.EnqueueHands(m.adapter.Update(msg.frame.Hands, b.W, b.H))
		return m, waitForFrame(m.tracker)
	}

	if m.editing {
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			m.editing = false
			m.title.Blur()
			if text := strings.TrimSpace(m.title.Value()); text != "" && m.banner != nil {
				m.banner.SetText(strings.ToUpper(text))
				m.banner.Trigger(m.clock())
			}
			return m, nil
		case tea.KeyEsc:
			m.editing = false
			m.title.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m.quit()
		}
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		return m, cmd
	}

	if isQuit(msg) {
		return m.quit()
	}
	switch {
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if !m.paused {
			m.gen++
			return m, frameCmd(m.gen, m.fps)
		}
	case key.Matches(msg, m.keys.Reset):
		m.sim.Reset()
	case key.Matches(msg, m.keys.Layout):
		m.layout = m.layout.Next()
		return m, m.relayout()
	case key.Matches(msg, m.keys.Sound):
		if m.sound != nil {
			m.sound.SetMuted(!m.sound.Muted())
		}
	case key.Matches(msg, m.keys.Glitch):
		if m.banner != nil {
			m.banner.Trigger(m.clock())
		}
	case key.Matches(msg, m.keys.Title):
		if m.banner != nil {
			m.editing = true
			m.title.SetValue(m.banner.Text())
			m.title.CursorEnd()
			return m, m.title.Focus()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.tracker != nil {
		if err := m.tracker.Close(); err != nil {
			m.log.Warnw("closing gesture tracker", "err", err)
		}
	}
	if m.sound != nil {
		m.sound.Close()
	}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

// relayout resizes the canvas and field to the current window and layout,
// restarting the frame loop so the previous one's pending tick is dropped.
func (m *Model) relayout() tea.Cmd {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	rows := m.layout.fieldRows(m.height)
	m.surface.Resize(m.width, rows)
	w, h := m.surface.PixelSize()
	m.sim.Resize(w, h)
	m.layoutCards(rows)

	m.gen++
	m.log.Debugw("layout", "cols", m.width, "rows", rows, "layout", m.layout.String())
	if m.paused {
		return nil
	}
	return frameCmd(m.gen, m.fps)
}

// layoutCards places the cards below the field in field pixel space, so a
// pointer maps onto them with the same transform as onto the canvas.
func (m *Model) layoutCards(fieldRows int) {
	cards := m.deck.Cards()
	if len(cards) == 0 {
		return
	}
	m.deck.Leave()
	cellWidth := m.width / len(cards)
	for i, c := range cards {
		if m.layout != LayoutCards {
			c.Rect = tilt.Rect{}
			continue
		}
		c.Rect = tilt.Rect{
			X: float64(i*cellWidth) * 2 * m.scale,
			Y: float64(fieldRows) * 4 * m.scale,
			W: float64(cellWidth) * 2 * m.scale,
			H: float64(cardRows) * 4 * m.scale,
		}
	}
}

// clock is the time of the last frame, or the wall clock before the first.
func (m Model) clock() time.Time {
	if m.now.IsZero() {
		return time.Now()
	}
	return m.now
}

// pixelAt maps a terminal cell to field pixels. Rows above the field give
// negative y.
func (m Model) pixelAt(col, row int) r2.Vec {
	return m.surface.CellToPixel(col, row-headerRows)
}

func (m Model) inField(row int) bool {
	_, rows := m.surface.Size()
	return row >= headerRows && row < headerRows+rows
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.pixelAt(msg.X, msg.Y)
	if m.layout == LayoutCards {
		m.deck.Pointer(p)
	}
	if m.inField(msg.Y) {
		m.sim.SetPointer(p.X, p.Y)
	} else {
		m.sim.ClearPointer()
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	switch {
	case m.inField(msg.Y):
		m.sim.Click(p.X, p.Y, msg.Alt || msg.Ctrl || msg.Shift)
	case msg.Y < headerRows:
		if m.banner != nil {
			m.banner.Trigger(m.clock())
		}
	case msg.Y >= m.height-statusRows:
		m.help.ShowAll = !m.help.ShowAll
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "\n  starting…\n"
	}

	var b strings.Builder
	banner, glitching := "", false
	if m.banner != nil {
		banner, glitching = m.banner.View(), m.banner.Animating()
	}
	b.WriteString(renderHeader(banner, glitching, m.gestureView(), m.width))
	b.WriteString("\n")
	b.WriteString(m.surface.View())
	b.WriteString("\n")
	if m.layout == LayoutCards {
		b.WriteString(renderCards(m.deck, m.width, m.tilt.MaxRotation))
		b.WriteString("\n")
	}
	b.WriteString(m.statusView())
	return b.String()
}

func (m Model) gestureView() string {
	if m.tracker == nil {
		return statusStyle.Render("pointer")
	}
	switch m.status {
	case gesture.Ready:
		return statusStyle.Render("✋ " + m.status.String())
	case gesture.Unavailable:
		return warnStyle.Render("gestures " + m.status.String())
	}
	frac := 0.0
	if m.setupTimeout > 0 && !m.started.IsZero() {
		frac = float64(m.now.Sub(m.started)) / float64(m.setupTimeout)
	}
	return m.spinner.View() + " " + statusStyle.Render(m.status.String()) + " " + m.progress.ViewAs(min(frac, 1))
}

func (m Model) statusView() string {
	if m.editing {
		return m.title.View()
	}
	left := timeStyle.Render(util.FormatElapsed(m.now.Sub(m.started)))
	if m.paused {
		left += statusStyle.Render("  ❚❚ paused")
	}
	if m.sound != nil && m.sound.Muted() {
		left += statusStyle.Render("  muted")
	}
	stats := renderStats(len(m.sim.Particles()), len(m.sim.Edges()), len(m.sim.Effects()), len(m.sim.Hands()))
	left += "  " + statusStyle.Render(stats)
	return left + "  " + m.help.View(m.keys)
}
