package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/driftfield/internal/config"
	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/sfx"
	"github.com/olivier-w/driftfield/internal/tilt"
	"github.com/olivier-w/driftfield/internal/ui"
)

func main() {
	o := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := run(*o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o config.Overrides) error {
	cfg, err := config.LoadWith(o)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sim := field.New(cfg.FieldParams(), float64(cfg.Render.Width), float64(cfg.Render.Height), log, rng)

	tp := cfg.TiltParams()

	opts := ui.Options{
		Sim:          sim,
		Banner:       glitch.New(cfg.Glitch.Text, cfg.GlitchParams(), rng),
		Deck:         tilt.NewConceptDeck(tp, cfg.Render.FPS),
		Tilt:         tp,
		Adapter:      gesture.NewAdapter(cfg.GestureParams()),
		FPS:          cfg.Render.FPS,
		Scale:        cfg.Render.Scale,
		SetupTimeout: cfg.Gesture.SetupTimeout,
		Log:          log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if to := cfg.TrackerOptions(); to.Enabled() {
		opts.Tracker = gesture.NewTracker(to.Dialer(), to.SetupTimeout, log)
		opts.Tracker.Start(ctx)
		defer opts.Tracker.Close()
	}

	if cfg.Sound.Enabled {
		player, err := sfx.New(cfg.SoundOptions(), log)
		if err != nil {
			// Sound is decoration; run silent.
			log.Warnw("sound disabled", "err", err)
		} else {
			opts.Sound = player
			defer player.Close()
		}
	}

	program := tea.NewProgram(ui.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
