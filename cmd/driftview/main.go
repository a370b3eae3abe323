// Command driftview shows the particle field in a desktop window.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivier-w/driftfield/internal/config"
	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/sfx"
	"github.com/olivier-w/driftfield/internal/tilt"
	"github.com/olivier-w/driftfield/internal/window"
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
	tp := cfg.TiltParams()
	opts := window.Options{
		Sim:     field.New(cfg.FieldParams(), float64(cfg.Render.Width), float64(cfg.Render.Height), log, rng),
		Banner:  glitch.New(cfg.Glitch.Text, cfg.GlitchParams(), rng),
		Deck:    tilt.NewConceptDeck(tp, cfg.Render.FPS),
		Tilt:    tp,
		Adapter: gesture.NewAdapter(cfg.GestureParams()),
		Log:     log,
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
			log.Warnw("sound disabled", "err", err)
		} else {
			opts.Sound = player
			defer player.Close()
		}
	}

	ebiten.SetWindowSize(cfg.Render.Width, cfg.Render.Height)
	ebiten.SetWindowTitle("driftview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Render.FPS)

	if err := ebiten.RunGame(window.New(opts)); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
