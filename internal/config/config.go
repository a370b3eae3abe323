// Package config loads driftfield settings from YAML and hands each
// component its own parameter set.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/olivier-w/driftfield/internal/field"
	"github.com/olivier-w/driftfield/internal/gesture"
	"github.com/olivier-w/driftfield/internal/glitch"
	"github.com/olivier-w/driftfield/internal/sfx"
	"github.com/olivier-w/driftfield/internal/tilt"
)

type Config struct {
	Particles   Particles   `yaml:"particles"`
	Pointer     Pointer     `yaml:"pointer"`
	Hands       Hands       `yaml:"hands"`
	Connections Connections `yaml:"connections"`
	Ripple      Ripple      `yaml:"ripple"`
	Beam        Beam        `yaml:"beam"`
	Render      Render      `yaml:"render"`
	Gesture     Gesture     `yaml:"gesture"`
	Glitch      Glitch      `yaml:"glitch"`
	Tilt        Tilt        `yaml:"tilt"`
	Sound       Sound       `yaml:"sound"`
	Log         Log         `yaml:"log"`
}

type Particles struct {
	Count   int     `yaml:"count"`
	Speed   float64 `yaml:"speed"`
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
	Relax   float64 `yaml:"relax"`
	Margin  float64 `yaml:"margin"`
}

type Pointer struct {
	Radius      float64 `yaml:"radius"`
	Force       float64 `yaml:"force"`
	TrailLength int     `yaml:"trail_length"`
}

type Hands struct {
	Radius         float64 `yaml:"radius"`
	Force          float64 `yaml:"force"`
	PinchIntensity float64 `yaml:"pinch_intensity"`
	LaserRadius    float64 `yaml:"laser_radius"`
	LaserJitter    float64 `yaml:"laser_jitter"`
	Smoothing      float64 `yaml:"smoothing"`
	OpenThreshold  float64 `yaml:"open_threshold"`
	PinchThreshold float64 `yaml:"pinch_threshold"`
}

type Connections struct {
	Distance float64 `yaml:"distance"`
	Alpha    float64 `yaml:"alpha"`
}

type Ripple struct {
	MaxRadius     float64 `yaml:"max_radius"`
	Speed         float64 `yaml:"speed"`
	GestureChance float64 `yaml:"gesture_chance"`
}

type Beam struct {
	Decay float64 `yaml:"decay"`
}

// Render covers both front ends. Scale is field pixels per braille dot in
// the terminal; the window uses Width and Height.
type Render struct {
	FPS    int     `yaml:"fps"`
	Scale  float64 `yaml:"scale"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// Gesture selects the landmark collaborator. URL wins over Command.
type Gesture struct {
	Command      []string      `yaml:"command"`
	URL          string        `yaml:"url"`
	SetupTimeout time.Duration `yaml:"setup_timeout"`
}

type Glitch struct {
	Text          string        `yaml:"text"`
	TriggerChance float64       `yaml:"trigger_chance"`
	CheckInterval time.Duration `yaml:"check_interval"`
	RevealStep    time.Duration `yaml:"reveal_step"`
	Charset       string        `yaml:"charset"`
}

type Tilt struct {
	MaxRotation float64 `yaml:"max_rotation"`
	Scale       float64 `yaml:"scale"`
	Perspective float64 `yaml:"perspective"`
	Frequency   float64 `yaml:"frequency"`
	Damping     float64 `yaml:"damping"`
}

type Sound struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	Sample  string  `yaml:"sample"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	ShowCaller bool   `yaml:"show_caller"`
}

// Default returns the stock configuration.
func Default() Config {
	fp := field.DefaultParams()
	gp := gesture.DefaultParams()
	gl := glitch.DefaultParams()
	tp := tilt.DefaultParams()
	return Config{
		Particles: Particles{
			Count:   fp.Count,
			Speed:   fp.Speed,
			MinSize: fp.MinSize,
			MaxSize: fp.MaxSize,
			Relax:   fp.Relax,
			Margin:  fp.Margin,
		},
		Pointer: Pointer{
			Radius:      fp.PointerRadius,
			Force:       fp.PointerForce,
			TrailLength: fp.TrailLength,
		},
		Hands: Hands{
			Radius:         fp.HandRadius,
			Force:          fp.HandForce,
			PinchIntensity: fp.PinchIntensity,
			LaserRadius:    fp.LaserRadius,
			LaserJitter:    fp.LaserJitter,
			Smoothing:      gp.Smoothing,
			OpenThreshold:  gp.OpenThreshold,
			PinchThreshold: gp.PinchThreshold,
		},
		Connections: Connections{
			Distance: fp.ConnectionDistance,
			Alpha:    fp.ConnectionAlpha,
		},
		Ripple: Ripple{
			MaxRadius:     fp.RippleMaxRadius,
			Speed:         fp.RippleSpeed,
			GestureChance: fp.RippleChance,
		},
		Beam: Beam{Decay: fp.BeamDecay},
		Render: Render{
			FPS:    60,
			Scale:  4,
			Width:  1280,
			Height: 800,
		},
		Gesture: Gesture{SetupTimeout: 10 * time.Second},
		Glitch: Glitch{
			Text:          "AGENTIC CODING",
			TriggerChance: gl.TriggerChance,
			CheckInterval: gl.CheckInterval,
			RevealStep:    gl.RevealStep,
			Charset:       gl.Charset,
		},
		Tilt: Tilt{
			MaxRotation: tp.MaxRotation,
			Scale:       tp.Scale,
			Perspective: tp.Perspective,
			Frequency:   tp.Frequency,
			Damping:     tp.Damping,
		},
		Sound: Sound{Volume: 0.6},
		Log:   Log{Level: "warn"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// a malformed or invalid one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	source, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(source, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Particles.Count > 0, "particles.count must be positive"},
		{c.Particles.Speed >= 0, "particles.speed must not be negative"},
		{c.Particles.MinSize > 0, "particles.min_size must be positive"},
		{c.Particles.MaxSize >= c.Particles.MinSize, "particles.max_size must be at least min_size"},
		{c.Particles.Relax >= 0 && c.Particles.Relax <= 1, "particles.relax must be within [0,1]"},
		{c.Particles.Margin >= 0, "particles.margin must not be negative"},
		{c.Pointer.Radius > 0, "pointer.radius must be positive"},
		{c.Pointer.TrailLength >= 0, "pointer.trail_length must not be negative"},
		{c.Hands.Radius > 0, "hands.radius must be positive"},
		{c.Hands.PinchIntensity >= 0 && c.Hands.PinchIntensity <= 2, "hands.pinch_intensity must be within [0,2]"},
		{c.Hands.LaserRadius > 0, "hands.laser_radius must be positive"},
		{c.Hands.Smoothing > 0 && c.Hands.Smoothing <= 1, "hands.smoothing must be within (0,1]"},
		{c.Hands.OpenThreshold > 0, "hands.open_threshold must be positive"},
		{c.Hands.PinchThreshold > 0, "hands.pinch_threshold must be positive"},
		{c.Connections.Distance > 0, "connections.distance must be positive"},
		{c.Connections.Alpha >= 0 && c.Connections.Alpha <= 1, "connections.alpha must be within [0,1]"},
		{c.Ripple.MaxRadius > 0, "ripple.max_radius must be positive"},
		{c.Ripple.Speed > 0, "ripple.speed must be positive"},
		{c.Ripple.GestureChance >= 0 && c.Ripple.GestureChance <= 1, "ripple.gesture_chance must be within [0,1]"},
		{c.Beam.Decay > 0 && c.Beam.Decay <= 1, "beam.decay must be within (0,1]"},
		{c.Render.FPS > 0 && c.Render.FPS <= 240, "render.fps must be within [1,240]"},
		{c.Render.Scale > 0, "render.scale must be positive"},
		{c.Render.Width > 0 && c.Render.Height > 0, "render.width and render.height must be positive"},
		{c.Gesture.SetupTimeout >= 0, "gesture.setup_timeout must not be negative"},
		{c.Glitch.TriggerChance >= 0 && c.Glitch.TriggerChance <= 1, "glitch.trigger_chance must be within [0,1]"},
		{c.Glitch.CheckInterval > 0, "glitch.check_interval must be positive"},
		{c.Glitch.RevealStep > 0, "glitch.reveal_step must be positive"},
		{c.Glitch.Charset != "", "glitch.charset must not be empty"},
		{c.Tilt.Scale > 0, "tilt.scale must be positive"},
		{c.Tilt.Perspective > 0, "tilt.perspective must be positive"},
		{c.Tilt.Frequency > 0, "tilt.frequency must be positive"},
		{c.Tilt.Damping >= 0, "tilt.damping must not be negative"},
		{c.Sound.Volume >= 0 && c.Sound.Volume <= 1, "sound.volume must be within [0,1]"},
		{c.Sound.Sample == "" || sfx.IsSupportedPath(c.Sound.Sample), "sound.sample must be " + sfx.SupportedExtsList()},
		{validLevel(c.Log.Level), "log.level must be debug, info, warn or error"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return errors.New(ch.msg)
		}
	}
	return nil
}

// FieldParams returns the simulation tuning.
func (c Config) FieldParams() field.Params {
	return field.Params{
		Count:              c.Particles.Count,
		Speed:              c.Particles.Speed,
		MinSize:            c.Particles.MinSize,
		MaxSize:            c.Particles.MaxSize,
		Relax:              c.Particles.Relax,
		Margin:             c.Particles.Margin,
		ConnectionDistance: c.Connections.Distance,
		ConnectionAlpha:    c.Connections.Alpha,
		PointerRadius:      c.Pointer.Radius,
		PointerForce:       c.Pointer.Force,
		TrailLength:        c.Pointer.TrailLength,
		HandRadius:         c.Hands.Radius,
		HandForce:          c.Hands.Force,
		PinchIntensity:     c.Hands.PinchIntensity,
		LaserRadius:        c.Hands.LaserRadius,
		LaserJitter:        c.Hands.LaserJitter,
		RippleMaxRadius:    c.Ripple.MaxRadius,
		RippleSpeed:        c.Ripple.Speed,
		RippleChance:       c.Ripple.GestureChance,
		BeamDecay:          c.Beam.Decay,
	}
}

// GestureParams returns the landmark thresholds.
func (c Config) GestureParams() gesture.Params {
	return gesture.Params{
		Smoothing:      c.Hands.Smoothing,
		OpenThreshold:  c.Hands.OpenThreshold,
		PinchThreshold: c.Hands.PinchThreshold,
	}
}

// TrackerOptions returns the collaborator selection.
func (c Config) TrackerOptions() gesture.Options {
	return gesture.Options{
		Command:      c.Gesture.Command,
		URL:          c.Gesture.URL,
		SetupTimeout: c.Gesture.SetupTimeout,
	}
}

func (c Config) GlitchParams() glitch.Params {
	return glitch.Params{
		TriggerChance: c.Glitch.TriggerChance,
		CheckInterval: c.Glitch.CheckInterval,
		RevealStep:    c.Glitch.RevealStep,
		Charset:       c.Glitch.Charset,
	}
}

func (c Config) TiltParams() tilt.Params {
	return tilt.Params{
		MaxRotation: c.Tilt.MaxRotation,
		Scale:       c.Tilt.Scale,
		Perspective: c.Tilt.Perspective,
		Frequency:   c.Tilt.Frequency,
		Damping:     c.Tilt.Damping,
	}
}

func (c Config) SoundOptions() sfx.Options {
	return sfx.Options{
		Volume: c.Sound.Volume,
		Sample: c.Sound.Sample,
	}
}
