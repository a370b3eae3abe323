package config

import (
	"flag"
	"strings"
)

// Overrides are the command-line settings shared by both front ends. Empty
// values leave the file's settings alone.
type Overrides struct {
	Path       string
	Level      string
	File       string
	GestureCmd string
	GestureURL string
	Sound      bool
}

// RegisterFlags binds the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVar(&o.Path, "c", "driftfield.yaml", "config file (defaults are used when missing)")
	fs.StringVar(&o.Level, "d", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.File, "o", "", "log file; nothing is logged without one")
	fs.StringVar(&o.GestureCmd, "gesture-cmd", "", "landmark extractor command, one JSON frame per line")
	fs.StringVar(&o.GestureURL, "gesture-url", "", "landmark extractor websocket URL")
	fs.BoolVar(&o.Sound, "sound", false, "play a chime on every ripple")
	return o
}

// Apply copies the set overrides onto c.
func (o Overrides) Apply(c *Config) {
	if o.Level != "" {
		c.Log.Level = o.Level
	}
	if o.File != "" {
		c.Log.File = o.File
	}
	if o.GestureCmd != "" {
		c.Gesture.Command = strings.Fields(o.GestureCmd)
	}
	if o.GestureURL != "" {
		c.Gesture.URL = o.GestureURL
	}
	if o.Sound {
		c.Sound.Enabled = true
	}
}

// LoadWith loads the file named by o and applies the rest of o on top.
func LoadWith(o Overrides) (Config, error) {
	c, err := Load(o.Path)
	if err != nil {
		return c, err
	}
	o.Apply(&c)
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
