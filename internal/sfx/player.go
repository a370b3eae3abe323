// Package sfx plays the short chimes that accompany ripples.
package sfx

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/olivier-w/driftfield/internal/field"
)

const (
	sampleRate   = beep.SampleRate(48000)
	channelCount = 2

	// maxVoices bounds how many chimes can ring at once.
	maxVoices = 8
	chimeLen  = 600 * time.Millisecond
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   int(sampleRate),
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Options configures the player.
type Options struct {
	Volume float64
	// Sample replaces the synthesized chime when set.
	Sample string
}

// Player mixes chimes into one output stream.
type Player struct {
	log    *zap.SugaredLogger
	out    *oto.Player
	mix    *mixReader
	sample *Sample
	volume float64

	mu     sync.Mutex
	muted  bool
	closed bool
}

// New opens the audio device and starts a silent output stream.
func New(opts Options, log *zap.SugaredLogger) (*Player, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Player{
		log:    log,
		mix:    newMixReader(),
		volume: opts.Volume,
	}
	if opts.Sample != "" {
		s, err := LoadSample(opts.Sample)
		if err != nil {
			return nil, fmt.Errorf("loading chime sample: %w", err)
		}
		p.sample = s
		log.Infow("chime sample loaded", "path", opts.Sample, "frames", s.Len(), "rate", int(s.Rate()))
	}

	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	p.out = ctx.NewPlayer(p.mix)
	p.out.SetVolume(clamp01(p.volume))
	p.out.Play()
	return p, nil
}

// Ripple plays the chime for a ripple of the given tone.
func (p *Player) Ripple(e field.Effect) {
	p.mu.Lock()
	skip := p.closed || p.muted
	p.mu.Unlock()
	if skip {
		return
	}
	if p.mix.Voices() >= maxVoices {
		return
	}
	p.mix.Add(p.voice(e.Tone))
}

func (p *Player) voice(t field.Tone) beep.Streamer {
	if p.sample != nil {
		return p.sample.Streamer(sampleRate)
	}
	return Chime(toneFreq(t), chimeLen, sampleRate)
}

func toneFreq(t field.Tone) float64 {
	switch t {
	case field.ToneAccent:
		return 880
	case field.ToneGesture:
		return 440
	default:
		return 660
	}
}

// SetMuted silences new chimes without closing the device.
func (p *Player) SetMuted(m bool) {
	p.mu.Lock()
	p.muted = m
	p.mu.Unlock()
}

// Muted reports whether chimes are silenced.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Close stops output.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.mix.Clear()
	if p.out != nil {
		p.out.Pause()
	}
	return nil
}

// mixReader renders a beep.Mixer as signed 16-bit little-endian stereo PCM
// for oto. The mixer streams silence when it has no voices.
type mixReader struct {
	mu    sync.Mutex
	mixer *beep.Mixer
	buf   [][2]float64
}

func newMixReader() *mixReader {
	return &mixReader{mixer: &beep.Mixer{}}
}

func (m *mixReader) Add(s beep.Streamer) {
	m.mu.Lock()
	m.mixer.Add(s)
	m.mu.Unlock()
}

func (m *mixReader) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

func (m *mixReader) Clear() {
	m.mu.Lock()
	m.mixer.Clear()
	m.mu.Unlock()
}

func (m *mixReader) Read(p []byte) (int, error) {
	frames := len(p) / (channelCount * 2)
	if frames == 0 {
		return 0, nil
	}
	if cap(m.buf) < frames {
		m.buf = make([][2]float64, frames)
	}
	buf := m.buf[:frames]

	m.mu.Lock()
	n, _ := m.mixer.Stream(buf)
	m.mu.Unlock()
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}

	for i, f := range buf {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(toInt16(f[0])))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(toInt16(f[1])))
	}
	return frames * channelCount * 2, nil
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(v * 32767)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
