package sfx

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// bell is a sine partial with an instant attack and exponential decay.
type bell struct {
	freq     float64
	phase    float64
	decay    float64
	gain     float64
	position int
	length   int
	rate     beep.SampleRate
}

func newBell(freq float64, d time.Duration, rate beep.SampleRate) *bell {
	n := rate.N(d)
	return &bell{
		freq:   freq,
		length: n,
		rate:   rate,
		gain:   1,
		// Falls to about -60 dB by the end.
		decay: math.Pow(0.001, 1/float64(max(n, 1))),
	}
}

func (b *bell) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.length {
			return i, i > 0
		}
		v := math.Sin(2*math.Pi*b.phase) * b.gain
		samples[i][0] = v
		samples[i][1] = v

		b.phase += b.freq / float64(b.rate)
		b.phase -= math.Floor(b.phase)
		b.gain *= b.decay
		b.position++
	}
	return len(samples), true
}

func (b *bell) Err() error { return nil }

// volume scales s by a linear gain; zero or less is silent.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Chime synthesizes a short two-partial bell at freq.
func Chime(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return beep.Take(rate.N(d), beep.Mix(
		volume(newBell(freq, d, rate), 0.7),
		volume(newBell(freq*2, d/2, rate), 0.3),
	))
}
