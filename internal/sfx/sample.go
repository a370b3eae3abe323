package sfx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// maxSampleFrames caps a loaded sample at about ten seconds of 48 kHz audio.
const maxSampleFrames = 48000 * 10

// Sample is a decoded clip held in memory as stereo frames in [-1, 1].
type Sample struct {
	frames [][2]float64
	rate   beep.SampleRate
}

// Len returns the clip length in frames.
func (s *Sample) Len() int { return len(s.frames) }

// Rate returns the clip's own sample rate.
func (s *Sample) Rate() beep.SampleRate { return s.rate }

// Streamer returns a fresh streamer over the whole clip, resampled to rate.
func (s *Sample) Streamer(rate beep.SampleRate) beep.Streamer {
	var st beep.Streamer = &clip{frames: s.frames}
	if s.rate != rate {
		st = beep.Resample(4, s.rate, rate, st)
	}
	return st
}

type clip struct {
	frames [][2]float64
	pos    int
}

func (c *clip) Stream(samples [][2]float64) (int, bool) {
	if c.pos >= len(c.frames) {
		return 0, false
	}
	n := copy(samples, c.frames[c.pos:])
	c.pos += n
	return n, true
}

func (c *clip) Err() error { return nil }

// LoadSample decodes an mp3, wav, flac or ogg file chosen by extension.
func LoadSample(path string) (*Sample, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if len(s.frames) == 0 {
		return nil, fmt.Errorf("decoding %s: no audio", filepath.Base(path))
	}
	return s, nil
}

// appendFrame adds one frame from interleaved channel values; mono is
// duplicated and channels past the second are dropped.
func appendFrame(dst [][2]float64, ch []float64) [][2]float64 {
	switch len(ch) {
	case 0:
		return dst
	case 1:
		return append(dst, [2]float64{ch[0], ch[0]})
	default:
		return append(dst, [2]float64{ch[0], ch[1]})
	}
}

func decodeMP3(r io.Reader) (*Sample, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	buf := make([]byte, 4096)
	var frames [][2]float64
	for len(frames) < maxSampleFrames {
		n, err := io.ReadFull(dec, buf)
		for i := 0; i+4 <= n; i += 4 {
			l := float64(int16(binary.LittleEndian.Uint16(buf[i:]))) / 32768
			r := float64(int16(binary.LittleEndian.Uint16(buf[i+2:]))) / 32768
			frames = append(frames, [2]float64{l, r})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &Sample{frames: frames, rate: beep.SampleRate(dec.SampleRate())}, nil
}

func decodeWAV(r io.ReadSeeker) (*Sample, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, errors.New("WAV has no channels")
	}
	scale := float64(int64(1) << (buf.SourceBitDepth - 1))
	ch := make([]float64, channels)
	var frames [][2]float64
	for i := 0; i+channels <= len(buf.Data) && len(frames) < maxSampleFrames; i += channels {
		for c := range ch {
			v := buf.Data[i+c]
			if buf.SourceBitDepth == 8 {
				// 8-bit WAV is unsigned
				v -= 128
			}
			ch[c] = float64(v) / scale
		}
		frames = appendFrame(frames, ch)
	}
	return &Sample{frames: frames, rate: beep.SampleRate(buf.Format.SampleRate)}, nil
}

func decodeFLAC(r io.Reader) (*Sample, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	info := stream.Info
	scale := float64(int64(1) << (info.BitsPerSample - 1))
	ch := make([]float64, info.NChannels)
	var frames [][2]float64
	for len(frames) < maxSampleFrames {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			for c := range ch {
				ch[c] = float64(frame.Subframes[c].Samples[i]) / scale
			}
			frames = appendFrame(frames, ch)
		}
	}
	return &Sample{frames: frames, rate: beep.SampleRate(info.SampleRate)}, nil
}

func decodeOGG(r io.Reader) (*Sample, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	channels := format.Channels
	if channels < 1 {
		return nil, errors.New("OGG has no channels")
	}
	ch := make([]float64, channels)
	var frames [][2]float64
	for i := 0; i+channels <= len(data) && len(frames) < maxSampleFrames; i += channels {
		for c := range ch {
			ch[c] = float64(data[i+c])
		}
		frames = appendFrame(frames, ch)
	}
	return &Sample{frames: frames, rate: beep.SampleRate(format.SampleRate)}, nil
}
