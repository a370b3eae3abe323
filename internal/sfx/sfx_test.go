package sfx

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	"github.com/olivier-w/driftfield/internal/field"
)

func drain(s beep.Streamer) (frames int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			peak = math.Max(peak, math.Abs(f[0]))
		}
		frames += n
		if !ok {
			return frames, peak
		}
	}
}

func TestChimeLengthAndRange(t *testing.T) {
	rate := beep.SampleRate(48000)
	n, peak := drain(Chime(660, 100*time.Millisecond, rate))
	if n != rate.N(100*time.Millisecond) {
		t.Fatalf("expected %d frames, got %d", rate.N(100*time.Millisecond), n)
	}
	if peak <= 0.1 || peak > 1 {
		t.Fatalf("expected audible peak within [-1,1], got %v", peak)
	}
}

func TestBellDecays(t *testing.T) {
	rate := beep.SampleRate(8000)
	b := newBell(440, time.Second, rate)
	head := make([][2]float64, 400)
	b.Stream(head)
	tail := make([][2]float64, 7600)
	b.Stream(tail)

	var headPeak, tailPeak float64
	for _, f := range head {
		headPeak = math.Max(headPeak, math.Abs(f[0]))
	}
	for _, f := range tail[len(tail)-400:] {
		tailPeak = math.Max(tailPeak, math.Abs(f[0]))
	}
	if tailPeak >= headPeak/100 {
		t.Fatalf("expected tail far quieter than head, got %v vs %v", tailPeak, headPeak)
	}
}

func TestMixReaderSilenceAndVoice(t *testing.T) {
	m := newMixReader()
	p := make([]byte, 64)
	n, err := m.Read(p)
	if err != nil || n != 64 {
		t.Fatalf("expected 64 bytes of silence, got %d, %v", n, err)
	}
	for i, b := range p {
		if b != 0 {
			t.Fatalf("expected silence, byte %d = %d", i, b)
		}
	}

	m.Add(&clip{frames: [][2]float64{{0.5, -0.5}, {2, -2}}})
	if m.Voices() != 1 {
		t.Fatalf("expected 1 voice, got %d", m.Voices())
	}
	m.Read(p)
	if got := int16(binary.LittleEndian.Uint16(p[0:])); got != 16383 {
		t.Fatalf("expected left 16383, got %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(p[6:])); got != -32767 {
		t.Fatalf("expected clipped right -32767, got %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(p[8:])); got != 0 {
		t.Fatalf("expected silence after the clip, got %d", got)
	}
}

func TestLoadSampleWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	data := make([]int, 2205)
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/22050))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	f.Close()

	s, err := LoadSample(path)
	if err != nil {
		t.Fatalf("expected WAV to load, got %v", err)
	}
	if s.Len() != 2205 {
		t.Fatalf("expected 2205 frames, got %d", s.Len())
	}
	if s.Rate() != 22050 {
		t.Fatalf("expected rate 22050, got %d", s.Rate())
	}
	if s.frames[100][0] != s.frames[100][1] {
		t.Fatalf("expected mono duplicated to both channels")
	}

	n, _ := drain(s.Streamer(44100))
	if n < 4380 || n > 4440 {
		t.Fatalf("expected about 4410 resampled frames, got %d", n)
	}
}

func TestLoadSampleRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.aiff")
	if err := os.WriteFile(path, []byte("FORM"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSample(path); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestLoadSampleRejectsGarbageWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSample(path); err == nil {
		t.Fatalf("expected invalid WAV error")
	}
}

func TestToneFrequencies(t *testing.T) {
	if toneFreq(field.ToneNeutral) == toneFreq(field.ToneAccent) {
		t.Fatalf("expected accent chime to differ from neutral")
	}
	if toneFreq(field.ToneGesture) >= toneFreq(field.ToneNeutral) {
		t.Fatalf("expected gesture chime to be lower")
	}
}

func TestSupportedExts(t *testing.T) {
	for _, ext := range []string{".mp3", ".WAV", ".flac", ".ogg"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	if IsSupportedPath("chime.aac") {
		t.Fatalf("expected .aac to be unsupported")
	}
	if got, want := SupportedExtsList(), ".flac, .mp3, .ogg, .wav"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
