package canvas

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivier-w/driftfield/internal/field"
)

var white = field.Paint{Color: colorful.Color{R: 1, G: 1, B: 1}, Alpha: 1}

func TestBraillePixelGeometry(t *testing.T) {
	b := NewBraille(10, 5, 2)
	w, h := b.PixelSize()
	if w != 40 || h != 40 {
		t.Fatalf("expected 40x40 pixels, got %vx%v", w, h)
	}
	c := b.CellToPixel(3, 1)
	if c.X != 14 || c.Y != 12 {
		t.Fatalf("expected cell centre (14,12), got %v", c)
	}
}

func TestBrailleDotSetsBit(t *testing.T) {
	b := NewBraille(2, 1, 1)
	b.SetProfile(ProfileNone)

	// Dot (1,3) is bit 7 of the first cell.
	b.Dot(r2.Vec{X: 1.5, Y: 3.5}, 0.1, white)
	got := []rune(b.View())
	if got[0] != rune(0x2800+(1<<7)) {
		t.Fatalf("expected U+2880, got %U", got[0])
	}
	if got[1] != ' ' {
		t.Fatalf("expected blank second cell, got %q", got[1])
	}
}

func TestBrailleFaintPaintIsSkipped(t *testing.T) {
	b := NewBraille(4, 2, 1)
	b.Line(r2.Vec{}, r2.Vec{X: 7, Y: 7}, 1, field.Paint{Color: white.Color, Alpha: 0.001})
	for row := 0; row < 2; row++ {
		for col := 0; col < 4; col++ {
			if b.Lit(col, row) {
				t.Fatalf("expected no lit cells, got (%d,%d)", col, row)
			}
		}
	}
}

func TestBrailleLineCoversDiagonal(t *testing.T) {
	b := NewBraille(4, 2, 1)
	b.Line(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 7.9, Y: 7.9}, 1, white)
	if !b.Lit(0, 0) || !b.Lit(3, 1) {
		t.Fatalf("expected both ends of the diagonal to be lit")
	}
	if b.Lit(3, 0) {
		t.Fatalf("expected top-right cell to stay dark")
	}
}

func TestBrailleClipsOutOfRange(t *testing.T) {
	b := NewBraille(2, 2, 1)
	b.Dot(r2.Vec{X: -50, Y: -50}, 3, white)
	b.Ring(r2.Vec{X: 500, Y: 500}, 10, 1, white)
	if strings.TrimSpace(stripANSI(b.View())) != "" {
		t.Fatalf("expected nothing drawn")
	}
}

func TestBrailleViewShape(t *testing.T) {
	b := NewBraille(6, 3, 1)
	b.SetProfile(ProfileTrueColor)
	b.Ring(r2.Vec{X: 6, Y: 6}, 4, 1, white)

	lines := strings.Split(b.View(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if n := utf8.RuneCountInString(stripANSI(l)); n != 6 {
			t.Fatalf("line %d: expected 6 cells, got %d", i, n)
		}
	}
	if !strings.Contains(b.View(), "\x1b[38;2;") {
		t.Fatalf("expected truecolor sequences")
	}
}

func TestBrailleStrongestPaintWins(t *testing.T) {
	b := NewBraille(1, 1, 1)
	b.Dot(r2.Vec{X: 0.5, Y: 0.5}, 0.1, field.Paint{Color: colorful.Color{R: 1}, Alpha: 0.9})
	b.Dot(r2.Vec{X: 1.5, Y: 0.5}, 0.1, field.Paint{Color: colorful.Color{B: 1}, Alpha: 0.2})
	if b.cells[0].color.R != 1 || b.cells[0].alpha != 0.9 {
		t.Fatalf("expected the brighter red paint to own the cell, got %+v", b.cells[0])
	}
}

func TestProfileFromEnv(t *testing.T) {
	env := func(m map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		}
	}
	cases := []struct {
		vars map[string]string
		want Profile
	}{
		{map[string]string{"NO_COLOR": "", "COLORTERM": "truecolor"}, ProfileNone},
		{map[string]string{"COLORTERM": "24bit"}, ProfileTrueColor},
		{map[string]string{"TERM": "xterm-256color"}, ProfileANSI256},
		{map[string]string{"TERM": "dumb"}, ProfileNone},
		{map[string]string{"TERM": "xterm"}, ProfileANSI16},
	}
	for _, c := range cases {
		if got := profileFromEnv(env(c.vars)); got != c.want {
			t.Fatalf("%v: expected %v, got %v", c.vars, c.want, got)
		}
	}
}

func stripANSI(s string) string {
	var sb strings.Builder
	inSeq := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inSeq = true
		case inSeq && r == 'm':
			inSeq = false
		case !inSeq:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
