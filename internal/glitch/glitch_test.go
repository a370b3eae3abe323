package glitch

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestTriggerScramblesThenSettles(t *testing.T) {
	g := New("AGENTIC CODING", DefaultParams(), rand.New(rand.NewSource(1)))
	start := time.Unix(1000, 0)

	if !g.Trigger(start) {
		t.Fatalf("expected trigger to start a reveal")
	}
	if g.Trigger(start) {
		t.Fatalf("expected second trigger to be ignored while animating")
	}

	first := []rune(g.Update(start))
	if len(first) != len("AGENTIC CODING") {
		t.Fatalf("expected %d runes, got %d", len("AGENTIC CODING"), len(first))
	}
	if first[7] != ' ' {
		t.Fatalf("expected space to be kept, got %q", first[7])
	}
	for i, r := range first {
		if i == 7 {
			continue
		}
		if !strings.ContainsRune(Charset, r) {
			t.Fatalf("expected charset rune at %d, got %q", i, r)
		}
	}

	// 14 characters at 3 steps each settle on step 43.
	end := start.Add(41 * 30 * time.Millisecond)
	g.Update(end)
	if !g.Animating() {
		t.Fatalf("expected reveal still running after 42 steps")
	}
	if got := g.Update(end.Add(30 * time.Millisecond)); got != "AGENTIC CODING" {
		t.Fatalf("expected settled text, got %q", got)
	}
	if g.Animating() {
		t.Fatalf("expected reveal to be finished")
	}
}

func TestRevealIsLeftToRight(t *testing.T) {
	g := New("ABCDEF", DefaultParams(), rand.New(rand.NewSource(7)))
	start := time.Unix(0, 0)
	g.Trigger(start)

	// After 7 steps (steps 0..6 rendered) the first two characters are fixed.
	got := []rune(g.Update(start.Add(6 * 30 * time.Millisecond)))
	if string(got[:2]) != "AB" {
		t.Fatalf("expected prefix AB, got %q", string(got))
	}
}

func TestRandomTriggerHonoursInterval(t *testing.T) {
	p := DefaultParams()
	p.TriggerChance = 1
	g := New("HI", p, rand.New(rand.NewSource(1)))
	start := time.Unix(0, 0)

	g.Update(start)
	g.Update(start.Add(time.Second))
	if g.Animating() {
		t.Fatalf("expected no glitch before the check interval")
	}
	g.Update(start.Add(2 * time.Second))
	if !g.Animating() {
		t.Fatalf("expected glitch at the check interval")
	}
}

func TestZeroChanceNeverTriggers(t *testing.T) {
	p := DefaultParams()
	p.TriggerChance = 0
	g := New("HI", p, rand.New(rand.NewSource(1)))
	now := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		now = now.Add(p.CheckInterval)
		if got := g.Update(now); got != "HI" {
			t.Fatalf("expected steady text, got %q", got)
		}
	}
}

func TestSetTextCancelsReveal(t *testing.T) {
	g := New("OLD", DefaultParams(), rand.New(rand.NewSource(3)))
	now := time.Unix(0, 0)
	g.Trigger(now)
	g.Update(now)

	g.SetText("NEW TITLE")
	if g.Animating() {
		t.Fatalf("expected reveal cancelled")
	}
	if g.View() != "NEW TITLE" || g.Text() != "NEW TITLE" {
		t.Fatalf("expected new text, got view %q text %q", g.View(), g.Text())
	}
	if !g.Trigger(now) {
		t.Fatalf("expected new reveal to start")
	}
}
