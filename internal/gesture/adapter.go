package gesture

import (
	"sort"

	"github.com/olivier-w/driftfield/internal/field"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params tunes gesture derivation.
type Params struct {
	// Smoothing is the low-pass coefficient: each frame moves the smoothed
	// value this fraction of the way toward the raw one.
	Smoothing float64
	// OpenThreshold is the summed fingertip-to-base spread (normalized
	// units) above which a palm counts as open.
	OpenThreshold float64
	// PinchThreshold is the thumb-to-index tip distance below which the
	// hand is pinching.
	PinchThreshold float64
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		Smoothing:      0.15,
		OpenThreshold:  0.6,
		PinchThreshold: 0.05,
	}
}

// Raw holds the unsmoothed gesture values of one record.
type Raw struct {
	Label    string
	Palm     r2.Vec
	Tip      r2.Vec
	Open     bool
	Pinch    bool
	Pointing bool
}

type smoothed struct {
	label    string
	palm     r2.Vec
	tip      r2.Vec
	open     float64
	pinch    float64
	pointing float64
}

// Adapter turns landmark records into smoothed field hands. It keeps the
// previous frame's smoothed state and is not safe for concurrent use.
type Adapter struct {
	params Params
	prev   []smoothed
}

// NewAdapter returns an adapter with no history.
func NewAdapter(p Params) *Adapter {
	return &Adapter{params: p}
}

// Derive computes the raw gesture values of r for a w×h screen. The x axis
// is mirrored so the image behaves like a mirror.
func Derive(r Record, p Params, w, h float64) Raw {
	lm := r.Landmarks
	toScreen := func(l Landmark) r2.Vec {
		return r2.Vec{X: (1 - l.X) * w, Y: l.Y * h}
	}
	center := Landmark{
		X: (lm[Wrist].X + lm[MiddleMCP].X) / 2,
		Y: (lm[Wrist].Y + lm[MiddleMCP].Y) / 2,
	}

	spread := dist2D(lm[ThumbTip], lm[ThumbMCP]) +
		dist2D(lm[IndexTip], lm[IndexMCP]) +
		dist2D(lm[MiddleTip], lm[MiddleMCP]) +
		dist2D(lm[RingTip], lm[RingMCP]) +
		dist2D(lm[PinkyTip], lm[PinkyMCP])

	return Raw{
		Label:    r.Label,
		Palm:     toScreen(center),
		Tip:      toScreen(lm[IndexTip]),
		Open:     spread > p.OpenThreshold,
		Pinch:    dist2D(lm[ThumbTip], lm[IndexTip]) < p.PinchThreshold,
		Pointing: lm[IndexTip].Y < lm[IndexPIP].Y && lm[MiddleTip].Y > lm[MiddlePIP].Y,
	}
}

// Update consumes one detection frame and returns the smoothed hands,
// ordered by label. Invalid records are dropped. An empty frame clears the
// history. When the hand count changes the raw values seed the new state
// unsmoothed. Otherwise each hand blends with the nearest previous palm, so
// swapped or duplicate labels do not pull hands into each other.
func (a *Adapter) Update(records []Record, w, h float64) []field.Hand {
	raws := make([]Raw, 0, len(records))
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		raws = append(raws, Derive(r, a.params, w, h))
	}
	sort.SliceStable(raws, func(i, j int) bool { return raws[i].Label < raws[j].Label })

	if len(raws) == 0 {
		a.prev = a.prev[:0]
		return nil
	}

	seed := len(raws) != len(a.prev)
	var pairs []int
	if !seed {
		pairs = nearest(a.prev, raws)
	}
	next := make([]smoothed, len(raws))
	for i, raw := range raws {
		cur := smoothed{
			label:    raw.Label,
			palm:     raw.Palm,
			tip:      raw.Tip,
			open:     flag(raw.Open),
			pinch:    flag(raw.Pinch),
			pointing: flag(raw.Pointing),
		}
		if !seed {
			cur = a.blend(a.prev[pairs[i]], cur)
		}
		next[i] = cur
	}
	a.prev = next

	hands := make([]field.Hand, len(next))
	for i, s := range next {
		hands[i] = field.Hand{
			Label:    s.label,
			Palm:     s.palm,
			Tip:      s.tip,
			Open:     s.open >= 0.5,
			Pinch:    s.pinch >= 0.5,
			Pointing: s.pointing >= 0.5,
		}
	}
	return hands
}

// nearest pairs each raw hand with a previous hand of the same count,
// taking the closest remaining palm pair first. pairs[i] indexes prev.
func nearest(prev []smoothed, raws []Raw) []int {
	type edge struct {
		raw, prev int
		d         float64
	}
	edges := make([]edge, 0, len(raws)*len(prev))
	for i, raw := range raws {
		for j, p := range prev {
			edges = append(edges, edge{raw: i, prev: j, d: r2.Norm2(r2.Sub(raw.Palm, p.palm))})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].d < edges[j].d })

	pairs := make([]int, len(raws))
	for i := range pairs {
		pairs[i] = -1
	}
	taken := make([]bool, len(prev))
	left := len(raws)
	for _, e := range edges {
		if left == 0 {
			break
		}
		if pairs[e.raw] >= 0 || taken[e.prev] {
			continue
		}
		pairs[e.raw] = e.prev
		taken[e.prev] = true
		left--
	}
	return pairs
}

// Reset drops the smoothing history.
func (a *Adapter) Reset() {
	a.prev = a.prev[:0]
}

func (a *Adapter) blend(prev, raw smoothed) smoothed {
	k := a.params.Smoothing
	return smoothed{
		label:    raw.label,
		palm:     lerpVec(prev.palm, raw.palm, k),
		tip:      lerpVec(prev.tip, raw.tip, k),
		open:     lerp(prev.open, raw.open, k),
		pinch:    lerp(prev.pinch, raw.pinch, k),
		pointing: lerp(prev.pointing, raw.pointing, k),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
