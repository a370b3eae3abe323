package field

import "gonum.org/v1/gonum/spatial/r2"

const (
	cursorRing = 20
	cursorGlow = 15
)

// Trail keeps the most recent pointer positions.
type Trail struct {
	points []r2.Vec
	max    int
}

// NewTrail returns a trail holding at most max points.
func NewTrail(max int) Trail {
	return Trail{max: max}
}

// Push records p, dropping the oldest point once full.
func (t *Trail) Push(p r2.Vec) {
	if t.max <= 0 {
		return
	}
	t.points = append(t.points, p)
	if over := len(t.points) - t.max; over > 0 {
		t.points = append(t.points[:0], t.points[over:]...)
	}
}

// Clear forgets every point.
func (t *Trail) Clear() {
	t.points = t.points[:0]
}

// Points returns the recorded points, oldest first.
func (t *Trail) Points() []r2.Vec {
	return t.points
}

// Draw strokes the trail fading in from transparent at the tail to the
// accent colour at the head.
func (t *Trail) Draw(s Surface) {
	n := len(t.points)
	if n < 2 {
		return
	}
	for i := 1; i < n; i++ {
		a := float64(i) / float64(n-1) * 0.6
		s.Line(t.points[i-1], t.points[i], 2, Paint{Color: colorCyan, Alpha: a})
	}
}

func drawCursor(s Surface, at r2.Vec) {
	s.Dot(at, cursorRing+cursorGlow, Paint{Color: colorCyan, Alpha: 0.1})
	s.Ring(at, cursorRing/2, 2, Paint{Color: colorCyan, Alpha: 0.8})
	s.Dot(at, 3, Paint{Color: colorCyan, Alpha: 1})
}
