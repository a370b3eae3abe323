package field

import "gonum.org/v1/gonum/spatial/r2"

// Edge is a proximity connection between two particles.
type Edge struct {
	A, B      int
	Dist      float64
	Alpha     float64
	Highlight bool
}

// EdgeAlpha is the opacity of an edge of length d: linear in 1-d/threshold,
// scaled by k so connections stay faint.
func EdgeAlpha(d, threshold, k float64) float64 {
	if threshold <= 0 || d >= threshold {
		return 0
	}
	return (1 - d/threshold) * k
}

// Connections appends to dst one edge for every unordered pair closer than
// threshold. Edges touching a particle lit this frame are highlighted while
// tracking is active. This is O(n²); past a few hundred particles it needs
// a spatial index.
func Connections(ps []Particle, threshold, k float64, tracking bool, dst []Edge) []Edge {
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			d := r2.Norm(r2.Sub(ps[i].Pos, ps[j].Pos))
			if d >= threshold {
				continue
			}
			dst = append(dst, Edge{
				A:         i,
				B:         j,
				Dist:      d,
				Alpha:     EdgeAlpha(d, threshold, k),
				Highlight: tracking && (ps[i].Lit || ps[j].Lit),
			})
		}
	}
	return dst
}

// DrawConnections strokes every edge.
func DrawConnections(s Surface, ps []Particle, edges []Edge) {
	for _, e := range edges {
		c := colorNeutral
		if e.Highlight {
			c = colorCyan
		}
		s.Line(ps[e.A].Pos, ps[e.B].Pos, 1, Paint{Color: c, Alpha: e.Alpha})
	}
}
