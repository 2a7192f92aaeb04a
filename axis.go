package trellis

import "math"

// AxisDistance returns |a - b| along one axis. Both points are in scene space.
func AxisDistance(a, b ScenePoint, axis Axis) float64 {
	if axis == AxisY {
		return math.Abs(a.Y - b.Y)
	}
	return math.Abs(a.X - b.X)
}

// AxisMatch is the result of a nearest-on-axis search.
type AxisMatch struct {
	// Distance is the smallest axis distance found; +Inf when there were no
	// candidates.
	Distance float64
	// Matches holds every candidate at exactly Distance, in input order.
	Matches []ScenePoint
}

// FindNearestOnAxis scans candidates for the smallest distance to point along
// axis. Every candidate sharing that minimum is kept: guideline rendering
// draws one line per tied target, so a first-match search would drop lines
// whenever several objects share an edge. All points are in scene space.
func FindNearestOnAxis(point ScenePoint, candidates []ScenePoint, axis Axis) AxisMatch {
	m := AxisMatch{Distance: math.Inf(1)}
	for _, c := range candidates {
		d := AxisDistance(point, c, axis)
		switch {
		case d < m.Distance:
			m.Distance = d
			m.Matches = append(m.Matches[:0], c)
		case d == m.Distance:
			m.Matches = append(m.Matches, c)
		}
	}
	return m
}
