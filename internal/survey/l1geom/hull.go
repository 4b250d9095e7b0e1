package l1geom

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConvexHull computes the convex hull of a set of points using the
// monotone chain algorithm. The hull is returned in counter-clockwise
// order without repeating the first point; duplicates and collinear
// boundary points are removed.
//
// Inputs with fewer than three points are returned unchanged (as a copy).
// Inputs whose distinct points are all collinear reduce to the two
// extreme points.
func ConvexHull(points []r2.Vec) []r2.Vec {
	if len(points) < 3 {
		return append([]r2.Vec(nil), points...)
	}

	p := make([]r2.Vec, len(points))
	copy(p, points)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
	p = dedupeSorted(p)
	if len(p) < 3 {
		return p
	}

	lower := make([]r2.Vec, 0, len(p))
	for _, pt := range p {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}

	upper := make([]r2.Vec, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		pt := p[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}

	// Last point of each chain is the first point of the other.
	hull := make([]r2.Vec, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

// turn is the z component of (a-o) × (b-o); positive for a left turn.
func turn(o, a, b r2.Vec) float64 {
	return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
}

func dedupeSorted(p []r2.Vec) []r2.Vec {
	out := p[:0]
	for i, pt := range p {
		if i > 0 && pt == out[len(out)-1] {
			continue
		}
		out = append(out, pt)
	}
	return out
}
