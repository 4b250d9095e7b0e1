package l1geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ProjectToWorldXY drops Z from every vertex. This is the documented
// projection contract for target faces: the planner always works on the
// world-horizontal plane, whatever the face normal.
func ProjectToWorldXY(vertices []LocalCoord) []r2.Vec {
	out := make([]r2.Vec, len(vertices))
	for i, v := range vertices {
		out[i] = v.XY()
	}
	return out
}

// MaxZ returns the highest Z among vertices, or 0 for empty input.
func MaxZ(vertices []LocalCoord) float64 {
	if len(vertices) == 0 {
		return 0
	}
	z := vertices[0].Z
	for _, v := range vertices[1:] {
		z = math.Max(z, v.Z)
	}
	return z
}

// SignedArea is positive for counter-clockwise polygons.
func SignedArea(poly []r2.Vec) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	var a float64
	for i := 0; i < n; i++ {
		a += r2.Cross(poly[i], poly[(i+1)%n])
	}
	return a / 2
}

// Centroid returns the area centroid of a simple polygon. Degenerate
// polygons (near-zero area) use the vertex mean instead.
func Centroid(poly []r2.Vec) r2.Vec {
	if len(poly) == 0 {
		return r2.Vec{}
	}
	area := SignedArea(poly)
	if math.Abs(area) < 1e-12 {
		var sum r2.Vec
		for _, p := range poly {
			sum = r2.Add(sum, p)
		}
		return r2.Scale(1/float64(len(poly)), sum)
	}
	var cx, cy float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		c := r2.Cross(p, q)
		cx += (p.X + q.X) * c
		cy += (p.Y + q.Y) * c
	}
	return r2.Vec{X: cx / (6 * area), Y: cy / (6 * area)}
}

// PointInPolygon reports whether p lies inside poly using ray casting
// towards +X. Points exactly on an edge may land on either side; callers
// that care combine this with DistanceToBoundary.
func PointInPolygon(p r2.Vec, poly []r2.Vec) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// ClosestPointOnSegment returns the point of segment ab nearest to p and
// its parameter t in [0, 1]. A degenerate segment returns (a, 0).
func ClosestPointOnSegment(p, a, b r2.Vec) (r2.Vec, float64) {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return a, 0
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(a, r2.Scale(t, ab)), t
}

// DistanceToSegment is the distance from p to segment ab.
func DistanceToSegment(p, a, b r2.Vec) float64 {
	c, _ := ClosestPointOnSegment(p, a, b)
	return r2.Norm(r2.Sub(p, c))
}

// DistanceToBoundary is the distance from p to the nearest polygon edge
// (the polygon is treated as closed).
func DistanceToBoundary(p r2.Vec, poly []r2.Vec) float64 {
	n := len(poly)
	switch n {
	case 0:
		return math.Inf(1)
	case 1:
		return r2.Norm(r2.Sub(p, poly[0]))
	}
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		best = math.Min(best, DistanceToSegment(p, poly[i], poly[(i+1)%n]))
	}
	return best
}

// SegmentHitsCircle reports whether segment ab passes through the circle
// (center, radius). Only interior closest points count: the closest point
// must lie strictly between a and b, so legs that merely start or end near
// an obstacle are not flagged. The closest point is returned as well.
func SegmentHitsCircle(a, b, center r2.Vec, radius float64) (bool, r2.Vec) {
	c, t := ClosestPointOnSegment(center, a, b)
	if t <= 0 || t >= 1 {
		return false, c
	}
	return r2.Norm(r2.Sub(center, c)) < radius, c
}
