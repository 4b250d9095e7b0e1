package l1geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/monitoring"
)

const (
	// MinOBBDimension is the floor applied to both box dimensions so that
	// downstream spacing maths never divides by zero.
	MinOBBDimension = 0.1

	// minEdgeLengthSq skips hull edges too short to give a stable axis.
	minEdgeLengthSq = 0.001

	// obbOrthogonalityEpsilon is the largest |axis1·axis2| accepted before
	// axis2 is rebuilt as the exact perpendicular of axis1.
	obbOrthogonalityEpsilon = 1e-8
)

// OBBResult is a minimal-area bounding rectangle.
//
//   - Center: rectangle centre (metres, local frame)
//   - Axis1: unit vector along the longer side
//   - Axis2: unit vector along the shorter side, Cross(Axis1, Axis2) > 0
//   - Length: extent along Axis1, always >= Width
//   - Width: extent along Axis2
//   - Fallback: true when the axis-aligned fallback was used
type OBBResult struct {
	Center   r2.Vec  `json:"center"`
	Axis1    r2.Vec  `json:"axis1"`
	Axis2    r2.Vec  `json:"axis2"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Fallback bool    `json:"fallback,omitempty"`
}

// Area returns Length × Width.
func (o OBBResult) Area() float64 {
	return o.Length * o.Width
}

// HeadingRad is the angle of Axis1 from +X, in [-π, π].
func (o OBBResult) HeadingRad() float64 {
	return math.Atan2(o.Axis1.Y, o.Axis1.X)
}

// Project returns the coordinates of p along Axis1 and Axis2 relative to
// the box centre.
func (o OBBResult) Project(p r2.Vec) (along, across float64) {
	d := r2.Sub(p, o.Center)
	return r2.Dot(d, o.Axis1), r2.Dot(d, o.Axis2)
}

// Point is the inverse of Project.
func (o OBBResult) Point(along, across float64) r2.Vec {
	return r2.Add(o.Center, r2.Add(r2.Scale(along, o.Axis1), r2.Scale(across, o.Axis2)))
}

// Corners returns the four corners in counter-clockwise order.
func (o OBBResult) Corners() [4]r2.Vec {
	hl, hw := o.Length/2, o.Width/2
	return [4]r2.Vec{
		o.Point(-hl, -hw),
		o.Point(hl, -hw),
		o.Point(hl, hw),
		o.Point(-hl, hw),
	}
}

// ComputeOBB finds the minimum-area rectangle enclosing points using
// rotating calipers over the convex hull.
//
// Algorithm:
//  1. Compute the convex hull
//  2. For every hull edge build an orthonormal frame (edge, perpendicular)
//  3. Project all hull points onto both axes to get a candidate rectangle
//  4. Keep the smallest positive-area candidate (first one wins ties)
//  5. Re-normalise, orthogonalise and orient the axes; put the longer
//     dimension on Axis1 and floor both dimensions
//
// A hull with fewer than three points, or no edge yielding a positive
// area, falls back to AxisAlignedBox and records CodeOBBFallback.
func ComputeOBB(points []r2.Vec, diag *monitoring.Diagnostics) OBBResult {
	hull := ConvexHull(points)
	if len(hull) < 3 {
		diag.Warnf(component, monitoring.CodeOBBFallback,
			"convex hull has %d points, using axis-aligned box", len(hull))
		return AxisAlignedBox(points)
	}

	var (
		found                  bool
		bestArea               = math.Inf(1)
		bestU, bestV           r2.Vec
		minU, maxU, minV, maxV float64
	)
	n := len(hull)
	for i := 0; i < n; i++ {
		edge := r2.Sub(hull[(i+1)%n], hull[i])
		if r2.Norm2(edge) < minEdgeLengthSq {
			continue
		}
		u := r2.Unit(edge)
		v := Perp(u)

		lowU, highU := math.Inf(1), math.Inf(-1)
		lowV, highV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu, pv := r2.Dot(p, u), r2.Dot(p, v)
			lowU, highU = math.Min(lowU, pu), math.Max(highU, pu)
			lowV, highV = math.Min(lowV, pv), math.Max(highV, pv)
		}

		area := (highU - lowU) * (highV - lowV)
		if area > 0 && area < bestArea {
			found = true
			bestArea = area
			bestU, bestV = u, v
			minU, maxU, minV, maxV = lowU, highU, lowV, highV
		}
	}
	if !found {
		diag.Warnf(component, monitoring.CodeOBBFallback,
			"no hull edge produced a positive-area rectangle, using axis-aligned box")
		return AxisAlignedBox(points)
	}

	center := r2.Add(r2.Scale((minU+maxU)/2, bestU), r2.Scale((minV+maxV)/2, bestV))
	length := maxU - minU
	width := maxV - minV

	axis1 := SafeUnit(bestU, r2.Vec{X: 1}, 1e-12)
	axis2 := SafeUnit(bestV, Perp(axis1), 1e-12)
	if math.Abs(r2.Dot(axis1, axis2)) > obbOrthogonalityEpsilon {
		diag.Infof(component, monitoring.CodeOBBOrthogonalised,
			"axes not orthogonal (dot=%.3g), rebuilt axis2", r2.Dot(axis1, axis2))
		axis2 = Perp(axis1)
	}
	if r2.Cross(axis1, axis2) < 0 {
		axis2 = r2.Scale(-1, axis2)
	}
	if width > length {
		length, width = width, length
		// Rotating the frame by +90° keeps the cross product positive.
		axis1, axis2 = axis2, r2.Scale(-1, axis1)
	}

	return OBBResult{
		Center: center,
		Axis1:  axis1,
		Axis2:  axis2,
		Length: math.Max(length, MinOBBDimension),
		Width:  math.Max(width, MinOBBDimension),
	}
}

// AxisAlignedBox returns the world-axis bounding box of points as an
// OBBResult with Fallback set. Empty input yields a minimum-size box at
// the origin.
func AxisAlignedBox(points []r2.Vec) OBBResult {
	if len(points) == 0 {
		return OBBResult{
			Axis1:    r2.Vec{X: 1},
			Axis2:    r2.Vec{Y: 1},
			Length:   MinOBBDimension,
			Width:    MinOBBDimension,
			Fallback: true,
		}
	}
	box := Bounds(points)
	dx := box.Max.X - box.Min.X
	dy := box.Max.Y - box.Min.Y
	res := OBBResult{
		Center:   r2.Scale(0.5, r2.Add(box.Min, box.Max)),
		Axis1:    r2.Vec{X: 1},
		Axis2:    r2.Vec{Y: 1},
		Length:   dx,
		Width:    dy,
		Fallback: true,
	}
	if dy > dx {
		res.Axis1 = r2.Vec{Y: 1}
		res.Axis2 = r2.Vec{X: -1}
		res.Length, res.Width = dy, dx
	}
	res.Length = math.Max(res.Length, MinOBBDimension)
	res.Width = math.Max(res.Width, MinOBBDimension)
	return res
}

// Bounds returns the axis-aligned bounds of points. The zero Box is
// returned for empty input.
func Bounds(points []r2.Vec) r2.Box {
	if len(points) == 0 {
		return r2.Box{}
	}
	box := r2.Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	return box
}
