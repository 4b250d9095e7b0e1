package l1geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// component is the name used when recording diagnostics from this layer.
const component = "l1geom"

// LocalCoord is a point in the mission's local tangent-plane frame.
// Units are metres; Z is up. The frame is fixed for the lifetime of a
// planning call and is never reprojected part way through.
type LocalCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVec converts a gonum r3 vector to a LocalCoord.
func FromVec(v r3.Vec) LocalCoord {
	return LocalCoord{X: v.X, Y: v.Y, Z: v.Z}
}

// At lifts a 2-D point to a LocalCoord at height z.
func At(p r2.Vec, z float64) LocalCoord {
	return LocalCoord{X: p.X, Y: p.Y, Z: z}
}

// Vec returns the coordinate as an r3 vector.
func (c LocalCoord) Vec() r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// XY drops the Z component.
func (c LocalCoord) XY() r2.Vec {
	return r2.Vec{X: c.X, Y: c.Y}
}

// Distance is the 3-D Euclidean distance to o.
func (c LocalCoord) Distance(o LocalCoord) float64 {
	return r3.Norm(r3.Sub(c.Vec(), o.Vec()))
}

// HorizontalDistance ignores Z.
func (c LocalCoord) HorizontalDistance(o LocalCoord) float64 {
	return r2.Norm(r2.Sub(c.XY(), o.XY()))
}

// NearlyEqual reports whether every axis differs by less than eps.
func (c LocalCoord) NearlyEqual(o LocalCoord, eps float64) bool {
	return math.Abs(c.X-o.X) < eps &&
		math.Abs(c.Y-o.Y) < eps &&
		math.Abs(c.Z-o.Z) < eps
}

// Perp returns v rotated 90° counter-clockwise.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// SafeUnit normalises v, returning fallback when |v| is below eps.
func SafeUnit(v, fallback r2.Vec, eps float64) r2.Vec {
	n := r2.Norm(v)
	if n < eps {
		return fallback
	}
	return r2.Scale(1/n, v)
}

// HeadingDeg returns the compass-style heading of the horizontal vector
// from -> to, in degrees clockwise from +Y (north) in [0, 360). A zero
// length vector yields 0.
func HeadingDeg(from, to r2.Vec) float64 {
	d := r2.Sub(to, from)
	if r2.Norm2(d) == 0 {
		return 0
	}
	h := math.Atan2(d.X, d.Y) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}
