// Package testutil provides shared test helpers and survey fixtures.
//
// Engine layers (internal/survey/lN*) must not import this package from
// their own tests, since the fixtures depend on them. It is meant for the
// facade, adapters and the CLI.
package testutil

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l2optics"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertInDelta reports an error when got and want differ by more than delta.
func AssertInDelta(t testing.TB, got, want, delta float64, what string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("%s = %g, want %g ± %g", what, got, want, delta)
	}
}

// SquareTarget returns a size×size square target at z, counter-clockwise
// from the origin.
func SquareTarget(size, z float64) []l1geom.LocalCoord {
	return []l1geom.LocalCoord{
		{X: 0, Y: 0, Z: z},
		{X: size, Y: 0, Z: z},
		{X: size, Y: size, Z: z},
		{X: 0, Y: size, Z: z},
	}
}

// LShapeTarget returns a concave 200×200 L with the upper-right 100×100
// quadrant removed.
func LShapeTarget(z float64) []l1geom.LocalCoord {
	return []l1geom.LocalCoord{
		{X: 0, Y: 0, Z: z},
		{X: 200, Y: 0, Z: z},
		{X: 200, Y: 100, Z: z},
		{X: 100, Y: 100, Z: z},
		{X: 100, Y: 200, Z: z},
		{X: 0, Y: 200, Z: z},
	}
}

// MappingCamera is a fixed 24 mm lens on a 1" 20 MP sensor.
func MappingCamera() l2optics.CameraSpecs {
	return l2optics.CameraSpecs{
		Name:           "mapping-1in-24mm",
		FocalLengthMm:  24,
		SensorWidthMm:  13.2,
		SensorHeightMm: 8.8,
		ImageWidthPx:   5472,
		ImageHeightPx:  3648,
		Aperture:       5.6,
	}
}

// ZoomCamera is a 24-70 mm zoom on a full-frame sensor at the given
// zoom position.
func ZoomCamera(position float64) l2optics.CameraSpecs {
	return l2optics.CameraSpecs{
		Name:           "zoom-ff-24-70",
		ZoomRangeMm:    [2]float64{24, 70},
		ZoomPosition:   &position,
		SensorWidthMm:  36,
		SensorHeightMm: 24,
		ImageWidthPx:   8192,
		ImageHeightPx:  5460,
	}
}
