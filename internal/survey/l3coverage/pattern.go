package l3coverage

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
)

// ErrInvalidPattern is returned for unusable manual pattern parameters.
var ErrInvalidPattern = errors.New("invalid raster pattern")

// Orientation picks the sweep and step directions of a manual pattern.
// The two directions are always perpendicular.
type Orientation string

const (
	// OrientationAlongX sweeps along +X and steps along +Y.
	OrientationAlongX Orientation = "along_x"
	// OrientationAlongY sweeps along +Y and steps along +X.
	OrientationAlongY Orientation = "along_y"
)

// Directions returns the unit sweep and step vectors.
func (o Orientation) Directions() (sweep, step r2.Vec, err error) {
	switch o {
	case OrientationAlongX, "":
		return r2.Vec{X: 1}, r2.Vec{Y: 1}, nil
	case OrientationAlongY:
		return r2.Vec{Y: 1}, r2.Vec{X: 1}, nil
	}
	return r2.Vec{}, r2.Vec{}, fmt.Errorf("%w: unknown orientation %q", ErrInvalidPattern, o)
}

// PatternParams configures a manual lawnmower pattern.
type PatternParams struct {
	// Start is the absolute ground position of the first pass.
	Start       l1geom.LocalCoord `json:"start"`
	PassLength  float64           `json:"pass_length"`
	PassSpacing float64           `json:"pass_spacing"`
	Passes      int               `json:"passes"`
	AltitudeAGL float64           `json:"altitude_agl"`
	Orientation Orientation       `json:"orientation"`
	Snake       bool              `json:"snake"`
}

// Validate rejects non-positive geometry.
func (p PatternParams) Validate() error {
	switch {
	case p.PassLength <= 0:
		return fmt.Errorf("%w: pass length must be positive, got %g", ErrInvalidPattern, p.PassLength)
	case p.PassSpacing <= 0:
		return fmt.Errorf("%w: pass spacing must be positive, got %g", ErrInvalidPattern, p.PassSpacing)
	case p.Passes < 1:
		return fmt.Errorf("%w: at least one pass is required, got %d", ErrInvalidPattern, p.Passes)
	case p.AltitudeAGL <= 0:
		return fmt.Errorf("%w: altitude must be positive, got %g", ErrInvalidPattern, p.AltitudeAGL)
	}
	_, _, err := p.Orientation.Directions()
	return err
}

// ExpectedPoints is the number of points GeneratePattern emits:
// 2·passes for snake patterns and 2·passes + (passes−1) otherwise.
func (p PatternParams) ExpectedPoints() int {
	if p.Snake {
		return 2 * p.Passes
	}
	return 3*p.Passes - 1
}

// GeneratePattern emits a deterministic lawnmower pattern at
// Start.Z + AltitudeAGL. Every pass contributes its two sweep endpoints.
// Snake patterns reverse every other pass; otherwise every pass runs in
// the same direction and a non-capturing return point at the pass start
// is inserted before stepping to the next pass.
func GeneratePattern(p PatternParams) ([]Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sweep, step, _ := p.Orientation.Directions()
	z := p.Start.Z + p.AltitudeAGL
	origin := p.Start.XY()

	out := make([]Point, 0, p.ExpectedPoints())
	for i := 0; i < p.Passes; i++ {
		s := r2.Add(origin, r2.Scale(float64(i)*p.PassSpacing, step))
		e := r2.Add(s, r2.Scale(p.PassLength, sweep))
		if p.Snake && i%2 == 1 {
			s, e = e, s
		}
		out = append(out,
			Point{Position: l1geom.At(s, z), Capture: true},
			Point{Position: l1geom.At(e, z), Capture: true},
		)
		if !p.Snake && i < p.Passes-1 {
			out = append(out, Point{Position: l1geom.At(s, z)})
		}
	}
	return out, nil
}
