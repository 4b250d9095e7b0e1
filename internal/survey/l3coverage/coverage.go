package l3coverage

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l2optics"
)

const component = "l3coverage"

const (
	// MaxOverlap is the largest accepted overlap fraction.
	MaxOverlap = 0.95

	// MinSpacing is the smallest line or grid step in metres.
	MinSpacing = 0.1

	// MaxGridPoints bounds the image-center lattice before filtering.
	MaxGridPoints = 250000
)

var (
	// ErrInvalidInput is returned for non-positive or out-of-range scalars.
	ErrInvalidInput = errors.New("invalid coverage input")

	// ErrEmptyCoverage is returned when a strategy yields no points.
	ErrEmptyCoverage = errors.New("coverage produced no points")
)

// Strategy selects the coverage generator.
type Strategy string

const (
	StrategyRasterLines Strategy = "raster"
	StrategyImageCenter Strategy = "image_center"
)

// ParseStrategy accepts the JSON/CLI spelling of a strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRasterLines, StrategyImageCenter:
		return Strategy(s), nil
	case "":
		return StrategyImageCenter, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q (want raster or image_center)", ErrInvalidInput, s)
}

// Point is one coverage vertex. Capture marks vertices where a photo is
// taken; manual patterns insert non-capturing return legs.
type Point struct {
	Position l1geom.LocalCoord `json:"position"`
	Capture  bool              `json:"capture"`
}

// Coverage is the output of a coverage strategy: an ordered point sequence
// flown at a constant altitude.
type Coverage struct {
	Strategy    Strategy `json:"strategy"`
	Points      []r2.Vec `json:"points"`
	Altitude    float64  `json:"altitude"`
	LineSpacing float64  `json:"line_spacing"`         // cross-track spacing
	AlongStep   float64  `json:"along_step,omitempty"` // image-center only
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
}

// Sequence lifts the 2-D points to capture points at the coverage altitude.
func (c Coverage) Sequence() []Point {
	out := make([]Point, len(c.Points))
	for i, p := range c.Points {
		out[i] = Point{Position: l1geom.At(p, c.Altitude), Capture: true}
	}
	return out
}

// Request gathers everything a coverage strategy needs.
type Request struct {
	Strategy Strategy
	// Polygon is the target projected to the world-horizontal plane.
	Polygon   []r2.Vec
	OBB       l1geom.OBBResult
	Footprint l2optics.Footprint
	// Overlap is a fraction in [0, MaxOverlap].
	Overlap float64
	// Turnaround extends raster lines beyond the target on both ends.
	Turnaround float64
	// Altitude is the absolute coverage altitude (local Z).
	Altitude float64
}

// Validate checks scalar inputs shared by both strategies.
func (r Request) Validate() error {
	if math.IsNaN(r.Overlap) || r.Overlap < 0 || r.Overlap > MaxOverlap {
		return fmt.Errorf("%w: overlap must be in [0, %g], got %g", ErrInvalidInput, MaxOverlap, r.Overlap)
	}
	if r.Footprint.Width <= 0 || r.Footprint.Height <= 0 {
		return fmt.Errorf("%w: footprint must be positive, got %gx%g",
			ErrInvalidInput, r.Footprint.Width, r.Footprint.Height)
	}
	if r.Turnaround < 0 {
		return fmt.Errorf("%w: turnaround buffer must not be negative, got %g", ErrInvalidInput, r.Turnaround)
	}
	return nil
}

// Generate runs the requested strategy. It never returns an empty
// Coverage without an error.
func Generate(req Request, diag *monitoring.Diagnostics) (Coverage, error) {
	if err := req.Validate(); err != nil {
		return Coverage{}, err
	}
	var (
		cov Coverage
		err error
	)
	switch req.Strategy {
	case StrategyRasterLines:
		cov, err = RasterLineSweep(req)
	case StrategyImageCenter, "":
		cov, err = ImageCenterGrid(req)
	default:
		return Coverage{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, req.Strategy)
	}
	if err != nil {
		return Coverage{}, err
	}
	diag.Infof(component, monitoring.CodeCoverageStrategy,
		"%s produced %d points in %d rows (spacing %.2f m)", cov.Strategy, len(cov.Points), cov.Rows, cov.LineSpacing)
	return cov, nil
}
