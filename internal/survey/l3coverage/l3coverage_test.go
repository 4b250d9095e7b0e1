package l3coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l2optics"
)

var square100 = []r2.Vec{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

func footprint(w, h float64) l2optics.Footprint {
	return l2optics.Footprint{Width: w, Height: h, AltitudeAGL: 50}
}

func request(strategy Strategy, poly []r2.Vec, fp l2optics.Footprint, overlap float64) Request {
	return Request{
		Strategy:   strategy,
		Polygon:    poly,
		OBB:        l1geom.ComputeOBB(poly, nil),
		Footprint:  fp,
		Overlap:    overlap,
		Turnaround: 5,
		Altitude:   60,
	}
}

func TestRasterLineSweep_Spacing(t *testing.T) {
	fp := footprint(20, 15)

	zero, err := RasterLineSweep(request(StrategyRasterLines, square100, fp, 0))
	require.NoError(t, err)
	assert.Equal(t, fp.Width, zero.LineSpacing, "no overlap spaces lines by the raw footprint")
	assert.Equal(t, 5, zero.Rows)
	assert.Len(t, zero.Points, 10)

	dense, err := RasterLineSweep(request(StrategyRasterLines, square100, fp, 0.95))
	require.NoError(t, err)
	assert.Less(t, dense.LineSpacing, zero.LineSpacing)
	assert.Greater(t, dense.Rows, zero.Rows)
}

func TestRasterLineSweep_GeometryAndSnake(t *testing.T) {
	rect := []r2.Vec{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 40}, {X: 0, Y: 40}}
	req := request(StrategyRasterLines, rect, footprint(20, 15), 0)

	cov, err := RasterLineSweep(req)
	require.NoError(t, err)
	require.Equal(t, 2, cov.Rows)
	require.Len(t, cov.Points, 4)

	for i := 0; i < len(cov.Points); i += 2 {
		line := r2.Sub(cov.Points[i+1], cov.Points[i])
		assert.InDelta(t, 200+2*req.Turnaround, r2.Norm(line), 1e-9, "lines span the box plus turnaround")
	}
	// Second line runs opposite to the first.
	first := r2.Sub(cov.Points[1], cov.Points[0])
	second := r2.Sub(cov.Points[3], cov.Points[2])
	assert.Less(t, r2.Dot(first, second), 0.0)

	// Lines sit at the strip centres across the short axis.
	_, a0 := req.OBB.Project(cov.Points[0])
	_, a1 := req.OBB.Project(cov.Points[2])
	assert.InDelta(t, 20.0, math.Abs(a1-a0), 1e-9)
	assert.InDelta(t, 10.0, math.Abs(a0), 1e-9)
}

func TestRasterLineSweep_NarrowTargetStillTwoLines(t *testing.T) {
	strip := []r2.Vec{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 1}, {X: 0, Y: 1}}
	cov, err := RasterLineSweep(request(StrategyRasterLines, strip, footprint(50, 40), 0.2))
	require.NoError(t, err)
	assert.Equal(t, 2, cov.Rows)
}

func TestImageCenterGrid_SquareScenario(t *testing.T) {
	cov, err := ImageCenterGrid(request(StrategyImageCenter, square100, footprint(20, 15), 0.5))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, cov.Rows, 5)
	assert.GreaterOrEqual(t, cov.Columns, 5)
	assert.InDelta(t, 10.0, cov.LineSpacing, 1e-12)
	assert.InDelta(t, 7.5, cov.AlongStep, 1e-12)
	assert.Equal(t, 60.0, cov.Altitude)

	threshold := BoundaryThreshold(footprint(20, 15).Diagonal(), 0.5)
	for _, p := range cov.Points {
		if !l1geom.PointInPolygon(p, square100) {
			assert.LessOrEqual(t, l1geom.DistanceToBoundary(p, square100), threshold)
		}
	}
}

func TestImageCenterGrid_SpacingFollowsOverlap(t *testing.T) {
	fp := footprint(20, 15)

	zero, err := ImageCenterGrid(request(StrategyImageCenter, square100, fp, 0))
	require.NoError(t, err)
	assert.Equal(t, fp.Width, zero.LineSpacing)
	assert.Equal(t, fp.Height, zero.AlongStep)

	dense, err := ImageCenterGrid(request(StrategyImageCenter, square100, fp, 0.95))
	require.NoError(t, err)
	assert.Less(t, dense.LineSpacing, zero.LineSpacing)
	assert.Less(t, dense.AlongStep, zero.AlongStep)
	assert.Greater(t, len(dense.Points), len(zero.Points))
}

func TestImageCenterGrid_RowsSnake(t *testing.T) {
	req := request(StrategyImageCenter, square100, footprint(20, 15), 0.3)
	cov, err := ImageCenterGrid(req)
	require.NoError(t, err)

	// Walk rows by their across projection and record the along direction.
	type run struct{ first, last float64 }
	var runs []run
	prevAcross := math.NaN()
	for _, p := range cov.Points {
		along, across := req.OBB.Project(p)
		if len(runs) == 0 || math.Abs(across-prevAcross) > 1e-6 {
			runs = append(runs, run{first: along, last: along})
		} else {
			runs[len(runs)-1].last = along
		}
		prevAcross = across
	}
	require.Equal(t, cov.Rows, len(runs))
	for i := 1; i < len(runs); i++ {
		prev := runs[i-1].last - runs[i-1].first
		cur := runs[i].last - runs[i].first
		if prev != 0 && cur != 0 {
			assert.Less(t, prev*cur, 0.0, "row %d must run opposite to row %d", i, i-1)
		}
	}
}

func TestImageCenterGrid_ConcaveTargetSkipsNotch(t *testing.T) {
	lShape := []r2.Vec{
		{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100},
		{X: 100, Y: 100}, {X: 100, Y: 200}, {X: 0, Y: 200},
	}
	fp := footprint(20, 15)
	cov, err := ImageCenterGrid(request(StrategyImageCenter, lShape, fp, 0.2))
	require.NoError(t, err)

	threshold := BoundaryThreshold(fp.Diagonal(), 0.2)
	for _, p := range cov.Points {
		inNotch := p.X > 100+threshold && p.Y > 100+threshold
		assert.False(t, inNotch, "point %v lies deep in the notch", p)
	}
}

func TestGenerate_ValidatesAndDispatches(t *testing.T) {
	var diag monitoring.Diagnostics
	cov, err := Generate(request(StrategyRasterLines, square100, footprint(20, 15), 0.6), &diag)
	require.NoError(t, err)
	assert.Equal(t, StrategyRasterLines, cov.Strategy)
	assert.True(t, diag.Has(monitoring.CodeCoverageStrategy))

	seq := cov.Sequence()
	require.Len(t, seq, len(cov.Points))
	assert.True(t, seq[0].Capture)
	assert.Equal(t, 60.0, seq[0].Position.Z)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"negative overlap", func(r *Request) { r.Overlap = -0.1 }},
		{"overlap too high", func(r *Request) { r.Overlap = 0.99 }},
		{"zero footprint", func(r *Request) { r.Footprint.Width = 0 }},
		{"negative turnaround", func(r *Request) { r.Turnaround = -1 }},
		{"unknown strategy", func(r *Request) { r.Strategy = "spiral" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(StrategyImageCenter, square100, footprint(20, 15), 0.5)
			tt.mutate(&req)
			_, err := Generate(req, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = ImageCenterGrid(request(StrategyImageCenter, square100[:2], footprint(20, 15), 0.5))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("raster")
	require.NoError(t, err)
	assert.Equal(t, StrategyRasterLines, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyImageCenter, s)

	_, err = ParseStrategy("zigzag")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
