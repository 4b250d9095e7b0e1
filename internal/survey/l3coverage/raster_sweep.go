package l3coverage

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// RasterLineSweep covers the target's oriented bounding box with parallel
// lines along the long axis.
//
// Line spacing is max(MinSpacing, footprintWidth × (1 − overlap)) and the
// line count is max(2, ceil(boxWidth / spacing)). Lines sit at the centres
// of equal strips across the short axis, so the outermost lines are never
// further than half a spacing from the box edge. Each line is extended by
// the turnaround buffer past both ends of the box and alternate lines are
// reversed so the result is one continuous snake.
func RasterLineSweep(req Request) (Coverage, error) {
	if err := req.Validate(); err != nil {
		return Coverage{}, err
	}
	obb := req.OBB

	spacing := math.Max(MinSpacing, req.Footprint.Width*(1-req.Overlap))
	lines := int(math.Ceil(obb.Width / spacing))
	if lines < 2 {
		lines = 2
	}
	strip := obb.Width / float64(lines)
	half := obb.Length/2 + req.Turnaround

	points := make([]r2.Vec, 0, 2*lines)
	for i := 0; i < lines; i++ {
		across := -obb.Width/2 + (float64(i)+0.5)*strip
		start := obb.Point(-half, across)
		end := obb.Point(half, across)
		if i%2 == 1 {
			start, end = end, start
		}
		points = append(points, start, end)
	}
	if len(points) == 0 {
		return Coverage{}, fmt.Errorf("%w: raster sweep over %gx%g box", ErrEmptyCoverage, obb.Length, obb.Width)
	}

	return Coverage{
		Strategy:    StrategyRasterLines,
		Points:      points,
		Altitude:    req.Altitude,
		LineSpacing: spacing,
		Rows:        lines,
		Columns:     2,
	}, nil
}
