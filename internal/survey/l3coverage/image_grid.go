package l3coverage

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
)

// rowKeyScale rounds short-axis projections to millimetres when grouping
// lattice points into rows.
const rowKeyScale = 1000.0

// BoundaryThreshold is the distance outside the polygon within which an
// image centre is still kept: half the footprint diagonal, scaled by
// (0.5 + overlap) so denser missions reach further past the edge.
func BoundaryThreshold(diagonal, overlap float64) float64 {
	return 0.5 * diagonal * (0.5 + overlap)
}

// ImageCenterGrid places one image centre per lattice cell.
//
// Algorithm:
//  1. Frame: origin at the polygon centroid, axes from the OBB
//  2. Steps: footprintHeight×(1−overlap) along Axis1 and
//     footprintWidth×(1−overlap) along Axis2
//  3. Lattice over the projected vertex extents, expanded by one footprint
//     dimension on every side
//  4. Keep points inside the polygon or within BoundaryThreshold of it
//  5. Group into rows by rounded Axis2 projection, sort rows along Axis1,
//     reverse every other row (snake) and concatenate
func ImageCenterGrid(req Request) (Coverage, error) {
	if err := req.Validate(); err != nil {
		return Coverage{}, err
	}
	if len(req.Polygon) < 3 {
		return Coverage{}, fmt.Errorf("%w: image-center grid needs a polygon with at least 3 vertices, got %d",
			ErrInvalidInput, len(req.Polygon))
	}

	origin := l1geom.Centroid(req.Polygon)
	axis1, axis2 := req.OBB.Axis1, req.OBB.Axis2
	fp := req.Footprint

	alongStep := math.Max(MinSpacing, fp.Height*(1-req.Overlap))
	acrossStep := math.Max(MinSpacing, fp.Width*(1-req.Overlap))

	along := make([]float64, len(req.Polygon))
	across := make([]float64, len(req.Polygon))
	for i, v := range req.Polygon {
		d := r2.Sub(v, origin)
		along[i] = r2.Dot(d, axis1)
		across[i] = r2.Dot(d, axis2)
	}
	minA, maxA := floats.Min(along)-fp.Height, floats.Max(along)+fp.Height
	minC, maxC := floats.Min(across)-fp.Width, floats.Max(across)+fp.Width

	nA := int(math.Floor((maxA-minA)/alongStep)) + 1
	nC := int(math.Floor((maxC-minC)/acrossStep)) + 1
	if nA*nC > MaxGridPoints {
		return Coverage{}, fmt.Errorf("%w: lattice of %dx%d exceeds %d points",
			ErrInvalidInput, nA, nC, MaxGridPoints)
	}

	threshold := BoundaryThreshold(fp.Diagonal(), req.Overlap)

	type cell struct {
		along float64
		p     r2.Vec
	}
	rows := make(map[int64][]cell)
	for j := 0; j < nC; j++ {
		c := minC + float64(j)*acrossStep
		for i := 0; i < nA; i++ {
			a := minA + float64(i)*alongStep
			p := r2.Add(origin, r2.Add(r2.Scale(a, axis1), r2.Scale(c, axis2)))
			if !l1geom.PointInPolygon(p, req.Polygon) &&
				l1geom.DistanceToBoundary(p, req.Polygon) > threshold {
				continue
			}
			key := int64(math.Round(c * rowKeyScale))
			rows[key] = append(rows[key], cell{along: a, p: p})
		}
	}
	if len(rows) == 0 {
		return Coverage{}, fmt.Errorf("%w: no lattice point within %.2f m of the target", ErrEmptyCoverage, threshold)
	}

	keys := make([]int64, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var (
		points  []r2.Vec
		columns int
	)
	for r, k := range keys {
		row := rows[k]
		sort.Slice(row, func(i, j int) bool { return row[i].along < row[j].along })
		if r%2 == 1 {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		for _, c := range row {
			points = append(points, c.p)
		}
		columns = max(columns, len(row))
	}

	return Coverage{
		Strategy:    StrategyImageCenter,
		Points:      points,
		Altitude:    req.Altitude,
		LineSpacing: acrossStep,
		AlongStep:   alongStep,
		Rows:        len(keys),
		Columns:     columns,
	}, nil
}
