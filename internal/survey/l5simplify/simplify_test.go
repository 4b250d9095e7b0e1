package l5simplify

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
)

func zigzag(n int) []r3.Vec {
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = r3.Vec{X: float64(i) * 10, Y: 3 * math.Sin(float64(i)), Z: 40 + float64(i%3)}
	}
	return pts
}

func segment(n int) *l4route.PathSegment {
	wps := make([]l4route.Waypoint, n)
	for i := range wps {
		wps[i] = l4route.Waypoint{
			Local:     l1geom.LocalCoord{X: float64(i) * 10, Y: float64(i%2) * 4, Z: 50},
			Kind:      l4route.KindCoverage,
			Actions:   []l4route.Action{{Type: l4route.ActionCapturePhoto}},
			PathOrder: i,
		}
	}
	return &l4route.PathSegment{
		ID:        "parent",
		Type:      l4route.SegmentSurvey,
		Waypoints: wps,
		Speed:     6,
		Metadata:  &l4route.SegmentMetadata{Strategy: "raster"},
	}
}

func TestPerpendicularDistance(t *testing.T) {
	a := r3.Vec{}
	b := r3.Vec{X: 10}
	assert.InDelta(t, 5.0, PerpendicularDistance(r3.Vec{X: 3, Y: 3, Z: 4}, a, b), 1e-12)
	// Distance is to the infinite line, not the segment.
	assert.InDelta(t, 2.0, PerpendicularDistance(r3.Vec{X: 50, Y: 2}, a, b), 1e-12)
	// Degenerate chord falls back to point distance.
	assert.InDelta(t, 5.0, PerpendicularDistance(r3.Vec{X: 3, Y: 4}, a, a), 1e-12)
}

func TestDouglasPeucker_StraightLineCollapses(t *testing.T) {
	pts := make([]r3.Vec, 10)
	for i := range pts {
		pts[i] = r3.Vec{X: float64(i), Y: 2 * float64(i), Z: 5}
	}
	got := Simplify(pts, 0.01)
	if diff := cmp.Diff([]r3.Vec{pts[0], pts[9]}, got); diff != "" {
		t.Errorf("straight line mismatch (-want +got):\n%s", diff)
	}
}

func TestDouglasPeucker_ZeroToleranceIsIdentity(t *testing.T) {
	pts := zigzag(25)
	for _, eps := range []float64{0, -1} {
		got := Simplify(pts, eps)
		assert.Equal(t, pts, got)
		got[0].X = 999
		assert.NotEqual(t, 999.0, pts[0].X, "result must be a copy")
	}
}

func TestDouglasPeucker_EndpointsAndMonotonicity(t *testing.T) {
	pts := zigzag(60)
	prev := len(pts) + 1
	for _, eps := range []float64{0, 0.1, 0.5, 1, 2, 5, 50} {
		t.Run(fmt.Sprintf("eps=%g", eps), func(t *testing.T) {
			idx := DouglasPeucker(pts, eps)
			require.NotEmpty(t, idx)
			assert.Equal(t, 0, idx[0])
			assert.Equal(t, len(pts)-1, idx[len(idx)-1])
			for i := 1; i < len(idx); i++ {
				assert.Less(t, idx[i-1], idx[i], "indices stay ascending")
			}
			assert.LessOrEqual(t, len(idx), prev, "larger tolerance never keeps more points")
			prev = len(idx)
		})
	}
}

func TestDouglasPeucker_SmallInputs(t *testing.T) {
	assert.Nil(t, DouglasPeucker(nil, 1))
	assert.Equal(t, []int{0}, DouglasPeucker([]r3.Vec{{X: 1}}, 1))
	assert.Equal(t, []int{0, 1}, DouglasPeucker([]r3.Vec{{X: 1}, {X: 2}}, 1))
}

// transit clears the actions of every interior waypoint.
func transit(n int) *l4route.PathSegment {
	seg := segment(n)
	for i := 1; i < n-1; i++ {
		seg.Waypoints[i].Kind = l4route.KindTransit
		seg.Waypoints[i].Actions = nil
	}
	return seg
}

func TestAnchoredDouglasPeucker(t *testing.T) {
	pts := make([]r3.Vec, 9)
	for i := range pts {
		pts[i] = r3.Vec{X: float64(i) * 10, Z: 40}
	}
	anchors := make([]bool, len(pts))
	anchors[3], anchors[4] = true, true

	assert.Equal(t, []int{0, 3, 4, 8}, AnchoredDouglasPeucker(pts, anchors, 1))
	assert.Equal(t, []int{0, 8}, AnchoredDouglasPeucker(pts, nil, 1))
	assert.Equal(t, DouglasPeucker(pts, 0), AnchoredDouglasPeucker(pts, anchors, 0))
	assert.Nil(t, AnchoredDouglasPeucker(nil, nil, 1))
	assert.Equal(t, []int{0}, AnchoredDouglasPeucker(pts[:1], anchors, 1))

	// Spans between anchors are still reduced on their own.
	pts[6].Y = 5
	assert.Equal(t, []int{0, 3, 4, 6, 8}, AnchoredDouglasPeucker(pts, anchors, 3))
}

func TestSimplifySegment_KeepsCaptures(t *testing.T) {
	// A straight pass where every point photographs plus a transit tail.
	wps := make([]l4route.Waypoint, 0, 15)
	for i := 0; i < 10; i++ {
		wps = append(wps, l4route.Waypoint{
			Local:   l1geom.LocalCoord{X: float64(i) * 10, Z: 50},
			Kind:    l4route.KindCoverage,
			Actions: []l4route.Action{{Type: l4route.ActionCapturePhoto}},
		})
	}
	for i := 10; i < 15; i++ {
		wps = append(wps, l4route.Waypoint{Local: l1geom.LocalCoord{X: float64(i) * 10, Z: 50}, Kind: l4route.KindTransit})
	}
	l4route.Reindex(wps)
	seg := &l4route.PathSegment{ID: "p", Type: l4route.SegmentSurvey, Waypoints: wps, Speed: 6}

	var diag monitoring.Diagnostics
	out, err := SimplifySegment(seg, 5, &diag)
	require.NoError(t, err)

	assert.Equal(t, 10, captureCount(out.Waypoints))
	assert.Len(t, out.Waypoints, 11, "only the collinear transit interior is removed")
	assert.Equal(t, seg.Waypoints[14].Local, out.Waypoints[10].Local)
	assert.True(t, diag.Has(monitoring.CodeSimplified))
	assert.False(t, diag.Has(monitoring.CodeCapturesDropped))

	// A hold is an action too.
	seg.Waypoints[12].Actions = []l4route.Action{{Type: l4route.ActionHold, Param: 5}}
	out, err = SimplifySegment(seg, 5, nil)
	require.NoError(t, err)
	assert.Len(t, out.Waypoints, 12)
	assert.Equal(t, seg.Waypoints[12].Local, out.Waypoints[10].Local)
}

func TestSimplifySegment(t *testing.T) {
	seg := transit(20)
	seg.GroundProjection = l4route.GroundProjection(seg.Waypoints, 0)

	var diag monitoring.Diagnostics
	out, err := SimplifySegment(seg, 10, &diag)
	require.NoError(t, err)

	assert.Len(t, out.Waypoints, 2)
	assert.Len(t, out.GroundProjection, 2)
	assert.Equal(t, seg.Waypoints[0].Local, out.Waypoints[0].Local)
	assert.Equal(t, seg.Waypoints[19].Local, out.Waypoints[1].Local)
	assert.Equal(t, 1, out.Waypoints[1].PathOrder)
	assert.True(t, out.Waypoints[1].HasCapture())
	assert.NotEqual(t, seg.ID, out.ID)
	assert.Equal(t, "parent", out.Metadata.ParentID)
	assert.Equal(t, "raster", out.Metadata.Strategy)
	assert.Equal(t, 20, out.Metadata.SourceCount)
	assert.True(t, out.Metadata.Simplified)
	assert.True(t, diag.Has(monitoring.CodeSimplified))
	assert.False(t, diag.Has(monitoring.CodeCapturesDropped))

	// The source is untouched.
	assert.Len(t, seg.Waypoints, 20)
	assert.Equal(t, 19, seg.Waypoints[19].PathOrder)

	same, err := SimplifySegment(seg, 0, nil)
	require.NoError(t, err)
	require.Len(t, same.Waypoints, 20)
	for i := range same.Waypoints {
		assert.Equal(t, seg.Waypoints[i].Local, same.Waypoints[i].Local)
	}

	_, err = SimplifySegment(nil, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestChunk(t *testing.T) {
	seg := segment(10)
	chunks, err := Chunk(seg, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	var joined []l1geom.LocalCoord
	for i, c := range chunks {
		assert.Equal(t, l4route.SegmentChunk, c.Type)
		assert.True(t, c.Metadata.IsChunk)
		assert.Equal(t, i, c.Metadata.ChunkIndex)
		assert.Equal(t, 3, c.Metadata.ChunkCount)
		assert.Equal(t, "parent", c.Metadata.ParentID)
		for j, w := range c.Waypoints {
			assert.Equal(t, j, w.PathOrder)
			joined = append(joined, w.Local)
		}
	}
	assert.Len(t, chunks[2].Waypoints, 2)
	if diff := cmp.Diff(seg.Positions(), joined); diff != "" {
		t.Errorf("chunks must concatenate to the source (-want +got):\n%s", diff)
	}

	_, err = Chunk(seg, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	empty, err := Chunk(&l4route.PathSegment{ID: "e"}, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		n, every int
		want     []int
	}{
		{10, 3, []int{0, 3, 6, 9}},
		{11, 3, []int{0, 3, 6, 9, 10}},
		{5, 1, []int{0, 1, 2, 3, 4}},
		{5, 10, []int{0, 4}},
		{1, 4, []int{0}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/every=%d", tt.n, tt.every), func(t *testing.T) {
			seg := segment(tt.n)
			p, err := Preview(seg, tt.every)
			require.NoError(t, err)
			require.Len(t, p.Waypoints, len(tt.want))
			for i, src := range tt.want {
				assert.Equal(t, seg.Waypoints[src].Local, p.Waypoints[i].Local)
				assert.Equal(t, i, p.Waypoints[i].PathOrder)
			}
			assert.True(t, p.Metadata.IsPreview)
			assert.Equal(t, tt.n, p.Metadata.SourceCount)
		})
	}

	_, err := Preview(segment(3), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
