package l5simplify

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
)

const component = "l5simplify"

// ErrInvalidArgument is returned for non-positive chunk sizes or preview
// strides, and for nil segments.
var ErrInvalidArgument = errors.New("invalid simplify argument")

// chordEpsilon is the squared chord length below which a chord is treated
// as a single point.
const chordEpsilon = 1e-18

// PerpendicularDistance is the distance from p to the infinite line
// through a and b, or to a when a and b coincide.
func PerpendicularDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	ap := r3.Sub(p, a)
	n2 := r3.Norm2(ab)
	if n2 < chordEpsilon {
		return r3.Norm(ap)
	}
	return r3.Norm(r3.Cross(ab, ap)) / r3.Norm(ab)
}

// DouglasPeucker returns the indices of points kept by Douglas-Peucker
// reduction with tolerance eps. The first and last index are always kept
// and the result is ascending. eps <= 0 keeps every index.
func DouglasPeucker(points []r3.Vec, eps float64) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	if eps <= 0 || n <= 2 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	// Iterative over [lo, hi] index ranges.
	type span struct{ lo, hi int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}
		idx, dmax := -1, 0.0
		for i := s.lo + 1; i < s.hi; i++ {
			if d := PerpendicularDistance(points[i], points[s.lo], points[s.hi]); d > dmax {
				idx, dmax = i, d
			}
		}
		if idx < 0 || dmax <= eps {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
	}

	out := make([]int, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}

// AnchoredDouglasPeucker runs DouglasPeucker independently on every span
// between consecutive anchored indices, so anchored points always survive.
// The first and last index are implicit anchors. anchors may be shorter
// than points; missing entries are unanchored.
func AnchoredDouglasPeucker(points []r3.Vec, anchors []bool, eps float64) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	out := []int{0}
	lo := 0
	for i := 1; i < n; i++ {
		if i != n-1 && (i >= len(anchors) || !anchors[i]) {
			continue
		}
		for _, j := range DouglasPeucker(points[lo:i+1], eps)[1:] {
			out = append(out, lo+j)
		}
		lo = i
	}
	return out
}

// Simplify returns the points kept by DouglasPeucker as a new slice.
func Simplify(points []r3.Vec, eps float64) []r3.Vec {
	idx := DouglasPeucker(points, eps)
	out := make([]r3.Vec, len(idx))
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}

// SimplifySegment returns a copy of seg whose waypoints are the subset
// kept by Douglas-Peucker on their local positions. Waypoints that carry
// actions are anchors and are never removed. Surviving waypoints keep
// their actions, camera and speed; PathOrder is rewritten. The original
// segment is not modified.
func SimplifySegment(seg *l4route.PathSegment, eps float64, diag *monitoring.Diagnostics) (*l4route.PathSegment, error) {
	if seg == nil {
		return nil, fmt.Errorf("%w: nil segment", ErrInvalidArgument)
	}
	pts := make([]r3.Vec, len(seg.Waypoints))
	anchors := make([]bool, len(seg.Waypoints))
	for i, w := range seg.Waypoints {
		pts[i] = w.Local.Vec()
		anchors[i] = len(w.Actions) > 0
	}
	idx := AnchoredDouglasPeucker(pts, anchors, eps)

	src := l4route.CloneWaypoints(seg.Waypoints)
	wps := make([]l4route.Waypoint, len(idx))
	for i, j := range idx {
		wps[i] = src[j]
	}
	l4route.Reindex(wps)

	out := derive(seg, seg.Type, wps)
	if len(seg.GroundProjection) == len(seg.Waypoints) {
		shadow := make([]l4route.Waypoint, len(idx))
		for i, j := range idx {
			shadow[i] = seg.GroundProjection[j]
		}
		l4route.Reindex(shadow)
		out.GroundProjection = shadow
	}
	out.Metadata.Simplified = eps > 0
	out.Metadata.Tolerance = eps
	out.Metadata.SourceCount = len(seg.Waypoints)
	if removed := len(seg.Waypoints) - len(wps); removed > 0 {
		diag.Infof(component, monitoring.CodeSimplified,
			"removed %d of %d waypoint(s) at tolerance %.2f m", removed, len(seg.Waypoints), eps)
	}
	if before, after := captureCount(seg.Waypoints), captureCount(wps); after != before {
		diag.Warnf(component, monitoring.CodeCapturesDropped,
			"capture count changed from %d to %d after simplification", before, after)
	}
	return out, nil
}

// Chunk partitions seg's waypoints into contiguous chunks of at most size
// waypoints. Every chunk carries the parent id, its index and the total
// count; concatenating the chunks reproduces the original order.
func Chunk(seg *l4route.PathSegment, size int) ([]*l4route.PathSegment, error) {
	if seg == nil {
		return nil, fmt.Errorf("%w: nil segment", ErrInvalidArgument)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be at least 1, got %d", ErrInvalidArgument, size)
	}
	n := len(seg.Waypoints)
	count := (n + size - 1) / size
	out := make([]*l4route.PathSegment, 0, count)
	for i := 0; i < count; i++ {
		lo := i * size
		hi := lo + size
		if hi > n {
			hi = n
		}
		wps := l4route.CloneWaypoints(seg.Waypoints[lo:hi])
		l4route.Reindex(wps)

		c := derive(seg, l4route.SegmentChunk, wps)
		c.Metadata.IsChunk = true
		c.Metadata.ChunkIndex = i
		c.Metadata.ChunkCount = count
		c.Metadata.SourceCount = n
		out = append(out, c)
	}
	return out, nil
}

// Preview keeps every Nth waypoint (starting at the first) and always the
// last one.
func Preview(seg *l4route.PathSegment, every int) (*l4route.PathSegment, error) {
	if seg == nil {
		return nil, fmt.Errorf("%w: nil segment", ErrInvalidArgument)
	}
	if every < 1 {
		return nil, fmt.Errorf("%w: preview stride must be at least 1, got %d", ErrInvalidArgument, every)
	}
	n := len(seg.Waypoints)
	var picked []l4route.Waypoint
	for i := 0; i < n; i += every {
		picked = append(picked, seg.Waypoints[i])
	}
	if n > 0 && (n-1)%every != 0 {
		picked = append(picked, seg.Waypoints[n-1])
	}
	wps := l4route.CloneWaypoints(picked)
	l4route.Reindex(wps)

	p := derive(seg, l4route.SegmentPreview, wps)
	p.Metadata.IsPreview = true
	p.Metadata.SourceCount = n
	return p, nil
}

func captureCount(wps []l4route.Waypoint) int {
	n := 0
	for _, w := range wps {
		if w.HasCapture() {
			n++
		}
	}
	return n
}

// derive builds a new segment with a fresh id that points back at seg. The
// ground projection is not carried over.
func derive(seg *l4route.PathSegment, typ l4route.SegmentType, wps []l4route.Waypoint) *l4route.PathSegment {
	md := l4route.SegmentMetadata{}
	if seg.Metadata != nil {
		md.Strategy = seg.Metadata.Strategy
	}
	md.ParentID = seg.ID
	return &l4route.PathSegment{
		ID:        uuid.New().String(),
		Type:      typ,
		Waypoints: wps,
		Speed:     seg.Speed,
		Metadata:  &md,
	}
}
