package l4route

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
)

// MinDetourLift keeps a detour strictly above the safe altitude even when
// the configured lift is zero.
const MinDetourLift = 1.0

// Detour is a single elevated midpoint inserted on a transit leg.
type Detour struct {
	Position l1geom.LocalCoord
	// Hits lists the obstacles the straight leg passes through.
	Hits []ObstacleFootprint
}

// DetourAltitude returns max(safeAlt, highestTop + climb) + lift, with the
// lift floored at MinDetourLift.
func DetourAltitude(safeAlt, highestTop, climb, lift float64) float64 {
	return math.Max(safeAlt, highestTop+climb) + math.Max(lift, MinDetourLift)
}

// PlanDetour tests the straight horizontal leg a→b against every obstacle.
// If any footprint's radius-equivalent circle is crossed, one detour point
// is returned at the leg's horizontal midpoint, raised to DetourAltitude of
// the intersecting obstacles. The detour legs are not re-checked.
func PlanDetour(a, b l1geom.LocalCoord, obstacles []ObstacleFootprint, safeAlt, climb, lift float64) (Detour, bool) {
	var hits []ObstacleFootprint
	for _, o := range obstacles {
		if hit, _ := l1geom.SegmentHitsCircle(a.XY(), b.XY(), o.Center, o.Radius()); hit {
			hits = append(hits, o)
		}
	}
	if len(hits) == 0 {
		return Detour{}, false
	}
	mid := r2.Scale(0.5, r2.Add(a.XY(), b.XY()))
	z := DetourAltitude(safeAlt, HighestTop(hits), climb, lift)
	return Detour{Position: l1geom.At(mid, z), Hits: hits}, true
}

// avoidLeg appends a detour waypoint for leg a→b when needed.
func avoidLeg(wps []Waypoint, a, b l1geom.LocalCoord, in *stitchState) []Waypoint {
	d, ok := PlanDetour(a, b, in.obstacles, in.safeAlt, in.mission.SafetyClimb, in.mission.DetourLift)
	if !ok {
		return wps
	}
	in.diag.Warnf(component, monitoring.CodeObstacleDetour,
		"transit leg (%.1f,%.1f)->(%.1f,%.1f) crosses %d obstacle(s); detour at z=%.1f",
		a.X, a.Y, b.X, b.Y, len(d.Hits), d.Position.Z)
	in.detours++
	return append(wps, in.waypoint(d.Position, KindDetour))
}
