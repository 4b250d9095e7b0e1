package l4route

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l3coverage"
)

const component = "l4route"

// DefaultDedupEpsilon is the per-axis merge distance in metres.
const DefaultDedupEpsilon = 0.1

// StitchInput is everything Stitch needs to build one segment.
type StitchInput struct {
	Coverage []l3coverage.Point
	// CoverageAltitude is the Z of the coverage points; it takes part in
	// the safe altitude.
	CoverageAltitude float64
	Mission          MissionContext
	Obstacles        []ObstacleFootprint
	// Camera is the pose template; heading and pitch are filled per
	// waypoint.
	Camera   CameraPose
	Type     SegmentType
	Metadata *SegmentMetadata
}

type stitchState struct {
	mission   MissionContext
	obstacles []ObstacleFootprint
	safeAlt   float64
	camera    CameraPose
	diag      *monitoring.Diagnostics
	detours   int
}

func (s *stitchState) waypoint(pos l1geom.LocalCoord, kind WaypointKind) Waypoint {
	return Waypoint{Local: pos, Kind: kind, Camera: s.camera}
}

// Stitch assembles the full mission path:
//
//	takeoff → climb → transit above first coverage point → coverage
//	→ transit above last coverage point → end action
//
// Transit legs get at most one obstacle detour each. Consecutive
// near-duplicates are merged, headings point at the next waypoint,
// altitudes are re-based on the mission's reference and PathOrder is
// rewritten to match slice order.
func Stitch(in StitchInput, diag *monitoring.Diagnostics) (*PathSegment, error) {
	m := in.Mission
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(in.Coverage) == 0 {
		return nil, fmt.Errorf("%w: coverage sequence is empty", ErrInvalidMission)
	}
	if m.AltitudeRef == "" {
		m.AltitudeRef = AltitudeRelative
	}
	if m.EndAction == "" {
		m.EndAction = EndRTL
	}

	obstacles := FilterObstacles(in.Obstacles)
	if dropped := len(in.Obstacles) - len(obstacles); dropped > 0 {
		diag.Infof(component, monitoring.CodeObstaclesFiltered,
			"ignored %d footprint(s) not marked as obstacles", dropped)
	}

	takeoff := *m.Takeoff
	st := &stitchState{
		mission:   m,
		obstacles: obstacles,
		safeAlt:   SafeAltitude(takeoff.Z, m.SafetyClimb, HighestTop(obstacles), in.CoverageAltitude, m.SafetyBuffer),
		camera:    in.Camera,
		diag:      diag,
	}
	monitoring.Logf("stitch: safe altitude %.1f m over %d obstacle(s)", st.safeAlt, len(obstacles))

	first := in.Coverage[0].Position
	last := in.Coverage[len(in.Coverage)-1].Position

	climb := l1geom.At(takeoff.XY(), st.safeAlt)
	aboveFirst := l1geom.At(first.XY(), st.safeAlt)
	aboveLast := l1geom.At(last.XY(), st.safeAlt)

	wps := make([]Waypoint, 0, len(in.Coverage)+8)
	wps = append(wps, st.waypoint(takeoff, KindTakeoff), st.waypoint(climb, KindClimb))
	wps = avoidLeg(wps, climb, aboveFirst, st)
	wps = append(wps, st.waypoint(aboveFirst, KindTransit))

	for _, p := range in.Coverage {
		w := st.waypoint(p.Position, KindCoverage)
		w.Camera.PitchDeg = NadirPitchDeg
		if p.Capture {
			w.Actions = []Action{{Type: ActionCapturePhoto}}
		} else {
			w.Kind = KindReturn
		}
		if m.CoverageSpeed > 0 {
			v := m.CoverageSpeed
			w.Speed = &v
		}
		wps = append(wps, w)
	}

	wps = append(wps, st.waypoint(aboveLast, KindTransit))
	switch m.EndAction {
	case EndRTL:
		home := l1geom.At(takeoff.XY(), st.safeAlt)
		wps = avoidLeg(wps, aboveLast, home, st)
		wps = append(wps, st.waypoint(home, KindReturn))
		land := st.waypoint(takeoff, KindLand)
		land.Actions = []Action{{Type: ActionLand}}
		wps = append(wps, land)
	case EndLand:
		land := st.waypoint(l1geom.At(last.XY(), takeoff.Z), KindLand)
		land.Actions = []Action{{Type: ActionLand}}
		wps = append(wps, land)
	case EndHold:
		hold := &wps[len(wps)-1]
		hold.Kind = KindHold
		hold.Actions = []Action{{Type: ActionHold, Param: m.HoldSeconds}}
		if m.HoldSeconds > 0 {
			v := m.HoldSeconds
			hold.HoldSeconds = &v
		}
	}
	if st.detours > 0 {
		diag.Warnf(component, monitoring.CodeDetourHeuristic,
			"%d detour(s) inserted by single-midpoint heuristic; detour legs are not re-checked", st.detours)
	}

	eps := m.DedupEpsilon
	if eps <= 0 {
		eps = DefaultDedupEpsilon
	}
	before := len(wps)
	wps = MergeDuplicates(wps, eps)
	if merged := before - len(wps); merged > 0 {
		diag.Infof(component, monitoring.CodeWaypointsMerged,
			"merged %d near-duplicate waypoint(s) (eps=%.2f m)", merged, eps)
	}

	Finalize(wps, m.AltitudeRef, m.ReferenceElevation())

	segType := in.Type
	if segType == "" {
		segType = SegmentSurvey
	}
	seg := &PathSegment{
		ID:        uuid.New().String(),
		Type:      segType,
		Waypoints: wps,
		Speed:     m.CruiseSpeed,
		Metadata:  in.Metadata,
	}
	if m.GroundProjection {
		seg.GroundProjection = GroundProjection(wps, takeoff.Z)
	}
	return seg, nil
}

// MergeDuplicates collapses consecutive waypoints that differ by less than
// eps on every axis. Actions of a dropped waypoint are appended to the
// surviving one; if only the later waypoint captures, it survives instead
// so the coverage role is not lost. A hold or land waypoint passes its
// kind on to the survivor.
func MergeDuplicates(wps []Waypoint, eps float64) []Waypoint {
	if len(wps) == 0 {
		return wps
	}
	out := make([]Waypoint, 0, len(wps))
	out = append(out, wps[0])
	for _, w := range wps[1:] {
		keep := &out[len(out)-1]
		if !keep.Local.NearlyEqual(w.Local, eps) {
			out = append(out, w)
			continue
		}
		if w.HasCapture() && !keep.HasCapture() {
			w.Actions = append(append([]Action(nil), keep.Actions...), w.Actions...)
			if terminal(keep.Kind) {
				w.Kind = keep.Kind
			}
			*keep = w
			continue
		}
		if len(w.Actions) > 0 {
			keep.Actions = append(append([]Action(nil), keep.Actions...), w.Actions...)
		}
		if keep.HoldSeconds == nil && w.HoldSeconds != nil {
			keep.HoldSeconds = w.HoldSeconds
		}
		if terminal(w.Kind) {
			keep.Kind = w.Kind
		}
	}
	return out
}

// terminal reports whether k marks the end-of-mission waypoint.
func terminal(k WaypointKind) bool {
	return k == KindHold || k == KindLand
}

// Finalize points every waypoint's heading at the next waypoint that is
// horizontally apart from it (vertical legs look past to the following
// one; the tail keeps the previous heading), sets Altitude = Z -
// refElevation and rewrites PathOrder.
func Finalize(wps []Waypoint, ref AltitudeReference, refElevation float64) {
	for i := range wps {
		heading, ok := headingAhead(wps, i)
		switch {
		case ok:
			wps[i].Camera.HeadingDeg = heading
		case i > 0:
			wps[i].Camera.HeadingDeg = wps[i-1].Camera.HeadingDeg
		}
		wps[i].AltitudeRef = ref
		wps[i].Altitude = wps[i].Local.Z - refElevation
		wps[i].PathOrder = i
	}
}

func headingAhead(wps []Waypoint, i int) (float64, bool) {
	for j := i + 1; j < len(wps); j++ {
		if wps[i].Local.HorizontalDistance(wps[j].Local) > 1e-9 {
			return l1geom.HeadingDeg(wps[i].Local.XY(), wps[j].Local.XY()), true
		}
	}
	return 0, false
}

// GroundProjection drops every waypoint onto groundZ, keeping order and
// camera. Used by visualisers to draw the path's shadow.
func GroundProjection(wps []Waypoint, groundZ float64) []Waypoint {
	out := make([]Waypoint, len(wps))
	for i, w := range wps {
		out[i] = Waypoint{
			Local:       l1geom.LocalCoord{X: w.Local.X, Y: w.Local.Y, Z: groundZ},
			AltitudeRef: w.AltitudeRef,
			Altitude:    w.Altitude - (w.Local.Z - groundZ),
			Camera:      w.Camera,
			PathOrder:   i,
			Kind:        w.Kind,
		}
	}
	return out
}
