package l4route

import (
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
)

// AltitudeReference selects what Waypoint.Altitude is measured from.
type AltitudeReference string

const (
	// AltitudeRelative measures from the takeoff elevation.
	AltitudeRelative AltitudeReference = "RELATIVE"
	// AltitudeAbsolute measures from the local frame origin (Z = 0).
	AltitudeAbsolute AltitudeReference = "ABSOLUTE"
)

// WaypointKind tags the role a waypoint plays in the mission.
type WaypointKind string

const (
	KindTakeoff  WaypointKind = "takeoff"
	KindClimb    WaypointKind = "climb"
	KindTransit  WaypointKind = "transit"
	KindDetour   WaypointKind = "detour"
	KindCoverage WaypointKind = "coverage"
	KindReturn   WaypointKind = "return"
	KindLand     WaypointKind = "land"
	KindHold     WaypointKind = "hold"
)

// ActionType names a payload or vehicle action executed at a waypoint.
type ActionType string

const (
	ActionCapturePhoto ActionType = "capture_photo"
	ActionHold         ActionType = "hold"
	ActionLand         ActionType = "land"
)

// Action is one entry in a waypoint's action list.
type Action struct {
	Type  ActionType `json:"type"`
	Param float64    `json:"param,omitempty"`
}

// CameraPose is the camera state at a waypoint. Near and Far are the
// depth-of-field limits in metres; Far == 0 means unbounded.
type CameraPose struct {
	FOVDeg     float64 `json:"fov_deg"`
	Aspect     float64 `json:"aspect"`
	Near       float64 `json:"near"`
	Far        float64 `json:"far"`
	HeadingDeg float64 `json:"heading_deg"`
	PitchDeg   float64 `json:"pitch_deg"`
	RollDeg    float64 `json:"roll_deg"`
}

// NadirPitchDeg points the camera straight down.
const NadirPitchDeg = -90.0

// Waypoint is one vertex of a planned path.
//
// Altitude is always Local.Z minus the reference elevation selected by
// AltitudeRef; PathOrder equals the waypoint's index in its segment.
type Waypoint struct {
	Local       l1geom.LocalCoord `json:"local"`
	Altitude    float64           `json:"altitude"`
	AltitudeRef AltitudeReference `json:"altitude_ref"`
	Camera      CameraPose        `json:"camera"`
	Actions     []Action          `json:"actions,omitempty"`
	Speed       *float64          `json:"speed,omitempty"`
	HoldSeconds *float64          `json:"hold_seconds,omitempty"`
	PathOrder   int               `json:"path_order"`
	Kind        WaypointKind      `json:"kind"`
}

// HasCapture reports whether the waypoint triggers a photo.
func (w Waypoint) HasCapture() bool {
	for _, a := range w.Actions {
		if a.Type == ActionCapturePhoto {
			return true
		}
	}
	return false
}

// SegmentType tags how a segment was produced.
type SegmentType string

const (
	SegmentSurvey       SegmentType = "survey"
	SegmentManualRaster SegmentType = "manual_raster"
	SegmentChunk        SegmentType = "chunk"
	SegmentPreview      SegmentType = "preview"
)

// SegmentMetadata carries bookkeeping for derived segments.
type SegmentMetadata struct {
	Strategy    string  `json:"strategy,omitempty"`
	ParentID    string  `json:"parent_id,omitempty"`
	ChunkIndex  int     `json:"chunk_index,omitempty"`
	ChunkCount  int     `json:"chunk_count,omitempty"`
	IsChunk     bool    `json:"is_chunk,omitempty"`
	IsPreview   bool    `json:"is_preview,omitempty"`
	SourceCount int     `json:"source_count,omitempty"`
	Simplified  bool    `json:"simplified,omitempty"`
	Tolerance   float64 `json:"tolerance,omitempty"`
}

// PathSegment is one continuous planned route. Waypoint order is
// authoritative: consumers must not reorder, and every waypoint carries
// its index in PathOrder.
type PathSegment struct {
	ID               string           `json:"id"`
	Type             SegmentType      `json:"type"`
	Waypoints        []Waypoint       `json:"waypoints"`
	Speed            float64          `json:"speed"`
	GroundProjection []Waypoint       `json:"ground_projection,omitempty"`
	Metadata         *SegmentMetadata `json:"metadata,omitempty"`
}

// Positions returns the local coordinates of every waypoint in order.
func (s *PathSegment) Positions() []l1geom.LocalCoord {
	out := make([]l1geom.LocalCoord, len(s.Waypoints))
	for i, w := range s.Waypoints {
		out[i] = w.Local
	}
	return out
}

// Reindex rewrites PathOrder so it matches slice order.
func Reindex(wps []Waypoint) {
	for i := range wps {
		wps[i].PathOrder = i
	}
}

// CloneWaypoints deep-copies wps, including pointer and slice fields.
func CloneWaypoints(wps []Waypoint) []Waypoint {
	if wps == nil {
		return nil
	}
	out := make([]Waypoint, len(wps))
	for i, w := range wps {
		if w.Actions != nil {
			w.Actions = append([]Action(nil), w.Actions...)
		}
		if w.Speed != nil {
			v := *w.Speed
			w.Speed = &v
		}
		if w.HoldSeconds != nil {
			v := *w.HoldSeconds
			w.HoldSeconds = &v
		}
		out[i] = w
	}
	return out
}
