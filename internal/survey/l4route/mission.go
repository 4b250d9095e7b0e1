package l4route

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
)

// ErrInvalidMission is returned when the mission context cannot produce a
// segment (missing takeoff, empty coverage, bad scalars).
var ErrInvalidMission = errors.New("invalid mission")

// EndAction selects what the vehicle does after the last coverage point.
type EndAction string

const (
	EndRTL  EndAction = "RTL"
	EndLand EndAction = "LAND"
	EndHold EndAction = "HOLD"
)

// ParseEndAction accepts RTL, LAND or HOLD; empty selects RTL.
func ParseEndAction(s string) (EndAction, error) {
	switch EndAction(s) {
	case EndRTL, EndLand, EndHold:
		return EndAction(s), nil
	case "":
		return EndRTL, nil
	}
	return "", fmt.Errorf("%w: unknown end action %q (want RTL, LAND or HOLD)", ErrInvalidMission, s)
}

// MissionContext carries the safety envelope of a mission.
type MissionContext struct {
	Takeoff *l1geom.LocalCoord `json:"takeoff"`
	// SafetyClimb is the clearance kept above takeoff and obstacle tops.
	SafetyClimb float64 `json:"safety_climb"`
	// SafetyBuffer is added on top of the highest altitude candidate.
	SafetyBuffer float64 `json:"safety_buffer"`
	// DetourLift raises an obstacle detour above the safe altitude.
	DetourLift  float64           `json:"detour_lift"`
	EndAction   EndAction         `json:"end_action"`
	CruiseSpeed float64           `json:"cruise_speed"`
	AltitudeRef AltitudeReference `json:"altitude_ref"`
	HoldSeconds float64           `json:"hold_seconds,omitempty"`
	// DedupEpsilon is the per-axis distance below which consecutive
	// waypoints are merged.
	DedupEpsilon     float64 `json:"dedup_epsilon"`
	GroundProjection bool    `json:"ground_projection,omitempty"`
	// CoverageSpeed, when positive, is attached to coverage waypoints.
	CoverageSpeed float64 `json:"coverage_speed,omitempty"`
}

// Validate checks the context before stitching.
func (m MissionContext) Validate() error {
	if m.Takeoff == nil {
		return fmt.Errorf("%w: takeoff point is required", ErrInvalidMission)
	}
	if m.SafetyClimb < 0 || m.SafetyBuffer < 0 {
		return fmt.Errorf("%w: safety climb and buffer must not be negative (climb=%g buffer=%g)",
			ErrInvalidMission, m.SafetyClimb, m.SafetyBuffer)
	}
	if m.CruiseSpeed <= 0 || math.IsNaN(m.CruiseSpeed) {
		return fmt.Errorf("%w: cruise speed must be positive, got %g", ErrInvalidMission, m.CruiseSpeed)
	}
	if _, err := ParseEndAction(string(m.EndAction)); err != nil {
		return err
	}
	switch m.AltitudeRef {
	case AltitudeRelative, AltitudeAbsolute, "":
	default:
		return fmt.Errorf("%w: unknown altitude reference %q", ErrInvalidMission, m.AltitudeRef)
	}
	return nil
}

// ReferenceElevation returns the Z that Waypoint.Altitude is measured from.
func (m MissionContext) ReferenceElevation() float64 {
	if m.AltitudeRef == AltitudeAbsolute || m.Takeoff == nil {
		return 0
	}
	return m.Takeoff.Z
}

// ObstacleFootprint is a simplified collision object: a vertical cylinder
// whose radius is half the larger of width and length. It is only used for
// straight-line intersection tests.
type ObstacleFootprint struct {
	ID         string  `json:"id,omitempty"`
	Class      string  `json:"class,omitempty"`
	Center     r2.Vec  `json:"center"`
	Width      float64 `json:"width"`
	Length     float64 `json:"length"`
	BaseZ      float64 `json:"base_z"`
	Height     float64 `json:"height"`
	IsObstacle bool    `json:"is_obstacle"`
}

// Radius is the radius-equivalent of the footprint.
func (o ObstacleFootprint) Radius() float64 {
	return math.Max(o.Width, o.Length) / 2
}

// Top is the obstacle's highest point in the local frame.
func (o ObstacleFootprint) Top() float64 {
	return o.BaseZ + o.Height
}

// FilterObstacles keeps only footprints marked as obstacles.
func FilterObstacles(all []ObstacleFootprint) []ObstacleFootprint {
	var out []ObstacleFootprint
	for _, o := range all {
		if o.IsObstacle {
			out = append(out, o)
		}
	}
	return out
}

// HighestTop returns the highest obstacle top, or -Inf for none.
func HighestTop(obstacles []ObstacleFootprint) float64 {
	top := math.Inf(-1)
	for _, o := range obstacles {
		top = math.Max(top, o.Top())
	}
	return top
}

// SafeAltitude is
//
//	max(takeoffZ + climb, highestTop + climb, coverageAlt) + buffer
//
// where highestTop is -Inf when there are no obstacles.
func SafeAltitude(takeoffZ, climb, highestTop, coverageAlt, buffer float64) float64 {
	return math.Max(math.Max(takeoffZ+climb, highestTop+climb), coverageAlt) + buffer
}
