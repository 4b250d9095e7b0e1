package survey

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l2optics"
	"github.com/banshee-data/survey.planner/internal/survey/l3coverage"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
)

// Request describes an area survey. Optional pointer fields override the
// Planner's configuration for this call only.
type Request struct {
	Name string `json:"name,omitempty"`
	// Target is the survey polygon in the local frame. Its Z values set the
	// ground height the coverage altitude is measured from.
	Target []l1geom.LocalCoord  `json:"target"`
	Camera l2optics.CameraSpecs `json:"camera"`
	// Takeoff is where the vehicle starts and, for RTL, lands.
	Takeoff   *l1geom.LocalCoord          `json:"takeoff"`
	Obstacles []l4route.ObstacleFootprint `json:"obstacles,omitempty"`

	AltitudeAGL *float64 `json:"altitude_agl,omitempty"`
	// GSDCm, when set and AltitudeAGL is not, derives the altitude from the
	// requested ground sampling distance.
	GSDCm     *float64 `json:"gsd_cm,omitempty"`
	Overlap   *float64 `json:"overlap,omitempty"`
	Strategy  string   `json:"strategy,omitempty"`
	EndAction string   `json:"end_action,omitempty"`
	// SimplifyTolerance overrides the configured Douglas-Peucker tolerance.
	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"`

	// ProjectionNormal is accepted for compatibility with clients that send
	// a surface normal. Coverage is always planned in the world-horizontal
	// plane; a non-vertical normal is recorded as a diagnostic.
	ProjectionNormal *r3.Vec `json:"projection_normal,omitempty"`
}

// ManualRequest describes a manual lawnmower mission.
type ManualRequest struct {
	Name      string                      `json:"name,omitempty"`
	Pattern   l3coverage.PatternParams    `json:"pattern"`
	Camera    *l2optics.CameraSpecs       `json:"camera,omitempty"`
	Takeoff   *l1geom.LocalCoord          `json:"takeoff"`
	Obstacles []l4route.ObstacleFootprint `json:"obstacles,omitempty"`
	EndAction string                      `json:"end_action,omitempty"`

	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"`
}
