package survey

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/survey.planner/internal/config"
	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l2optics"
	"github.com/banshee-data/survey.planner/internal/survey/l3coverage"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
	"github.com/banshee-data/survey.planner/internal/survey/l5simplify"
	"github.com/banshee-data/survey.planner/internal/survey/l6stats"
)

const component = "survey"

var (
	// ErrInvalidRequest is returned for requests the planner cannot start
	// on (too few target vertices, bad overrides).
	ErrInvalidRequest = errors.New("invalid survey request")
	// ErrNoSegment is returned when planning produced no flyable segment.
	ErrNoSegment = errors.New("no segment produced")
)

// Result is a complete plan. Diagnostics lists every fallback taken.
type Result struct {
	Segment     *l4route.PathSegment   `json:"segment"`
	Stats       l6stats.MissionStats   `json:"stats"`
	OBB         *l1geom.OBBResult      `json:"obb,omitempty"`
	Footprint   *l2optics.Footprint    `json:"footprint,omitempty"`
	Coverage    *l3coverage.Coverage   `json:"coverage,omitempty"`
	Diagnostics monitoring.Diagnostics `json:"diagnostics"`
}

// Planner runs planning calls against one configuration.
type Planner struct {
	cfg *config.PlannerConfig
}

// NewPlanner returns a Planner. A nil config uses the built-in defaults.
func NewPlanner(cfg *config.PlannerConfig) *Planner {
	if cfg == nil {
		cfg = config.EmptyPlannerConfig()
	}
	return &Planner{cfg: cfg}
}

// Config returns the planner's configuration.
func (p *Planner) Config() *config.PlannerConfig { return p.cfg }

// VehicleProfile builds the statistics profile from the configuration.
func (p *Planner) VehicleProfile() l6stats.VehicleProfile {
	return l6stats.VehicleProfile{
		PhotoDwellSeconds:      p.cfg.GetPhotoDwellSeconds(),
		BatteryPercentPerMin:   p.cfg.GetBatteryPercentPerMin(),
		BatteryPercentPerPhoto: p.cfg.GetBatteryPercentPerPhoto(),
	}
}

func (p *Planner) mission(takeoff *l1geom.LocalCoord, endAction string) (l4route.MissionContext, error) {
	if endAction == "" {
		endAction = p.cfg.GetEndAction()
	}
	end, err := l4route.ParseEndAction(endAction)
	if err != nil {
		return l4route.MissionContext{}, err
	}
	return l4route.MissionContext{
		Takeoff:          takeoff,
		SafetyClimb:      p.cfg.GetSafetyClimb(),
		SafetyBuffer:     p.cfg.GetSafetyBuffer(),
		DetourLift:       p.cfg.GetDetourLift(),
		EndAction:        end,
		CruiseSpeed:      p.cfg.GetCruiseSpeed(),
		CoverageSpeed:    p.cfg.GetCoverageSpeed(),
		AltitudeRef:      l4route.AltitudeReference(p.cfg.GetAltitudeReference()),
		HoldSeconds:      p.cfg.GetHoldSeconds(),
		DedupEpsilon:     p.cfg.GetDedupEpsilon(),
		GroundProjection: p.cfg.GetGroundProjection(),
	}, nil
}

// Plan runs the full area-survey pipeline: project the target to world XY,
// fit the OBB, size the footprint, generate coverage, stitch the mission,
// optionally simplify, and estimate statistics.
func (p *Planner) Plan(req Request) (*Result, error) {
	res := &Result{}
	diag := &res.Diagnostics

	if len(req.Target) < 3 {
		return nil, fmt.Errorf("%w: target needs at least 3 vertices, got %d", ErrInvalidRequest, len(req.Target))
	}
	if err := req.Camera.Validate(); err != nil {
		return nil, err
	}
	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = p.cfg.GetStrategy()
	}
	strategy, err := l3coverage.ParseStrategy(strategyName)
	if err != nil {
		return nil, err
	}
	mission, err := p.mission(req.Takeoff, req.EndAction)
	if err != nil {
		return nil, err
	}
	if err := mission.Validate(); err != nil {
		return nil, err
	}

	if n := req.ProjectionNormal; n != nil && !isVertical(*n) {
		diag.Warnf(component, monitoring.CodeProjectionIgnored,
			"projection normal (%.2f,%.2f,%.2f) ignored; coverage is planned in world XY", n.X, n.Y, n.Z)
	}

	poly := l1geom.ProjectToWorldXY(req.Target)
	obb := l1geom.ComputeOBB(poly, diag)
	res.OBB = &obb

	alt := p.altitude(req, diag)
	fp, err := l2optics.ComputeFootprint(req.Camera, alt, diag)
	if err != nil {
		return nil, err
	}
	res.Footprint = &fp

	overlap := p.cfg.GetOverlap()
	if req.Overlap != nil {
		overlap = *req.Overlap
	}
	cov, err := l3coverage.Generate(l3coverage.Request{
		Strategy:   strategy,
		Polygon:    poly,
		OBB:        obb,
		Footprint:  fp,
		Overlap:    overlap,
		Turnaround: p.cfg.GetTurnaroundBuffer(),
		Altitude:   l1geom.MaxZ(req.Target) + fp.AltitudeAGL,
	}, diag)
	if err != nil {
		if errors.Is(err, l3coverage.ErrEmptyCoverage) {
			return nil, fmt.Errorf("%w: %w", ErrNoSegment, err)
		}
		return nil, err
	}
	res.Coverage = &cov

	seg, err := l4route.Stitch(l4route.StitchInput{
		Coverage:         cov.Sequence(),
		CoverageAltitude: cov.Altitude,
		Mission:          mission,
		Obstacles:        req.Obstacles,
		Camera:           cameraPose(req.Camera, fp, diag),
		Type:             l4route.SegmentSurvey,
		Metadata:         &l4route.SegmentMetadata{Strategy: string(strategy)},
	}, diag)
	if err != nil {
		return nil, err
	}
	return p.finish(res, seg, req.SimplifyTolerance)
}

// PlanManual stitches a lawnmower pattern into a full mission. The camera
// is optional; without one, waypoints carry an empty camera pose.
func (p *Planner) PlanManual(req ManualRequest) (*Result, error) {
	res := &Result{}
	diag := &res.Diagnostics

	mission, err := p.mission(req.Takeoff, req.EndAction)
	if err != nil {
		return nil, err
	}
	if err := mission.Validate(); err != nil {
		return nil, err
	}
	pts, err := l3coverage.GeneratePattern(req.Pattern)
	if err != nil {
		return nil, err
	}

	var pose l4route.CameraPose
	if req.Camera != nil {
		fp, err := l2optics.ComputeFootprint(*req.Camera, req.Pattern.AltitudeAGL, diag)
		if err != nil {
			return nil, err
		}
		res.Footprint = &fp
		pose = cameraPose(*req.Camera, fp, diag)
	}

	seg, err := l4route.Stitch(l4route.StitchInput{
		Coverage:         pts,
		CoverageAltitude: req.Pattern.Start.Z + req.Pattern.AltitudeAGL,
		Mission:          mission,
		Obstacles:        req.Obstacles,
		Camera:           pose,
		Type:             l4route.SegmentManualRaster,
	}, diag)
	if err != nil {
		return nil, err
	}
	return p.finish(res, seg, req.SimplifyTolerance)
}

func (p *Planner) finish(res *Result, seg *l4route.PathSegment, override *float64) (*Result, error) {
	diag := &res.Diagnostics
	tol := p.cfg.GetSimplifyTolerance()
	if override != nil {
		tol = *override
	}
	if tol > 0 {
		simplified, err := l5simplify.SimplifySegment(seg, tol, diag)
		if err != nil {
			return nil, err
		}
		seg = simplified
	}
	if len(seg.Waypoints) == 0 {
		return nil, ErrNoSegment
	}

	stats, err := l6stats.EstimateSegment(seg, p.VehicleProfile(), diag)
	if err != nil {
		return nil, err
	}
	res.Segment = seg
	res.Stats = stats
	monitoring.Logf("plan %s: %d waypoints, %d photos, %.0f m, %.0f s",
		seg.ID, stats.Waypoints, stats.Photos, stats.DistanceM, stats.TotalSeconds)
	return res, nil
}

// altitude picks the AGL altitude: explicit request, then GSD-derived,
// then config, clamped to the configured minimum.
func (p *Planner) altitude(req Request, diag *monitoring.Diagnostics) float64 {
	alt := p.cfg.GetAltitudeAGL()
	switch {
	case req.AltitudeAGL != nil:
		alt = *req.AltitudeAGL
	case req.GSDCm != nil:
		if a := l2optics.AltitudeForGSD(req.Camera, *req.GSDCm, diag); a > 0 {
			alt = a
		}
	}
	if floor := p.cfg.GetMinAltitudeAGL(); alt < floor || math.IsNaN(alt) {
		diag.Warnf(component, monitoring.CodeAltitudeClamped,
			"altitude %g m below configured minimum, clamped to %g m", alt, floor)
		alt = floor
	}
	return alt
}

// cameraPose is the per-waypoint pose template: horizontal FOV, sensor
// aspect and depth of field when focused at the flight altitude.
func cameraPose(cam l2optics.CameraSpecs, fp l2optics.Footprint, diag *monitoring.Diagnostics) l4route.CameraPose {
	dof := l2optics.ComputeDepthOfField(cam, fp.AltitudeAGL, diag)
	pose := l4route.CameraPose{
		FOVDeg: fp.HFOVDeg,
		Aspect: cam.AspectRatio(),
		Near:   dof.NearM,
	}
	if !dof.Infinite() {
		pose.Far = dof.FarM
	}
	return pose
}

func isVertical(n r3.Vec) bool {
	norm := r3.Norm(n)
	if norm == 0 {
		return true
	}
	return math.Abs(n.Z)/norm > 1-1e-9
}
