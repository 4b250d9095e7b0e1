package l6stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
)

const component = "l6stats"

var (
	// ErrInvalidSpeed is returned when the cruise speed is not positive.
	ErrInvalidSpeed = errors.New("invalid cruise speed")
	ErrNilSegment   = errors.New("nil segment")
)

const (
	// BatterySafetyMargin scales the raw battery estimate.
	BatterySafetyMargin = 1.15
	// MaxBatteryPercent caps the battery estimate.
	MaxBatteryPercent = 100.0

	DefaultPhotoDwellSeconds      = 2.0
	DefaultBatteryPercentPerMin   = 3.0
	DefaultBatteryPercentPerPhoto = 0.05
)

// VehicleProfile parameterises the time and battery model.
type VehicleProfile struct {
	PhotoDwellSeconds      float64 `json:"photo_dwell_seconds"`
	BatteryPercentPerMin   float64 `json:"battery_percent_per_min"`
	BatteryPercentPerPhoto float64 `json:"battery_percent_per_photo"`
}

// DefaultVehicleProfile returns the built-in multirotor profile.
func DefaultVehicleProfile() VehicleProfile {
	return VehicleProfile{
		PhotoDwellSeconds:      DefaultPhotoDwellSeconds,
		BatteryPercentPerMin:   DefaultBatteryPercentPerMin,
		BatteryPercentPerPhoto: DefaultBatteryPercentPerPhoto,
	}
}

// MissionStats summarises a finished path.
type MissionStats struct {
	Waypoints int `json:"waypoints"`
	Photos    int `json:"photos"`
	// DistanceM is the 3-D path length in metres.
	DistanceM         float64 `json:"distance_m"`
	CoverageDistanceM float64 `json:"coverage_distance_m"`
	TransitDistanceM  float64 `json:"transit_distance_m"`
	FlightSeconds     float64 `json:"flight_seconds"`
	DwellSeconds      float64 `json:"dwell_seconds"`
	TotalSeconds      float64 `json:"total_seconds"`
	BatteryPercent    float64 `json:"battery_percent"`
	BatteryCapped     bool    `json:"battery_capped,omitempty"`
	MaxAltitude       float64 `json:"max_altitude"`
	MinAltitude       float64 `json:"min_altitude"`
}

// TotalMinutes is TotalSeconds in minutes.
func (s MissionStats) TotalMinutes() float64 { return s.TotalSeconds / 60 }

// LegDistances returns the 3-D length of every consecutive leg.
func LegDistances(wps []l4route.Waypoint) []float64 {
	if len(wps) < 2 {
		return nil
	}
	out := make([]float64, len(wps)-1)
	for i := 1; i < len(wps); i++ {
		out[i-1] = wps[i-1].Local.Distance(wps[i].Local)
	}
	return out
}

// Estimate computes mission statistics:
//
//	time    = distance/speed + photos·dwell
//	battery = min(100, (minutes·perMin + photos·perPhoto)·1.15)
//
// Legs between two coverage waypoints count as coverage distance, every
// other leg as transit.
func Estimate(wps []l4route.Waypoint, speed float64, profile VehicleProfile, diag *monitoring.Diagnostics) (MissionStats, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return MissionStats{}, fmt.Errorf("%w: %g m/s", ErrInvalidSpeed, speed)
	}

	st := MissionStats{Waypoints: len(wps)}
	for _, w := range wps {
		if w.HasCapture() {
			st.Photos++
		}
	}

	legs := LegDistances(wps)
	var coverage []float64
	for i, d := range legs {
		if wps[i].Kind == l4route.KindCoverage && wps[i+1].Kind == l4route.KindCoverage {
			coverage = append(coverage, d)
		}
	}
	st.DistanceM = floats.Sum(legs)
	st.CoverageDistanceM = floats.Sum(coverage)
	st.TransitDistanceM = st.DistanceM - st.CoverageDistanceM

	if len(wps) > 0 {
		alts := make([]float64, len(wps))
		for i, w := range wps {
			alts[i] = w.Altitude
		}
		st.MaxAltitude = floats.Max(alts)
		st.MinAltitude = floats.Min(alts)
	}

	st.FlightSeconds = st.DistanceM / speed
	st.DwellSeconds = float64(st.Photos) * profile.PhotoDwellSeconds
	st.TotalSeconds = st.FlightSeconds + st.DwellSeconds

	raw := (st.TotalMinutes()*profile.BatteryPercentPerMin +
		float64(st.Photos)*profile.BatteryPercentPerPhoto) * BatterySafetyMargin
	st.BatteryPercent = raw
	if raw > MaxBatteryPercent {
		st.BatteryPercent = MaxBatteryPercent
		st.BatteryCapped = true
		diag.Warnf(component, monitoring.CodeBatteryCapped,
			"estimated battery use %.1f%% exceeds one pack; capped at %.0f%%", raw, MaxBatteryPercent)
	}
	return st, nil
}

// EstimateSegment is Estimate over a segment at its own cruise speed.
func EstimateSegment(seg *l4route.PathSegment, profile VehicleProfile, diag *monitoring.Diagnostics) (MissionStats, error) {
	if seg == nil {
		return MissionStats{}, ErrNilSegment
	}
	return Estimate(seg.Waypoints, seg.Speed, profile, diag)
}
