package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical planner defaults file.
const DefaultConfigPath = "config/planner.defaults.json"

// PlannerConfig holds every tunable of the survey planner. Fields are
// pointers so partial JSON files only override what they name; the Get*
// methods supply the built-in default for anything left nil.
type PlannerConfig struct {
	// Coverage params
	Overlap          *float64 `json:"overlap,omitempty"`
	TurnaroundBuffer *float64 `json:"turnaround_buffer,omitempty"`
	AltitudeAGL      *float64 `json:"altitude_agl,omitempty"`
	MinAltitudeAGL   *float64 `json:"min_altitude_agl,omitempty"`
	Strategy         *string  `json:"strategy,omitempty"` // "raster" or "image_center"

	// Mission safety params
	SafetyClimb       *float64 `json:"safety_climb,omitempty"`
	SafetyBuffer      *float64 `json:"safety_buffer,omitempty"`
	DetourLift        *float64 `json:"detour_lift,omitempty"`
	DedupEpsilon      *float64 `json:"dedup_epsilon,omitempty"`
	EndAction         *string  `json:"end_action,omitempty"`         // RTL, LAND or HOLD
	AltitudeReference *string  `json:"altitude_reference,omitempty"` // RELATIVE or ABSOLUTE
	HoldSeconds       *float64 `json:"hold_seconds,omitempty"`
	GroundProjection  *bool    `json:"ground_projection,omitempty"`

	// Vehicle params
	CruiseSpeed            *float64 `json:"cruise_speed,omitempty"`   // m/s
	CoverageSpeed          *float64 `json:"coverage_speed,omitempty"` // m/s, 0 = cruise
	PhotoDwellSeconds      *float64 `json:"photo_dwell_seconds,omitempty"`
	BatteryPercentPerMin   *float64 `json:"battery_percent_per_min,omitempty"`
	BatteryPercentPerPhoto *float64 `json:"battery_percent_per_photo,omitempty"`

	// Output params
	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"` // 0 disables
	SpeedUnits        *string  `json:"speed_units,omitempty"`
	LogLevel          *string  `json:"log_level,omitempty"`
	LogJSON           *bool    `json:"log_json,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyPlannerConfig returns a PlannerConfig with all fields nil.
func EmptyPlannerConfig() *PlannerConfig {
	return &PlannerConfig{}
}

// DefaultPlannerConfig returns a PlannerConfig with every field set to its
// built-in default. It mirrors config/planner.defaults.json.
func DefaultPlannerConfig() *PlannerConfig {
	c := EmptyPlannerConfig()
	return &PlannerConfig{
		Overlap:                ptrFloat64(c.GetOverlap()),
		TurnaroundBuffer:       ptrFloat64(c.GetTurnaroundBuffer()),
		AltitudeAGL:            ptrFloat64(c.GetAltitudeAGL()),
		MinAltitudeAGL:         ptrFloat64(c.GetMinAltitudeAGL()),
		Strategy:               ptrString(c.GetStrategy()),
		SafetyClimb:            ptrFloat64(c.GetSafetyClimb()),
		SafetyBuffer:           ptrFloat64(c.GetSafetyBuffer()),
		DetourLift:             ptrFloat64(c.GetDetourLift()),
		DedupEpsilon:           ptrFloat64(c.GetDedupEpsilon()),
		EndAction:              ptrString(c.GetEndAction()),
		AltitudeReference:      ptrString(c.GetAltitudeReference()),
		HoldSeconds:            ptrFloat64(c.GetHoldSeconds()),
		GroundProjection:       ptrBool(c.GetGroundProjection()),
		CruiseSpeed:            ptrFloat64(c.GetCruiseSpeed()),
		CoverageSpeed:          ptrFloat64(c.GetCoverageSpeed()),
		PhotoDwellSeconds:      ptrFloat64(c.GetPhotoDwellSeconds()),
		BatteryPercentPerMin:   ptrFloat64(c.GetBatteryPercentPerMin()),
		BatteryPercentPerPhoto: ptrFloat64(c.GetBatteryPercentPerPhoto()),
		SimplifyTolerance:      ptrFloat64(c.GetSimplifyTolerance()),
		SpeedUnits:             ptrString(c.GetSpeedUnits()),
		LogLevel:               ptrString(c.GetLogLevel()),
		LogJSON:                ptrBool(c.GetLogJSON()),
	}
}

// LoadPlannerConfig loads a PlannerConfig from a JSON file.
// The file must have a .json extension and be at most 1MB. Fields omitted
// from the file stay nil and fall back to their defaults.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlannerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *PlannerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/storage/sqlite/
		"../../../../" + DefaultConfigPath, // from internal/survey/l*/
	}
	for _, path := range candidates {
		if cfg, err := LoadPlannerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *PlannerConfig) Validate() error {
	if c.Overlap != nil && (*c.Overlap < 0 || *c.Overlap > 0.95) {
		return fmt.Errorf("overlap must be between 0 and 0.95, got %f", *c.Overlap)
	}
	nonNegative := map[string]*float64{
		"turnaround_buffer":         c.TurnaroundBuffer,
		"safety_climb":              c.SafetyClimb,
		"safety_buffer":             c.SafetyBuffer,
		"detour_lift":               c.DetourLift,
		"hold_seconds":              c.HoldSeconds,
		"coverage_speed":            c.CoverageSpeed,
		"photo_dwell_seconds":       c.PhotoDwellSeconds,
		"battery_percent_per_min":   c.BatteryPercentPerMin,
		"battery_percent_per_photo": c.BatteryPercentPerPhoto,
		"simplify_tolerance":        c.SimplifyTolerance,
	}
	for name, v := range nonNegative {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	positive := map[string]*float64{
		"altitude_agl":     c.AltitudeAGL,
		"min_altitude_agl": c.MinAltitudeAGL,
		"dedup_epsilon":    c.DedupEpsilon,
		"cruise_speed":     c.CruiseSpeed,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	if c.Strategy != nil && !oneOf(*c.Strategy, "raster", "image_center") {
		return fmt.Errorf("strategy must be raster or image_center, got %q", *c.Strategy)
	}
	if c.EndAction != nil && !oneOf(*c.EndAction, "RTL", "LAND", "HOLD") {
		return fmt.Errorf("end_action must be RTL, LAND or HOLD, got %q", *c.EndAction)
	}
	if c.AltitudeReference != nil && !oneOf(*c.AltitudeReference, "RELATIVE", "ABSOLUTE") {
		return fmt.Errorf("altitude_reference must be RELATIVE or ABSOLUTE, got %q", *c.AltitudeReference)
	}
	if c.SpeedUnits != nil && !oneOf(*c.SpeedUnits, "mps", "mph", "kmph", "kph") {
		return fmt.Errorf("speed_units must be one of mps, mph, kmph, kph, got %q", *c.SpeedUnits)
	}
	if c.LogLevel != nil && !oneOf(strings.ToLower(*c.LogLevel), "trace", "debug", "info", "warn", "warning", "error") {
		return fmt.Errorf("invalid log_level %q", *c.LogLevel)
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getString(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func getBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// GetOverlap returns the forward/side overlap fraction or the default.
func (c *PlannerConfig) GetOverlap() float64 { return getFloat(c.Overlap, 0.7) }

// GetTurnaroundBuffer returns the raster line extension in metres.
func (c *PlannerConfig) GetTurnaroundBuffer() float64 { return getFloat(c.TurnaroundBuffer, 5) }

// GetAltitudeAGL returns the default flight height above the target.
func (c *PlannerConfig) GetAltitudeAGL() float64 { return getFloat(c.AltitudeAGL, 60) }

// GetMinAltitudeAGL returns the lowest height the planner will fly coverage at.
func (c *PlannerConfig) GetMinAltitudeAGL() float64 { return getFloat(c.MinAltitudeAGL, 1) }

// GetStrategy returns the coverage strategy name.
func (c *PlannerConfig) GetStrategy() string { return getString(c.Strategy, "image_center") }

// GetSafetyClimb returns the clearance above takeoff and obstacle tops.
func (c *PlannerConfig) GetSafetyClimb() float64 { return getFloat(c.SafetyClimb, 10) }

// GetSafetyBuffer returns the margin added to the safe altitude.
func (c *PlannerConfig) GetSafetyBuffer() float64 { return getFloat(c.SafetyBuffer, 5) }

// GetDetourLift returns how far a detour rises above the safe altitude.
func (c *PlannerConfig) GetDetourLift() float64 { return getFloat(c.DetourLift, 10) }

// GetDedupEpsilon returns the per-axis waypoint merge distance.
func (c *PlannerConfig) GetDedupEpsilon() float64 { return getFloat(c.DedupEpsilon, 0.1) }

func (c *PlannerConfig) GetEndAction() string { return getString(c.EndAction, "RTL") }

func (c *PlannerConfig) GetAltitudeReference() string {
	return getString(c.AltitudeReference, "RELATIVE")
}

func (c *PlannerConfig) GetHoldSeconds() float64 { return getFloat(c.HoldSeconds, 0) }

func (c *PlannerConfig) GetGroundProjection() bool { return getBool(c.GroundProjection, false) }

// GetCruiseSpeed returns the transit speed in m/s.
func (c *PlannerConfig) GetCruiseSpeed() float64 { return getFloat(c.CruiseSpeed, 8) }

// GetCoverageSpeed returns the coverage speed in m/s; 0 means cruise speed.
func (c *PlannerConfig) GetCoverageSpeed() float64 { return getFloat(c.CoverageSpeed, 0) }

func (c *PlannerConfig) GetPhotoDwellSeconds() float64 { return getFloat(c.PhotoDwellSeconds, 2) }

func (c *PlannerConfig) GetBatteryPercentPerMin() float64 {
	return getFloat(c.BatteryPercentPerMin, 3)
}

func (c *PlannerConfig) GetBatteryPercentPerPhoto() float64 {
	return getFloat(c.BatteryPercentPerPhoto, 0.05)
}

// GetSimplifyTolerance returns the Douglas-Peucker tolerance; 0 disables.
func (c *PlannerConfig) GetSimplifyTolerance() float64 { return getFloat(c.SimplifyTolerance, 0) }

func (c *PlannerConfig) GetSpeedUnits() string { return getString(c.SpeedUnits, "mps") }

func (c *PlannerConfig) GetLogLevel() string { return getString(c.LogLevel, "info") }

func (c *PlannerConfig) GetLogJSON() bool { return getBool(c.LogJSON, false) }
