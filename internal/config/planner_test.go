package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultPlannerConfig(t *testing.T) {
	cfg := DefaultPlannerConfig()

	if cfg.Overlap == nil || *cfg.Overlap != 0.7 {
		t.Errorf("Expected Overlap 0.7, got %v", cfg.Overlap)
	}
	if cfg.Strategy == nil || *cfg.Strategy != "image_center" {
		t.Errorf("Expected Strategy image_center, got %v", cfg.Strategy)
	}
	if cfg.EndAction == nil || *cfg.EndAction != "RTL" {
		t.Errorf("Expected EndAction RTL, got %v", cfg.EndAction)
	}
	if cfg.GetCruiseSpeed() != 8 {
		t.Errorf("GetCruiseSpeed() = %f, want 8", cfg.GetCruiseSpeed())
	}
	if cfg.GetDedupEpsilon() != 0.1 {
		t.Errorf("GetDedupEpsilon() = %f, want 0.1", cfg.GetDedupEpsilon())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultPlannerConfig(), fromFile); diff != "" {
		t.Errorf("%s drifted from DefaultPlannerConfig (-builtin +file):\n%s", DefaultConfigPath, diff)
	}
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	empty := EmptyPlannerConfig()
	def := DefaultPlannerConfig()

	tests := []struct {
		name      string
		got, want float64
	}{
		{"overlap", empty.GetOverlap(), *def.Overlap},
		{"turnaround", empty.GetTurnaroundBuffer(), *def.TurnaroundBuffer},
		{"altitude", empty.GetAltitudeAGL(), *def.AltitudeAGL},
		{"safety climb", empty.GetSafetyClimb(), *def.SafetyClimb},
		{"safety buffer", empty.GetSafetyBuffer(), *def.SafetyBuffer},
		{"detour lift", empty.GetDetourLift(), *def.DetourLift},
		{"dwell", empty.GetPhotoDwellSeconds(), *def.PhotoDwellSeconds},
		{"battery/min", empty.GetBatteryPercentPerMin(), *def.BatteryPercentPerMin},
		{"battery/photo", empty.GetBatteryPercentPerPhoto(), *def.BatteryPercentPerPhoto},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %f, want %f", tt.name, tt.got, tt.want)
		}
	}
	if empty.GetLogLevel() != "info" || empty.GetSpeedUnits() != "mps" {
		t.Errorf("string defaults: log=%q units=%q", empty.GetLogLevel(), empty.GetSpeedUnits())
	}
}

func TestLoadPlannerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mission.json")

	testJSON := `{
  "overlap": 0.8,
  "strategy": "raster",
  "end_action": "HOLD",
  "hold_seconds": 20,
  "cruise_speed": 12.5
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPlannerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetOverlap() != 0.8 {
		t.Errorf("GetOverlap() = %f, want 0.8", cfg.GetOverlap())
	}
	if cfg.GetStrategy() != "raster" {
		t.Errorf("GetStrategy() = %q, want raster", cfg.GetStrategy())
	}
	if cfg.GetEndAction() != "HOLD" || cfg.GetHoldSeconds() != 20 {
		t.Errorf("end action = %q hold = %f", cfg.GetEndAction(), cfg.GetHoldSeconds())
	}
	if cfg.GetCruiseSpeed() != 12.5 {
		t.Errorf("GetCruiseSpeed() = %f, want 12.5", cfg.GetCruiseSpeed())
	}
	// Omitted fields keep their defaults.
	if cfg.SafetyClimb != nil || cfg.GetSafetyClimb() != 10 {
		t.Errorf("SafetyClimb = %v, GetSafetyClimb() = %f", cfg.SafetyClimb, cfg.GetSafetyClimb())
	}
}

func TestLoadPlannerConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "nope.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"overlap out of range", write("overlap.json", `{"overlap": 0.99}`), "overlap must be between"},
		{"negative climb", write("climb.json", `{"safety_climb": -1}`), "safety_climb must be non-negative"},
		{"zero speed", write("speed.json", `{"cruise_speed": 0}`), "cruise_speed must be positive"},
		{"bad strategy", write("strategy.json", `{"strategy": "spiral"}`), "strategy must be"},
		{"bad end action", write("end.json", `{"end_action": "rtl"}`), "end_action must be"},
		{"bad altitude ref", write("ref.json", `{"altitude_reference": "AGL"}`), "altitude_reference must be"},
		{"bad units", write("units.json", `{"speed_units": "knots"}`), "speed_units must be"},
		{"bad log level", write("log.json", `{"log_level": "loud"}`), "invalid log_level"},
		{"too large", write("big.json", `{"x":"`+strings.Repeat("a", 1024*1024)+`"}`), "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlannerConfig(tt.path)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
