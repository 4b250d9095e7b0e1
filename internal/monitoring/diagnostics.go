package monitoring

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes recorded by the planner layers. Tests assert on these
// rather than on message text.
const (
	CodeHullDegenerate    = "hull_degenerate"
	CodeOBBFallback       = "obb_fallback"
	CodeOBBOrthogonalised = "obb_orthogonalised"
	CodeAltitudeClamped   = "altitude_clamped"
	CodeFootprintFloored  = "footprint_floored"
	CodeZoomClamped       = "zoom_clamped"
	CodeFarLimitInfinite  = "far_limit_infinite"
	CodeProjectionIgnored = "projection_hint_ignored"
	CodeObstacleDetour    = "obstacle_detour"
	CodeDetourHeuristic   = "detour_heuristic"
	CodeWaypointsMerged   = "waypoints_merged"
	CodeObstaclesFiltered = "obstacles_filtered"
	CodeSimplified        = "path_simplified"
	CodeCapturesDropped   = "captures_dropped"
	CodeBatteryCapped     = "battery_capped"
	CodeCoverageStrategy  = "coverage_strategy"
)

// Diagnostic is one structured note about a fallback or a notable decision
// taken while planning.
type Diagnostic struct {
	Severity  Severity `json:"severity"`
	Component string   `json:"component"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s/%s: %s", d.Severity, d.Component, d.Code, d.Message)
}

// Diagnostics collects entries for a single planning call. The zero value is
// ready to use and a nil *Diagnostics silently discards everything, so
// callers that don't care can pass nil.
type Diagnostics struct {
	Entries []Diagnostic `json:"entries,omitempty"`
}

// Infof records an informational entry and mirrors it to Logf.
func (d *Diagnostics) Infof(component, code, format string, v ...interface{}) {
	d.add(SeverityInfo, component, code, fmt.Sprintf(format, v...))
}

// Warnf records a warning entry and mirrors it to Logf.
func (d *Diagnostics) Warnf(component, code, format string, v ...interface{}) {
	d.add(SeverityWarning, component, code, fmt.Sprintf(format, v...))
}

func (d *Diagnostics) add(sev Severity, component, code, msg string) {
	if d == nil {
		return
	}
	entry := Diagnostic{Severity: sev, Component: component, Code: code, Message: msg}
	d.Entries = append(d.Entries, entry)
	Logf("%s", entry.String())
}

// Has reports whether any entry carries the given code.
func (d *Diagnostics) Has(code string) bool {
	if d == nil {
		return false
	}
	for _, e := range d.Entries {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Count returns the number of entries carrying the given code.
func (d *Diagnostics) Count(code string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, e := range d.Entries {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Warnings returns only the warning entries.
func (d *Diagnostics) Warnings() []Diagnostic {
	if d == nil {
		return nil
	}
	var out []Diagnostic
	for _, e := range d.Entries {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// Merge appends all entries of other without logging them a second time.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if d == nil || other == nil {
		return
	}
	d.Entries = append(d.Entries, other.Entries...)
}

func (d *Diagnostics) String() string {
	if d == nil || len(d.Entries) == 0 {
		return ""
	}
	lines := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
