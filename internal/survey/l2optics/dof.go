package l2optics

import (
	"math"

	"github.com/banshee-data/survey.planner/internal/monitoring"
)

const (
	// DefaultAperture is used when the camera specs carry no f-number.
	DefaultAperture = 2.8

	// cocDiagonalDivisor derives a circle of confusion from the sensor
	// diagonal when none is given (the common d/1500 rule).
	cocDiagonalDivisor = 1500.0

	// dofEpsilonMm guards the near-hyperfocal denominators.
	dofEpsilonMm = 1e-6
)

// DepthOfField holds the acceptable-sharpness limits for a focus distance.
// FarM is +Inf at or beyond the hyperfocal distance.
type DepthOfField struct {
	FocusM      float64 `json:"focus_m"`
	HyperfocalM float64 `json:"hyperfocal_m"`
	NearM       float64 `json:"near_m"`
	FarM        float64 `json:"far_m"`
}

// Infinite reports whether everything beyond NearM is acceptably sharp.
func (d DepthOfField) Infinite() bool {
	return math.IsInf(d.FarM, 1)
}

// ComputeDepthOfField returns the depth of field when focused at focusM
// metres. Focus distances at or beyond the hyperfocal distance give an
// infinite far limit, recorded as CodeFarLimitInfinite.
func ComputeDepthOfField(cam CameraSpecs, focusM float64, diag *monitoring.Diagnostics) DepthOfField {
	f := cam.EffectiveFocalLength(diag)
	n := cam.Aperture
	if n <= 0 {
		n = DefaultAperture
	}
	c := cam.CircleOfConfusionMm
	if c <= 0 {
		c = cam.SensorDiagonalMm() / cocDiagonalDivisor
	}
	if f <= 0 || c <= 0 {
		return DepthOfField{FocusM: focusM, FarM: math.Inf(1)}
	}

	h := f*f/(n*c) + f // mm
	s := focusM * 1000 // mm

	dof := DepthOfField{FocusM: focusM, HyperfocalM: h / 1000}

	if den := h + s - 2*f; den > dofEpsilonMm {
		dof.NearM = s * (h - f) / den / 1000
	}
	if den := h - s; den > dofEpsilonMm {
		dof.FarM = s * (h - f) / den / 1000
	} else {
		diag.Infof(component, monitoring.CodeFarLimitInfinite,
			"focus %.1f m at or beyond hyperfocal %.1f m, far limit infinite", focusM, h/1000)
		dof.FarM = math.Inf(1)
	}
	return dof
}
