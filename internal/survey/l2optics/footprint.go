package l2optics

import (
	"math"

	"github.com/banshee-data/survey.planner/internal/monitoring"
)

const (
	// MinAltitudeAGL is the lowest altitude the footprint model accepts;
	// smaller values are clamped up to it.
	MinAltitudeAGL = 1.0

	// MinFootprint is the floor applied to each ground footprint dimension
	// so downstream spacing maths never divides by zero.
	MinFootprint = 0.01
)

// Footprint is the ground area covered by one frame at a given altitude.
type Footprint struct {
	AltitudeAGL   float64 `json:"altitude_agl"`
	FocalLengthMm float64 `json:"focal_length_mm"`
	HFOVDeg       float64 `json:"hfov_deg"`
	VFOVDeg       float64 `json:"vfov_deg"`
	Width         float64 `json:"width_m"`  // across the sensor width
	Height        float64 `json:"height_m"` // across the sensor height
	GSDWidthCm    float64 `json:"gsd_width_cm_px,omitempty"`
	GSDHeightCm   float64 `json:"gsd_height_cm_px,omitempty"`
}

// Diagonal is the footprint diagonal in metres.
func (f Footprint) Diagonal() float64 {
	return math.Hypot(f.Width, f.Height)
}

// Area is the footprint area in square metres.
func (f Footprint) Area() float64 {
	return f.Width * f.Height
}

// Effective returns the footprint reduced by the overlap fraction, i.e. the
// new ground each frame contributes along each dimension.
func (f Footprint) Effective(overlap float64) (width, height float64) {
	return f.Width * (1 - overlap), f.Height * (1 - overlap)
}

// FOVDeg returns the field of view in degrees for a sensor dimension.
// Formula: FOV = 2 × arctan(dimension / (2 × focal_length))
func FOVDeg(dimensionMm, focalLengthMm float64) float64 {
	return 2 * math.Atan(dimensionMm/(2*focalLengthMm)) * 180 / math.Pi
}

// GroundSize returns the ground distance covered by a field of view at the
// given altitude: 2 × altitude × tan(FOV/2).
func GroundSize(altitude, fovDeg float64) float64 {
	return 2 * altitude * math.Tan(fovDeg*math.Pi/360)
}

// ComputeFootprint derives field of view and ground footprint for the camera
// flown at altitudeAGL metres. Altitudes below MinAltitudeAGL are clamped
// and footprint dimensions are floored at MinFootprint; both record a
// diagnostic.
func ComputeFootprint(cam CameraSpecs, altitudeAGL float64, diag *monitoring.Diagnostics) (Footprint, error) {
	if err := cam.Validate(); err != nil {
		return Footprint{}, err
	}
	if altitudeAGL < MinAltitudeAGL || math.IsNaN(altitudeAGL) {
		diag.Warnf(component, monitoring.CodeAltitudeClamped,
			"altitude %g m below minimum, clamped to %g m", altitudeAGL, MinAltitudeAGL)
		altitudeAGL = MinAltitudeAGL
	}

	focal := cam.EffectiveFocalLength(diag)
	fp := Footprint{
		AltitudeAGL:   altitudeAGL,
		FocalLengthMm: focal,
		HFOVDeg:       FOVDeg(cam.SensorWidthMm, focal),
		VFOVDeg:       FOVDeg(cam.SensorHeightMm, focal),
	}
	fp.Width = floorFootprint(GroundSize(altitudeAGL, fp.HFOVDeg), "width", diag)
	fp.Height = floorFootprint(GroundSize(altitudeAGL, fp.VFOVDeg), "height", diag)

	if cam.ImageWidthPx > 0 {
		fp.GSDWidthCm = GSDCmPerPx(cam.SensorWidthMm, focal, altitudeAGL, cam.ImageWidthPx)
	}
	if cam.ImageHeightPx > 0 {
		fp.GSDHeightCm = GSDCmPerPx(cam.SensorHeightMm, focal, altitudeAGL, cam.ImageHeightPx)
	}
	return fp, nil
}

func floorFootprint(v float64, dim string, diag *monitoring.Diagnostics) float64 {
	if v < MinFootprint || math.IsNaN(v) {
		diag.Warnf(component, monitoring.CodeFootprintFloored,
			"footprint %s %g m floored to %g m", dim, v, MinFootprint)
		return MinFootprint
	}
	return v
}

// GSDCmPerPx is the ground sampling distance in centimetres per pixel.
func GSDCmPerPx(sensorMm, focalMm, altitudeM float64, pixels int) float64 {
	if focalMm <= 0 || pixels <= 0 {
		return 0
	}
	return sensorMm * altitudeM * 100 / (focalMm * float64(pixels))
}

// AltitudeForGSD inverts GSDCmPerPx: the altitude that yields the requested
// ground sampling distance across the sensor width.
func AltitudeForGSD(cam CameraSpecs, gsdCm float64, diag *monitoring.Diagnostics) float64 {
	if gsdCm <= 0 || cam.ImageWidthPx <= 0 || cam.SensorWidthMm <= 0 {
		return 0
	}
	focal := cam.EffectiveFocalLength(diag)
	return gsdCm * focal * float64(cam.ImageWidthPx) / (cam.SensorWidthMm * 100)
}
