package l2optics

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/survey.planner/internal/monitoring"
)

const component = "l2optics"

// DefaultZoomPosition is used when a zoom lens has no explicit position.
const DefaultZoomPosition = 0.5

// ErrInvalidCamera is returned when camera specs are missing or unusable.
var ErrInvalidCamera = errors.New("invalid camera specs")

// CameraSpecs describes the optics of a survey camera. Either FocalLengthMm
// (prime lens) or ZoomRangeMm (zoom lens) must be set; a non-zero zoom
// range takes precedence.
type CameraSpecs struct {
	Name           string     `json:"name,omitempty"`
	FocalLengthMm  float64    `json:"focal_length_mm,omitempty"`
	ZoomRangeMm    [2]float64 `json:"zoom_range_mm,omitempty"`
	ZoomPosition   *float64   `json:"zoom_position,omitempty"` // normalised [0,1]
	SensorWidthMm  float64    `json:"sensor_width_mm"`
	SensorHeightMm float64    `json:"sensor_height_mm"`
	ImageWidthPx   int        `json:"image_width_px"`
	ImageHeightPx  int        `json:"image_height_px"`

	// Depth of field inputs. Zero values select defaults.
	Aperture            float64 `json:"aperture,omitempty"`
	CircleOfConfusionMm float64 `json:"circle_of_confusion_mm,omitempty"`
}

// IsZoom reports whether the lens has a zoom range.
func (c CameraSpecs) IsZoom() bool {
	return c.ZoomRangeMm[0] > 0 && c.ZoomRangeMm[1] > 0
}

// Validate checks that the specs can drive the footprint model.
func (c *CameraSpecs) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: camera specs are required", ErrInvalidCamera)
	}
	if c.SensorWidthMm <= 0 || c.SensorHeightMm <= 0 {
		return fmt.Errorf("%w: sensor size must be positive, got %gx%g mm",
			ErrInvalidCamera, c.SensorWidthMm, c.SensorHeightMm)
	}
	if c.IsZoom() {
		if c.ZoomRangeMm[1] < c.ZoomRangeMm[0] {
			return fmt.Errorf("%w: zoom range min %g exceeds max %g",
				ErrInvalidCamera, c.ZoomRangeMm[0], c.ZoomRangeMm[1])
		}
	} else if c.FocalLengthMm <= 0 {
		return fmt.Errorf("%w: focal length must be positive, got %g", ErrInvalidCamera, c.FocalLengthMm)
	}
	if c.ImageWidthPx < 0 || c.ImageHeightPx < 0 {
		return fmt.Errorf("%w: image dimensions must not be negative", ErrInvalidCamera)
	}
	return nil
}

// EffectiveFocalLength returns the focal length in millimetres. Zoom lenses
// interpolate linearly between the range ends by the zoom position, which
// defaults to DefaultZoomPosition and is clamped to [0, 1].
func (c CameraSpecs) EffectiveFocalLength(diag *monitoring.Diagnostics) float64 {
	if !c.IsZoom() {
		return c.FocalLengthMm
	}
	z := DefaultZoomPosition
	if c.ZoomPosition != nil {
		z = *c.ZoomPosition
	}
	if z < 0 || z > 1 || math.IsNaN(z) {
		clamped := math.Max(0, math.Min(1, z))
		if math.IsNaN(z) {
			clamped = DefaultZoomPosition
		}
		diag.Warnf(component, monitoring.CodeZoomClamped, "zoom position %g clamped to %g", z, clamped)
		z = clamped
	}
	return c.ZoomRangeMm[0] + (c.ZoomRangeMm[1]-c.ZoomRangeMm[0])*z
}

// AspectRatio is sensor width over height.
func (c CameraSpecs) AspectRatio() float64 {
	if c.SensorHeightMm <= 0 {
		return 1
	}
	return c.SensorWidthMm / c.SensorHeightMm
}

// SensorDiagonalMm returns the sensor diagonal.
func (c CameraSpecs) SensorDiagonalMm() float64 {
	return math.Hypot(c.SensorWidthMm, c.SensorHeightMm)
}
