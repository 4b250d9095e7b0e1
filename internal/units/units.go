// Package units provides shared constants, validation and conversion for
// the speed and distance units used in mission reports. The planner works
// in metres and metres per second throughout.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Speed unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// Distance unit constants
const (
	Metres     = "m"
	Kilometres = "km"
	Feet       = "ft"
	Miles      = "mi"
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// ValidDistanceUnits contains all valid distance unit values
var ValidDistanceUnits = []string{Metres, Kilometres, Feet, Miles}

// IsValid checks if the given unit is in the list of valid speed units
func IsValid(unit string) bool {
	return contains(ValidUnits, unit)
}

// IsValidDistance checks if the given unit is a valid distance unit
func IsValidDistance(unit string) bool {
	return contains(ValidDistanceUnits, unit)
}

func contains(list []string, v string) bool {
	for _, u := range list {
		if u == v {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid speed units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts a speed from meters per second to the target units
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// ConvertDistance converts metres to the target distance unit. Unknown
// units return metres.
func ConvertDistance(metres float64, targetUnits string) float64 {
	switch targetUnits {
	case Kilometres:
		return metres / 1000
	case Feet:
		return metres / 0.3048
	case Miles:
		return metres / 1609.344
	default:
		return metres
	}
}

// DistanceUnitFor picks the distance unit that pairs with a speed unit:
// mph reports in miles, km/h in kilometres, m/s in metres.
func DistanceUnitFor(speedUnits string) string {
	switch speedUnits {
	case MPH:
		return Miles
	case KMPH, KPH:
		return Kilometres
	default:
		return Metres
	}
}

// FormatDuration renders seconds as "1h02m03s", "4m05s" or "6s".
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Round(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
