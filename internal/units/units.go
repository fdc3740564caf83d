// Package units provides shared unit constants and conversions for
// tomography variables and coordinates.
package units

import "fmt"

// Velocity unit constants. Normalized datasets store velocities in m/s.
const (
	MPS     = "m/s"
	KMPS    = "km/s"
	Percent = "percent" // relative velocity perturbations
)

// Coordinate unit constants. Radii are stored in metres, depths in km.
const (
	Meters     = "m"
	Kilometers = "km"
	Degrees    = "degrees"
)

// ValidVelocityUnits contains all velocity units a normalizer accepts.
var ValidVelocityUnits = []string{MPS, KMPS, Percent}

// IsValidVelocity checks if the given unit is a known velocity unit.
func IsValidVelocity(unit string) bool {
	for _, valid := range ValidVelocityUnits {
		if unit == valid {
			return true
		}
	}
	return false
}

// VelocityScale returns the factor converting a velocity from one unit to
// another. Percent values are dimensionless and only convert to
// themselves.
func VelocityScale(from, to string) (float64, error) {
	if !IsValidVelocity(from) || !IsValidVelocity(to) {
		return 0, fmt.Errorf("unknown velocity unit %q or %q (valid: m/s, km/s, percent)", from, to)
	}
	if from == to {
		return 1, nil
	}
	switch {
	case from == KMPS && to == MPS:
		return 1e3, nil
	case from == MPS && to == KMPS:
		return 1e-3, nil
	default:
		return 0, fmt.Errorf("cannot convert %q to %q", from, to)
	}
}

// DepthToRadius converts a depth in km (positive down) to a radius in
// metres on a sphere of the given radius in metres.
func DepthToRadius(sphereRadiusMeters, depthKm float64) float64 {
	return sphereRadiusMeters - depthKm*1e3
}

// RadiusToDepth converts a radius in metres back to a depth in km.
func RadiusToDepth(sphereRadiusMeters, radiusMeters float64) float64 {
	return (sphereRadiusMeters - radiusMeters) / 1e3
}
