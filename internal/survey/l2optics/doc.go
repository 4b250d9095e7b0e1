// Package l2optics owns Layer 2 (Optics) of the survey planner.
//
// Responsibilities: camera/lens specifications, zoom interpolation, field
// of view, ground footprint at a given altitude, ground sampling distance
// and depth of field.
// Key types: CameraSpecs, Footprint.
//
// Dependency rule: L2 may depend on L1, never on L3+.
package l2optics
