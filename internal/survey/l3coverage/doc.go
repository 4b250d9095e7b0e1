// Package l3coverage owns Layer 3 (Coverage) of the survey planner.
//
// Responsibilities: turning a target polygon, its oriented bounding box and
// a camera footprint into an ordered 2-D coverage sequence. Two automatic
// strategies (raster-line sweep, image-center grid) share one entry point,
// Generate; the user-parameterised lawnmower lives in GeneratePattern.
// Key types: Coverage, Point, PatternParams.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3coverage
