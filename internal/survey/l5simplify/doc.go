// Package l5simplify owns Layer 5 (Simplification) of the survey planner.
//
// Responsibilities: Douglas-Peucker reduction of 3-D polylines, applying
// it to planned segments without disturbing surviving waypoints, and
// deriving chunked and preview segments for display or upload.
//
// Dependency rule: L5 may depend on L1-L4, but never on L6+.
package l5simplify
