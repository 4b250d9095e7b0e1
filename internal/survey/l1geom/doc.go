// Package l1geom owns Layer 1 (Geometry) of the survey planner.
//
// Responsibilities: local-frame coordinates, convex hull, minimum-area
// oriented bounding box (rotating calipers), polygon containment and
// boundary distance, and segment/circle proximity tests.
// Key types: LocalCoord, OBBResult.
//
// Dependency rule: L1 depends on nothing above it. Higher layers (optics,
// coverage, routing, simplification, statistics) build on these types.
//
// All 2-D maths uses gonum's spatial/r2 vectors; 3-D uses spatial/r3.
package l1geom
