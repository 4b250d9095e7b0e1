// Package l4route owns Layer 4 (Routing) of the survey planner.
//
// Responsibilities: assembling a complete flight path from a coverage
// sequence and mission context (takeoff, climb to a safe altitude,
// transit, coverage, transit, end action), the single-detour obstacle
// heuristic, near-duplicate merging, and explicit path-order indexing.
// Key types: Waypoint, PathSegment, MissionContext, ObstacleFootprint.
//
// Obstacle handling here is deliberately a one-shot heuristic: each
// transit leg that crosses an obstacle footprint gets at most one elevated
// midpoint. It is not a motion planner and does not re-check the detour
// legs it creates.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4route
