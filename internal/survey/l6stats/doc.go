// Package l6stats owns Layer 6 (Statistics) of the survey planner.
//
// Responsibilities: photo count, 3-D path length, flight time and battery
// estimates for a finished waypoint list, parameterised by a
// VehicleProfile.
//
// Dependency rule: L6 may depend on L1-L5. Nothing in the engine depends
// on L6.
package l6stats
