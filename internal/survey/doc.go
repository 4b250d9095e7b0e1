// Package survey is the planner facade. It runs the engine layers in order
//
//	L1 geometry → L2 optics → L3 coverage → L4 routing → L5 simplify → L6 stats
//
// behind one parameterised entry point per mission kind (Plan for area
// surveys, PlanManual for lawnmower patterns) and returns either a complete
// Result or an error. A Result never carries a partial segment.
//
// Every call receives its configuration explicitly through the Planner;
// there are no process-wide defaults. Calls are synchronous and
// independent, so a Planner may be shared between goroutines.
package survey
