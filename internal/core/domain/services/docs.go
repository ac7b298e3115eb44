// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the dispatch system.
//
// The package includes:
//   - DriverSelector: scores and picks the best available driver for a pickup
//   - ArrivalEstimator: a distance-over-speed ETA heuristic for internal drivers
//
// Domain services coordinate between aggregates, implementing business logic
// that does not naturally belong to a single aggregate root.
package services
