// Package driver provides the domain model for in-house delivery drivers.
//
// The package includes:
//   - Driver: the aggregate root managing identity, rating, availability, and
//     last reported position
//   - Availability: the shift/engagement state machine
//
// Key business rules:
//   - Only an Available driver can be engaged for an assignment, and an
//     engaged driver is excluded from selection until released
//   - The rating is bounded to [0, 5] and feeds the selection score
//   - The position is self-reported and advisory; staleness is the tracking
//     layer's concern
package driver
