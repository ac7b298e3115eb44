// Package assignment provides the domain model for delivery assignments: the
// binding of a confirmed order to a delivery agent for the duration of its
// fulfillment.
//
// The package includes:
//   - Assignment: the aggregate root owning the delivery lifecycle
//   - Status: a state machine enforcing valid lifecycle transitions
//   - Provider: the fulfillment mechanism (internal drivers or an external
//     courier network), fixed at creation
//   - Proof: the proof-of-delivery artifact (photo, signature, notes)
//
// Key business rules:
//   - The lifecycle is Pending -> Accepted -> PickedUp -> Delivered, with
//     Cancelled and Failed reachable from any non-terminal state
//   - Milestone timestamps are set exactly once and never move backwards
//   - Internal assignments always carry a designated driver who is the only
//     actor allowed to accept; external assignments carry a remote job id
//   - Proof is mandatory for internal deliveries and may arrive late (or
//     never) for external ones
//
// The package follows Domain-Driven Design principles: private fields,
// constructor validation, and rich behavior on the aggregate itself.
package assignment
