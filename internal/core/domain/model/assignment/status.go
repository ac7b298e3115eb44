package assignment

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// ErrInvalidTransition is returned for any status change that the lifecycle
// graph does not allow. Guard violations are terminal: retrying the same
// transition cannot succeed, and callers must not retry automatically.
var ErrInvalidTransition = errors.New("invalid assignment status transition")

// Status represents the lifecycle state of a delivery assignment.
//
// State transitions:
//
//	Pending ──> Accepted ──> PickedUp ──> Delivered
//	   │            │            │
//	   └────────────┴────────────┴──> Cancelled / Failed
//
// Delivered, Cancelled, and Failed are terminal. Cancelled records a
// deliberate stop (customer, staff, or provider callback); Failed records an
// unrecoverable provider error and is kept distinct for analytics.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the assignment exists and a provider is
	// selected, but no agent has claimed the job yet.
	Pending

	// Accepted means the designated driver claimed the job, or the external
	// provider matched a courier to it.
	Accepted

	// PickedUp means the agent confirmed collecting the order from the chef.
	PickedUp

	// Delivered means the order was handed to the customer. Terminal.
	Delivered

	// Cancelled means the assignment was stopped before completion. Terminal.
	Cancelled

	// Failed means the provider reported an unrecoverable error. Terminal.
	Failed
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Accepted:  "accepted",
		PickedUp:  "picked_up",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Accepted:  "accepted",
		PickedUp:  "picked_up",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// StatusFromString parses a persisted or wire-level status name.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is one of the defined lifecycle states.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status, matching the persisted
// representation. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Failed
}

// AcceptsPings reports whether location pings may be recorded in this state.
// Pings accumulate only while the agent is en route (accepted or picked up);
// anything else is dropped by the ingestion layer.
func (s Status) AcceptsPings() bool {
	return s == Accepted || s == PickedUp
}

// Accept transitions Pending -> Accepted.
// Any other source state fails with ErrInvalidTransition, including a repeat
// accept, which is how concurrent claims resolve to a single winner.
func (s Status) Accept() (Status, error) {
	if s != Pending {
		return 0, fmt.Errorf("%w: cannot accept from %s", ErrInvalidTransition, s)
	}
	return Accepted, nil
}

// Pickup transitions Accepted -> PickedUp.
// A repeat pickup confirmation fails rather than overwriting the pickup time.
func (s Status) Pickup() (Status, error) {
	if s != Accepted {
		return 0, fmt.Errorf("%w: cannot pick up from %s", ErrInvalidTransition, s)
	}
	return PickedUp, nil
}

// Deliver transitions PickedUp -> Delivered.
func (s Status) Deliver() (Status, error) {
	if s != PickedUp {
		return 0, fmt.Errorf("%w: cannot deliver from %s", ErrInvalidTransition, s)
	}
	return Delivered, nil
}

// Cancel transitions any non-terminal state -> Cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() {
		return 0, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, s)
	}
	return Cancelled, nil
}

// Fail transitions any non-terminal state -> Failed.
func (s Status) Fail() (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() {
		return 0, fmt.Errorf("%w: cannot fail from %s", ErrInvalidTransition, s)
	}
	return Failed, nil
}
