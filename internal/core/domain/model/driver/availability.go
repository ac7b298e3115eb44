package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Availability represents a driver's readiness to take new assignments.
type Availability int

const (
	// AvailabilityUnknown represents an invalid or undefined availability.
	AvailabilityUnknown Availability = iota

	// Available means the driver is on shift and free to take an assignment.
	Available

	// OnDelivery means the driver is fulfilling an assignment and is excluded
	// from selection until it reaches a terminal state.
	OnDelivery

	// Offline means the driver is off shift.
	Offline
)

// getAvailabilityStrings returns a map of Availability values to their string representations.
func getAvailabilityStrings() map[Availability]string {
	return map[Availability]string{
		AvailabilityUnknown: "unknown",
		Available:           "available",
		OnDelivery:          "on_delivery",
		Offline:             "offline",
	}
}

// AvailabilityFromString parses a persisted availability name.
func AvailabilityFromString(s string) (Availability, error) {
	switch s {
	case "available":
		return Available, nil
	case "on_delivery":
		return OnDelivery, nil
	case "offline":
		return Offline, nil
	default:
		return AvailabilityUnknown, errs.NewValueIsInvalidErrorWithCause(
			"availability", fmt.Errorf("%q is not a valid availability", s))
	}
}

// Validate checks that the Availability is one of the defined values.
func (a Availability) Validate() error {
	if a != Available && a != OnDelivery && a != Offline {
		return errs.NewValueIsInvalidErrorWithCause(
			"availability", fmt.Errorf("%d is not a valid availability", a))
	}
	return nil
}

// String returns the snake_case availability name. Implements fmt.Stringer.
func (a Availability) String() string {
	if str, ok := getAvailabilityStrings()[a]; ok {
		return str
	}
	return "unknown"
}
