package assignment

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Provider identifies the delivery fulfillment mechanism for an assignment.
// It is fixed at creation and never changes. New providers are added by
// extending this closed enum and registering an adapter implementation, not
// by branching on strings at call sites.
type Provider int

const (
	// ProviderUnknown represents an invalid or undefined provider.
	ProviderUnknown Provider = iota

	// Internal is the in-house driver pool. Job creation is local, ETAs are
	// computed from the driver's last known position, and proof of delivery
	// is submitted directly by the driver client.
	Internal

	// Stuart is the Stuart courier network. Jobs, ETAs, and proof of
	// delivery live in Stuart's system and are reached over its HTTP API.
	Stuart
)

// getProviderStrings returns a map of Provider values to their string representations.
func getProviderStrings() map[Provider]string {
	return map[Provider]string{
		ProviderUnknown: "unknown",
		Internal:        "internal",
		Stuart:          "stuart",
	}
}

// ProviderFromString parses a persisted or wire-level provider name.
func ProviderFromString(s string) (Provider, error) {
	switch s {
	case "internal":
		return Internal, nil
	case "stuart":
		return Stuart, nil
	default:
		return ProviderUnknown, errs.NewValueIsInvalidErrorWithCause(
			"provider", fmt.Errorf("%q is not a valid provider", s))
	}
}

// Validate checks that the Provider is one of the defined values.
func (p Provider) Validate() error {
	if p != Internal && p != Stuart {
		return errs.NewValueIsInvalidErrorWithCause("provider", fmt.Errorf("%d is not a valid provider", p))
	}
	return nil
}

// String returns the snake_case provider name. Implements fmt.Stringer.
func (p Provider) String() string {
	if str, ok := getProviderStrings()[p]; ok {
		return str
	}
	return "unknown"
}

// IsExternal reports whether the provider is a third-party courier network
// whose job lifecycle is driven by webhooks and polling rather than direct
// driver actions.
func (p Provider) IsExternal() bool {
	return p == Stuart
}
