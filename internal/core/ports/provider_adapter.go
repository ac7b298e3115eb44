package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

var (
	// ErrProviderUnavailable is returned when the provider cannot be reached
	// or reports a transient failure. Maps to HTTP 503 at the transport
	// boundary; callers may retry.
	ErrProviderUnavailable = errors.New("delivery provider is unavailable")

	// ErrProviderMismatch is returned when an adapter is asked to handle an
	// assignment belonging to a different provider. Always a wiring bug.
	ErrProviderMismatch = errors.New("assignment belongs to a different provider")
)

// ETAKind selects which leg of the delivery an ETA request refers to.
type ETAKind int

const (
	// ETAToPickup is the time until the courier reaches the pickup point.
	ETAToPickup ETAKind = iota + 1

	// ETAToDropoff is the time until the courier reaches the customer.
	ETAToDropoff
)

// String returns the snake_case kind name. Implements fmt.Stringer.
func (k ETAKind) String() string {
	switch k {
	case ETAToPickup:
		return "pickup"
	case ETAToDropoff:
		return "dropoff"
	default:
		return "unknown"
	}
}

// JobRequest carries everything a provider needs to create a delivery job.
type JobRequest struct {
	AssignmentID    kernel.UUID
	OrderID         kernel.UUID
	PickupAddress   string
	PickupPoint     kernel.GeoPoint
	PickupContact   string
	DropoffAddress  string
	DropoffPoint    kernel.GeoPoint
	DropoffContact  string
	PackageNote     string
	RequestedPickup *time.Time
}

// JobSnapshot is a provider's view of a delivery job at poll time. Optional
// fields are nil when the provider has not produced them yet.
type JobSnapshot struct {
	ExternalID      string
	Status          assignment.Status
	CourierName     string
	CourierPosition *kernel.GeoPoint
	Proof           *assignment.Proof
	UpdatedAt       time.Time
}

// ProviderAdapter is the outbound contract to a delivery fulfillment
// mechanism. The internal driver pool and each external courier network
// implement it; command handlers call through it without branching on the
// concrete provider.
//
// All methods return ErrProviderUnavailable on transient provider failure and
// ErrProviderMismatch when handed an assignment of the wrong provider.
type ProviderAdapter interface {
	// Provider identifies which provider this adapter serves.
	Provider() assignment.Provider

	// CreateJob registers the delivery with the provider and returns the
	// remote job id. For the internal pool this is a local no-op returning
	// the assignment id.
	CreateJob(ctx context.Context, request JobRequest) (string, error)

	// GetJob fetches the provider's current view of the job: status, courier
	// position, and proof when available.
	GetJob(ctx context.Context, externalID string) (JobSnapshot, error)

	// GetETA fetches the provider's routed estimate for the given leg.
	GetETA(ctx context.Context, externalID string, kind ETAKind) (time.Duration, error)

	// CancelJob cancels the remote job. Idempotent: cancelling an already
	// terminal job is not an error.
	CancelJob(ctx context.Context, externalID string, reason string) error
}

// AdapterRegistry resolves the ProviderAdapter for a provider. Registration
// happens once at composition time; resolution is read-only afterwards.
type AdapterRegistry interface {
	// Resolve returns the adapter for the given provider, or an error when
	// none is registered.
	Resolve(provider assignment.Provider) (ProviderAdapter, error)
}
