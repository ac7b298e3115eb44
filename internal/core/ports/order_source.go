package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// OrderSnapshot is the dispatch-relevant view of an order owned by the order
// management system. This service never mutates orders; it only reads what it
// needs to create and track assignments.
type OrderSnapshot struct {
	ID             kernel.UUID
	Confirmed      bool
	PickupAddress  string
	PickupPoint    kernel.GeoPoint
	PickupContact  string
	DropoffAddress string
	DropoffPoint   kernel.GeoPoint
	DropoffContact string
	PackageNote    string
}

// OrderSource is the read-only contract to the order management system.
type OrderSource interface {
	// GetConfirmed retrieves a confirmed order ready for dispatch. Returns
	// errs.ErrObjectNotFound for unknown orders and an invalid-value error
	// for orders that are not confirmed yet.
	GetConfirmed(ctx context.Context, orderID kernel.UUID) (OrderSnapshot, error)
}
