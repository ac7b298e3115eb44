// Package queries contains read-only operations over the dispatch store.
// Implements the Query side of the CQRS architecture: handlers read with raw
// SQL and return plain response structs, bypassing the aggregates.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetCurrentLocationQueryIsNotConstructed = errors.New(
	"GetCurrentLocationQuery must be created via NewGetCurrentLocationQuery constructor",
)

// GetCurrentLocationQuery retrieves the courier's last known position for an
// order's active assignment.
type GetCurrentLocationQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetCurrentLocationQuery creates a validated query.
func NewGetCurrentLocationQuery(orderID kernel.UUID) (GetCurrentLocationQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetCurrentLocationQuery{}, err
	}

	return GetCurrentLocationQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the order being tracked.
func (q GetCurrentLocationQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
func (q GetCurrentLocationQuery) Validate() error {
	return q.guard.Validate(ErrGetCurrentLocationQueryIsNotConstructed)
}

// GetCurrentLocationQueryResponse is the last known courier position. The
// position is the ping with the greatest device timestamp; RecordedAt tells
// the caller how stale it is. Position is nil while the assignment has no
// pings yet.
type GetCurrentLocationQueryResponse struct {
	AssignmentID   kernel.UUID
	Status         string
	Position       *kernel.GeoPoint
	RecordedAt     time.Time
	AccuracyMeters float64
}
