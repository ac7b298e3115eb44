package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/guard"
)

var ErrGetETAQueryIsNotConstructed = errors.New(
	"GetETAQuery must be created via NewGetETAQuery constructor",
)

// GetETAQuery retrieves the estimated time of arrival for an order's active
// assignment, either to the pickup or to the customer.
type GetETAQuery struct {
	orderID kernel.UUID
	kind    ports.ETAKind

	guard guard.ConstructorGuard
}

// NewGetETAQuery creates a validated query.
func NewGetETAQuery(orderID kernel.UUID, kind ports.ETAKind) (GetETAQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetETAQuery{}, err
	}
	if kind != ports.ETAToPickup && kind != ports.ETAToDropoff {
		return GetETAQuery{}, errors.New("eta kind must be pickup or dropoff")
	}

	return GetETAQuery{
		orderID: orderID,
		kind:    kind,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the order being tracked.
func (q GetETAQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Kind returns the requested delivery leg.
func (q GetETAQuery) Kind() ports.ETAKind {
	return q.kind
}

// Validate ensures the query was created through the constructor.
func (q GetETAQuery) Validate() error {
	return q.guard.Validate(ErrGetETAQueryIsNotConstructed)
}

// GetETAQueryResponse is the estimated time of arrival. External providers
// return routed estimates; internal ones are straight-line heuristics, which
// Estimated distinguishes for API consumers. ETA is nil while the courier has
// no known position to estimate from.
type GetETAQueryResponse struct {
	AssignmentID kernel.UUID
	Kind         ports.ETAKind
	ETA          *time.Duration
	Estimated    bool
}
