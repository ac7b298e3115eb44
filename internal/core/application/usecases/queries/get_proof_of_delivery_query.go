package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetProofOfDeliveryQueryIsNotConstructed = errors.New(
	"GetProofOfDeliveryQuery must be created via NewGetProofOfDeliveryQuery constructor",
)

// GetProofOfDeliveryQuery retrieves the proof-of-delivery artifact for an
// order's most recent assignment.
type GetProofOfDeliveryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetProofOfDeliveryQuery creates a validated query.
func NewGetProofOfDeliveryQuery(orderID kernel.UUID) (GetProofOfDeliveryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetProofOfDeliveryQuery{}, err
	}

	return GetProofOfDeliveryQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the order the proof belongs to.
func (q GetProofOfDeliveryQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
func (q GetProofOfDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetProofOfDeliveryQueryIsNotConstructed)
}

// GetProofOfDeliveryQueryResponse is the proof-of-delivery artifact. External
// providers may resolve proof after the delivered transition, so a delivered
// assignment legitimately answers with HasProof false until the poll catches
// up (or forever, when the provider never produces one).
type GetProofOfDeliveryQueryResponse struct {
	AssignmentID kernel.UUID
	Status       string
	DeliveredAt  *time.Time
	HasProof     bool
	PhotoURL     string
	SignatureURL string
	Notes        string
}
