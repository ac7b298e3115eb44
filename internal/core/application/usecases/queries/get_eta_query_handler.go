package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetETAQueryHandler computes the estimated time of arrival for an order's
// active assignment.
//
// External assignments get the provider's routed estimate. Internal ones fall
// back to the straight-line heuristic from the courier's latest ping to the
// requested leg's endpoint, flagged as Estimated in the response.
type GetETAQueryHandler struct {
	db          *gorm.DB
	pings       ports.PingRepository
	adapters    ports.AdapterRegistry
	orderSource ports.OrderSource
	estimator   services.ArrivalEstimator
}

// NewGetETAQueryHandler creates a handler for ETA queries.
func NewGetETAQueryHandler(
	db *gorm.DB,
	pings ports.PingRepository,
	adapters ports.AdapterRegistry,
	orderSource ports.OrderSource,
	estimator services.ArrivalEstimator,
) GetETAQueryHandler {
	return GetETAQueryHandler{
		db:          db,
		pings:       pings,
		adapters:    adapters,
		orderSource: orderSource,
		estimator:   estimator,
	}
}

// Handle executes the query. Returns errs.ErrObjectNotFound only when the
// order has no active assignment; a courier without a known position yet
// answers with a nil ETA.
func (h GetETAQueryHandler) Handle(ctx context.Context, query GetETAQuery) (GetETAQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetETAQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT id, provider, external_id
		FROM assignments
		WHERE order_id = ?
		  AND status NOT IN ('cancelled', 'failed')
		ORDER BY requested_at DESC
		LIMIT 1
	`, query.OrderID().String()).Row()

	var (
		id         uuid.UUID
		provider   string
		externalID sql.NullString
	)

	err := row.Scan(&id, &provider, &externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return GetETAQueryResponse{},
			errs.NewObjectNotFoundError("active assignment", query.OrderID().String())
	}
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	assignmentID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	parsedProvider, err := assignment.ProviderFromString(provider)
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	if parsedProvider.IsExternal() {
		return h.externalETA(ctx, query, assignmentID, parsedProvider, externalID)
	}
	return h.internalETA(ctx, query, assignmentID)
}

// externalETA asks the provider for its routed estimate.
func (h GetETAQueryHandler) externalETA(
	ctx context.Context,
	query GetETAQuery,
	assignmentID kernel.UUID,
	provider assignment.Provider,
	externalID sql.NullString,
) (GetETAQueryResponse, error) {
	if !externalID.Valid {
		return GetETAQueryResponse{},
			errs.NewObjectNotFoundError("external job", assignmentID.String())
	}

	adapter, err := h.adapters.Resolve(provider)
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	eta, err := adapter.GetETA(ctx, externalID.String, query.Kind())
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	return GetETAQueryResponse{
		AssignmentID: assignmentID,
		Kind:         query.Kind(),
		ETA:          &eta,
		Estimated:    false,
	}, nil
}

// internalETA estimates from the courier's latest ping to the leg endpoint.
func (h GetETAQueryHandler) internalETA(
	ctx context.Context,
	query GetETAQuery,
	assignmentID kernel.UUID,
) (GetETAQueryResponse, error) {
	latest, err := h.pings.GetLatest(ctx, assignmentID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		// No reported position yet means no estimate, not a failure.
		return GetETAQueryResponse{
			AssignmentID: assignmentID,
			Kind:         query.Kind(),
			Estimated:    true,
		}, nil
	}
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	order, err := h.orderSource.GetConfirmed(ctx, query.OrderID())
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	target := order.DropoffPoint
	if query.Kind() == ports.ETAToPickup {
		target = order.PickupPoint
	}

	eta, err := h.estimator.Estimate(latest.Position(), target)
	if err != nil {
		return GetETAQueryResponse{}, err
	}

	return GetETAQueryResponse{
		AssignmentID: assignmentID,
		Kind:         query.Kind(),
		ETA:          &eta,
		Estimated:    true,
	}, nil
}
