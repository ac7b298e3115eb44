package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCurrentLocationQueryHandler resolves an order's active assignment and
// returns its latest location ping.
//
// "Latest" is decided by the device timestamp with insertion order breaking
// ties, so out-of-order ingestion cannot make the reported position flap.
type GetCurrentLocationQueryHandler struct {
	db    *gorm.DB
	pings ports.PingRepository
}

// NewGetCurrentLocationQueryHandler creates a handler for location queries.
func NewGetCurrentLocationQueryHandler(
	db *gorm.DB, pings ports.PingRepository,
) GetCurrentLocationQueryHandler {
	return GetCurrentLocationQueryHandler{db: db, pings: pings}
}

// Handle executes the query. Returns errs.ErrObjectNotFound only when the
// order has no active assignment; an assignment that has not reported any
// ping yet answers with a nil position.
func (h GetCurrentLocationQueryHandler) Handle(
	ctx context.Context,
	query GetCurrentLocationQuery,
) (GetCurrentLocationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCurrentLocationQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT id, status
		FROM assignments
		WHERE order_id = ?
		  AND status NOT IN ('cancelled', 'failed')
		ORDER BY requested_at DESC
		LIMIT 1
	`, query.OrderID().String()).Row()

	var (
		id     uuid.UUID
		status string
	)

	err := row.Scan(&id, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return GetCurrentLocationQueryResponse{},
			errs.NewObjectNotFoundError("active assignment", query.OrderID().String())
	}
	if err != nil {
		return GetCurrentLocationQueryResponse{}, err
	}

	assignmentID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetCurrentLocationQueryResponse{}, err
	}

	latest, err := h.pings.GetLatest(ctx, assignmentID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		// Assigned but not a single report yet: the position is simply
		// unknown, which is not an error.
		return GetCurrentLocationQueryResponse{
			AssignmentID: assignmentID,
			Status:       status,
		}, nil
	}
	if err != nil {
		return GetCurrentLocationQueryResponse{}, err
	}

	position := latest.Position()
	return GetCurrentLocationQueryResponse{
		AssignmentID:   assignmentID,
		Status:         status,
		Position:       &position,
		RecordedAt:     latest.RecordedAt(),
		AccuracyMeters: latest.AccuracyMeters(),
	}, nil
}
