package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetProofOfDeliveryQueryHandler retrieves the proof-of-delivery artifact for
// an order's most recent assignment, delivered or not: callers polling before
// completion get HasProof false rather than an error.
type GetProofOfDeliveryQueryHandler struct {
	db *gorm.DB
}

// NewGetProofOfDeliveryQueryHandler creates a handler for proof queries.
func NewGetProofOfDeliveryQueryHandler(db *gorm.DB) GetProofOfDeliveryQueryHandler {
	return GetProofOfDeliveryQueryHandler{db: db}
}

// Handle executes the query. Returns errs.ErrObjectNotFound only when the
// order has never had an assignment.
func (h GetProofOfDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetProofOfDeliveryQuery,
) (GetProofOfDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetProofOfDeliveryQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			delivered_at,
			proof_photo_url,
			proof_signature_url,
			proof_notes
		FROM assignments
		WHERE order_id = ?
		ORDER BY requested_at DESC
		LIMIT 1
	`, query.OrderID().String()).Row()

	var (
		id           uuid.UUID
		status       string
		deliveredAt  sql.NullTime
		photoURL     sql.NullString
		signatureURL sql.NullString
		notes        sql.NullString
	)

	err := row.Scan(&id, &status, &deliveredAt, &photoURL, &signatureURL, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return GetProofOfDeliveryQueryResponse{},
			errs.NewObjectNotFoundError("assignment for order", query.OrderID().String())
	}
	if err != nil {
		return GetProofOfDeliveryQueryResponse{}, err
	}

	assignmentID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetProofOfDeliveryQueryResponse{}, err
	}

	response := GetProofOfDeliveryQueryResponse{
		AssignmentID: assignmentID,
		Status:       status,
		HasProof:     photoURL.Valid || signatureURL.Valid,
		PhotoURL:     photoURL.String,
		SignatureURL: signatureURL.String,
		Notes:        notes.String,
	}
	if deliveredAt.Valid {
		response.DeliveredAt = &deliveredAt.Time
	}

	return response, nil
}
