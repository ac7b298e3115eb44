package assignmentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// proofBackfillWindow bounds how long a delivered assignment without proof
// stays in the sync poll. Providers publish proof artifacts within minutes of
// delivery; after a day they are not coming.
const proofBackfillWindow = 24 * time.Hour

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new assignment to the database.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing assignment with a conditional write on the
// version column. The row is only touched when the stored version still
// matches the version the aggregate was loaded with; the write bumps it by
// one. Zero rows affected means either a concurrent writer won
// (errs.ErrVersionIsInvalid) or the row does not exist.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	loadedVersion := aggregate.Version()
	dto := fromDomain(aggregate)
	dto.Version = loadedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ? AND version = ?", dto.ID, loadedVersion).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&AssignmentDTO{}).
			Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("assignment", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidError("assignment",
			fmt.Errorf("stale version %d for assignment %s", loadedVersion, aggregate.ID()))
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an assignment by ID.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByOrderID retrieves the order's most recent assignment that is
// not cancelled or failed.
func (r *GormAssignmentRepository) GetActiveByOrderID(
	ctx context.Context, orderID kernel.UUID,
) (*assignment.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status NOT IN ?",
			orderID.Bytes(), []string{assignment.Cancelled.String(), assignment.Failed.String()}).
		Order("requested_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("active assignment", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByExternalID retrieves the assignment carrying the given remote job id.
func (r *GormAssignmentRepository) GetByExternalID(
	ctx context.Context, externalID string,
) (*assignment.Assignment, error) {
	if externalID == "" {
		return nil, errs.NewValueIsRequiredError("external job id")
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment by external id", externalID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetInflightExternal retrieves every external assignment the sync poll still
// cares about, oldest first so long-stuck jobs sync before fresh ones:
// non-terminal ones, plus recently delivered ones still waiting for their
// proof artifacts.
func (r *GormAssignmentRepository) GetInflightExternal(
	ctx context.Context,
) ([]*assignment.Assignment, error) {
	backfillCutoff := time.Now().UTC().Add(-proofBackfillWindow)

	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("external_id IS NOT NULL").
		Where(r.db.
			Where("status IN ?", []string{
				assignment.Pending.String(),
				assignment.Accepted.String(),
				assignment.PickedUp.String(),
			}).
			Or("status = ? AND proof_photo_url IS NULL AND proof_signature_url IS NULL AND delivered_at > ?",
				assignment.Delivered.String(), backfillCutoff)).
		Order("requested_at ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, toDomainErr := toDomain(dto)
		if toDomainErr != nil {
			return nil, toDomainErr
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
