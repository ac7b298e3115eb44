package pingrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormPingRepository implements PingRepository using GORM.
type GormPingRepository struct {
	db *gorm.DB
}

// NewGormPingRepository creates a new GORM ping repository.
func NewGormPingRepository(db *gorm.DB) *GormPingRepository {
	return &GormPingRepository{db: db}
}

// Append saves a new location ping.
func (r *GormPingRepository) Append(ctx context.Context, ping tracking.Ping) error {
	if err := ping.Validate(); err != nil {
		return err
	}

	dto := fromDomain(ping)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetLatest retrieves the ping with the greatest device timestamp for the
// assignment. Exact timestamp ties are broken by the insertion sequence, so
// the later write wins and out-of-order ingestion cannot change the answer.
func (r *GormPingRepository) GetLatest(
	ctx context.Context, assignmentID kernel.UUID,
) (tracking.Ping, error) {
	if err := assignmentID.Validate(); err != nil {
		return tracking.Ping{}, err
	}

	var dto PingDTO
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID.Bytes()).
		Order("recorded_at DESC, seq DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tracking.Ping{}, errs.NewObjectNotFoundError("ping", assignmentID.String())
		}
		return tracking.Ping{}, err
	}

	return toDomain(dto)
}
