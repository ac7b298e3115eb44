// Package ordersource reads the orders mirror table maintained by the order
// management system. Dispatch only consumes it; the table is written by the
// upstream sync and never mutated here.
package ordersource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const confirmedStatus = "confirmed"

// OrderDTO represents a row of the orders mirror table. Pickup and dropoff
// arrive from upstream as JSON payloads and are stored as-is.
type OrderDTO struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Status  string         `gorm:"type:varchar(32);index"`
	Pickup  datatypes.JSON `gorm:"type:json"`
	Dropoff datatypes.JSON `gorm:"type:json"`
}

// TableName specifies the database table name for order rows.
func (OrderDTO) TableName() string {
	return "orders"
}

// waypointPayload is the upstream JSON shape of a pickup or dropoff stop.
type waypointPayload struct {
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Contact     string  `json:"contact"`
	PackageNote string  `json:"package_note,omitempty"`
}

// GormOrderSource implements OrderSource over the orders mirror table.
type GormOrderSource struct {
	db *gorm.DB
}

// NewGormOrderSource creates a new GORM order source.
func NewGormOrderSource(db *gorm.DB) *GormOrderSource {
	return &GormOrderSource{db: db}
}

// GetConfirmed retrieves a confirmed order ready for dispatch.
func (s *GormOrderSource) GetConfirmed(
	ctx context.Context, orderID kernel.UUID,
) (ports.OrderSnapshot, error) {
	if err := orderID.Validate(); err != nil {
		return ports.OrderSnapshot{}, err
	}

	var dto OrderDTO
	if err := s.db.WithContext(ctx).First(&dto, "id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.OrderSnapshot{}, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return ports.OrderSnapshot{}, err
	}

	if dto.Status != confirmedStatus {
		return ports.OrderSnapshot{}, errs.NewValueIsInvalidErrorWithCause(
			"order", fmt.Errorf("order %s has status %q, want %q", orderID, dto.Status, confirmedStatus))
	}

	return toSnapshot(dto)
}

// toSnapshot converts an order row to the dispatch-relevant view.
func toSnapshot(dto OrderDTO) (ports.OrderSnapshot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OrderSnapshot{}, err
	}

	var pickup, dropoff waypointPayload
	if err := json.Unmarshal(dto.Pickup, &pickup); err != nil {
		return ports.OrderSnapshot{}, errs.NewValueIsInvalidErrorWithCause("pickup", err)
	}
	if err := json.Unmarshal(dto.Dropoff, &dropoff); err != nil {
		return ports.OrderSnapshot{}, errs.NewValueIsInvalidErrorWithCause("dropoff", err)
	}

	pickupPoint, err := kernel.NewGeoPoint(pickup.Latitude, pickup.Longitude)
	if err != nil {
		return ports.OrderSnapshot{}, errs.NewValueIsInvalidErrorWithCause("pickup", err)
	}

	dropoffPoint, err := kernel.NewGeoPoint(dropoff.Latitude, dropoff.Longitude)
	if err != nil {
		return ports.OrderSnapshot{}, errs.NewValueIsInvalidErrorWithCause("dropoff", err)
	}

	return ports.OrderSnapshot{
		ID:             id,
		Confirmed:      true,
		PickupAddress:  pickup.Address,
		PickupPoint:    pickupPoint,
		PickupContact:  pickup.Contact,
		DropoffAddress: dropoff.Address,
		DropoffPoint:   dropoffPoint,
		DropoffContact: dropoff.Contact,
		PackageNote:    pickup.PackageNote,
	}, nil
}
