// Package pingrepo provides persistence for courier location pings. The ping
// table is append-only; rows are never updated or deleted.
package pingrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PingDTO represents the database structure for location pings. The composite
// index mirrors the latest-ping lookup: per assignment, ordered by device
// timestamp. Seq is a database-assigned sequence; two pings carrying the same
// device timestamp are ordered by insertion, so the later write wins.
type PingDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;uniqueIndex"`
	AssignmentID   uuid.UUID `gorm:"type:uuid;index:idx_pings_latest,priority:1"`
	Latitude       float64
	Longitude      float64
	RecordedAt     time.Time `gorm:"index:idx_pings_latest,priority:2,sort:desc"`
	AccuracyMeters float64
	Metadata       datatypes.JSONType[map[string]string]
}

// TableName specifies the database table name for ping entities.
func (PingDTO) TableName() string {
	return "pings"
}

// fromDomain converts a ping value object to its database representation.
func fromDomain(ping tracking.Ping) PingDTO {
	return PingDTO{
		ID:             ping.ID().Bytes(),
		AssignmentID:   ping.AssignmentID().Bytes(),
		Latitude:       ping.Position().Latitude(),
		Longitude:      ping.Position().Longitude(),
		RecordedAt:     ping.RecordedAt(),
		AccuracyMeters: ping.AccuracyMeters(),
		Metadata:       datatypes.NewJSONType(ping.Metadata()),
	}
}

// toDomain converts a database DTO to a ping value object.
func toDomain(dto PingDTO) (tracking.Ping, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return tracking.Ping{}, err
	}

	assignmentID, err := kernel.UUIDFromBytes(dto.AssignmentID[:])
	if err != nil {
		return tracking.Ping{}, err
	}

	position, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return tracking.Ping{}, err
	}

	return tracking.NewPing(id, assignmentID, position, dto.RecordedAt, dto.AccuracyMeters, dto.Metadata.Data())
}
