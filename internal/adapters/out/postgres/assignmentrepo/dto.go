// Package assignmentrepo provides data transfer objects and mapping functions
// for assignment persistence. It implements the repository pattern for the
// assignment aggregate, including the conditional version write that resolves
// concurrent lifecycle transitions.
package assignmentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting assignment
// aggregates. Status and provider are stored as their snake_case names so raw
// tracking queries stay readable.
type AssignmentDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID  `gorm:"type:uuid;index"`
	Provider          string     `gorm:"type:varchar(32)"`
	DriverID          *uuid.UUID `gorm:"type:uuid;index"`
	ExternalID        *string    `gorm:"type:varchar(128);uniqueIndex"`
	Status            string     `gorm:"type:varchar(32);index"`
	RequestedAt       time.Time
	AcceptedAt        *time.Time
	PickedUpAt        *time.Time
	DeliveredAt       *time.Time
	ProofPhotoURL     *string
	ProofSignatureURL *string
	ProofNotes        *string
	Version           int64
}

// TableName specifies the database table name for assignment entities.
func (AssignmentDTO) TableName() string {
	return "assignments"
}

// fromDomain converts an assignment aggregate to its database representation.
func fromDomain(aggregate *assignment.Assignment) AssignmentDTO {
	var driverID *uuid.UUID
	if id := aggregate.DriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	dto := AssignmentDTO{
		ID:          aggregate.ID().Bytes(),
		OrderID:     aggregate.OrderID().Bytes(),
		Provider:    aggregate.Provider().String(),
		DriverID:    driverID,
		ExternalID:  aggregate.ExternalID(),
		Status:      aggregate.Status().String(),
		RequestedAt: aggregate.RequestedAt(),
		AcceptedAt:  aggregate.AcceptedAt(),
		PickedUpAt:  aggregate.PickedUpAt(),
		DeliveredAt: aggregate.DeliveredAt(),
		Version:     aggregate.Version(),
	}

	if proof := aggregate.Proof(); proof != nil {
		if photo := proof.PhotoURL(); photo != "" {
			dto.ProofPhotoURL = &photo
		}
		if signature := proof.SignatureURL(); signature != "" {
			dto.ProofSignatureURL = &signature
		}
		if notes := proof.Notes(); notes != "" {
			dto.ProofNotes = &notes
		}
	}

	return dto
}

// toDomain converts a database DTO to an assignment aggregate using
// RestoreAssignment.
func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	provider, err := assignment.ProviderFromString(dto.Provider)
	if err != nil {
		return nil, err
	}

	status, err := assignment.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	var proof *assignment.Proof
	if dto.ProofPhotoURL != nil || dto.ProofSignatureURL != nil {
		p, proofErr := assignment.NewProof(
			stringOrEmpty(dto.ProofPhotoURL),
			stringOrEmpty(dto.ProofSignatureURL),
			stringOrEmpty(dto.ProofNotes),
		)
		if proofErr != nil {
			return nil, proofErr
		}
		proof = &p
	}

	return assignment.RestoreAssignment(
		id,
		orderID,
		provider,
		driverID,
		dto.ExternalID,
		status,
		dto.RequestedAt,
		dto.AcceptedAt,
		dto.PickedUpAt,
		dto.DeliveredAt,
		proof,
		dto.Version,
	)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
