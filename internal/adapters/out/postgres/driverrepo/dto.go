// Package driverrepo provides persistence for driver aggregates.
package driverrepo

import (
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure for persisting driver
// aggregates. Latitude and longitude are nullable together: a driver who has
// never reported a position has neither.
type DriverDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255)"`
	Rating       float64
	Availability string `gorm:"type:varchar(32);index"`
	Latitude     *float64
	Longitude    *float64
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:           aggregate.ID().Bytes(),
		Name:         aggregate.Name(),
		Rating:       aggregate.Rating(),
		Availability: aggregate.Availability().String(),
	}

	if location := aggregate.Location(); location != nil {
		lat := location.Latitude()
		lng := location.Longitude()
		dto.Latitude = &lat
		dto.Longitude = &lng
	}

	return dto
}

// toDomain converts a database DTO to a driver aggregate using RestoreDriver.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	availability, err := driver.AvailabilityFromString(dto.Availability)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Latitude != nil && dto.Longitude != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Latitude, *dto.Longitude)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return driver.RestoreDriver(id, dto.Name, dto.Rating, availability, location)
}
