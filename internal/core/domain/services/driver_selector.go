package services

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// Scoring weights for driver selection. The proximity term starts at 100 and
// loses 10 points per kilometer to the pickup, floored at zero; the rating
// term adds 10 points per rating star. A top-rated driver 5 km away therefore
// scores the same as an unrated driver at the pickup door.
const (
	proximityBaseScore    = 100.0
	proximityPenaltyPerKm = 10.0
	ratingWeight          = 10.0
)

// ErrNoDriverAvailable is returned when no driver in the candidate pool is
// available for the assignment. The caller decides whether to fall back to an
// external provider or surface the failure.
var ErrNoDriverAvailable = errors.New("no driver available")

// DriverSelector is a domain service that picks the best available driver for
// a pickup location.
//
// Business rules:
//   - Only Available drivers are considered
//   - Drivers with no reported position are skipped; proximity cannot be
//     judged for them
//   - The highest combined proximity/rating score wins; ties keep the first
//     candidate encountered so selection is deterministic for a given pool
type DriverSelector struct{}

// NewDriverSelector creates a new DriverSelector instance.
func NewDriverSelector() DriverSelector {
	return DriverSelector{}
}

// Select evaluates the candidate pool and returns the driver with the highest
// score for the given pickup location. Returns ErrNoDriverAvailable when no
// candidate is available with a known position.
func (s DriverSelector) Select(pickup kernel.GeoPoint, candidates []*driver.Driver) (*driver.Driver, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	var (
		best      *driver.Driver
		bestScore float64
	)

	for _, d := range candidates {
		if err := d.Validate(); err != nil {
			return nil, err
		}

		if !d.IsAvailable() || d.Location() == nil {
			continue
		}

		score, err := s.Score(pickup, d)
		if err != nil {
			return nil, err
		}

		if best == nil || score > bestScore {
			best = d
			bestScore = score
		}
	}

	if best == nil {
		return nil, ErrNoDriverAvailable
	}

	return best, nil
}

// Score computes the selection score for a single driver:
//
//	max(0, 100 - 10*distanceKm) + 10*rating
//
// The driver must have a reported position.
func (s DriverSelector) Score(pickup kernel.GeoPoint, d *driver.Driver) (float64, error) {
	location := d.Location()
	if location == nil {
		return 0, driver.ErrDriverIsNotAvailable
	}

	meters, err := location.DistanceMeters(pickup)
	if err != nil {
		return 0, err
	}

	proximity := proximityBaseScore - proximityPenaltyPerKm*(meters/1000)
	if proximity < 0 {
		proximity = 0
	}

	return proximity + ratingWeight*d.Rating(), nil
}
