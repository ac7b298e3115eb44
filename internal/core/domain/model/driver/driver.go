package driver

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// minRating and maxRating bound the driver rating scale.
	minRating = 0
	maxRating = 5
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
	// ErrDriverIsNotAvailable is returned when engaging a driver who is not free.
	ErrDriverIsNotAvailable = errors.New("driver is not available")
)

// Driver represents an in-house delivery driver. It is an aggregate root that
// manages driver identity, availability, and last reported position.
//
// Business rules:
//   - Driver must have a valid UUID, non-empty name, and a rating in [0, 5]
//   - Only an Available driver can be engaged for an assignment
//   - The position is the last self-reported one; it may be stale and tracking
//     queries must treat it as advisory, not authoritative
type Driver struct {
	// id uniquely identifies the driver
	id kernel.UUID

	// name is the human-readable name of the driver
	name string

	// rating is the aggregate customer rating in [0, 5]
	rating float64

	// availability is the driver's readiness for new assignments
	availability Availability

	// location is the last reported position, nil until the first report
	location *kernel.GeoPoint

	// guard ensures the driver was properly constructed
	guard guard.ConstructorGuard
}

// NewDriver creates a new Driver with the specified parameters. A fresh
// driver starts Offline with no reported position; the shift workflow flips
// availability and the first ping populates the location.
func NewDriver(id kernel.UUID, name string, rating float64) (*Driver, error) {
	driver := &Driver{
		availability: Offline,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		driver.setID(id),
		driver.setName(name),
		driver.setRating(rating),
	); err != nil {
		return nil, err
	}

	return driver, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage,
// preserving its availability and last reported position.
func RestoreDriver(
	id kernel.UUID,
	name string,
	rating float64,
	availability Availability,
	location *kernel.GeoPoint,
) (*Driver, error) {
	driver := &Driver{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		driver.setID(id),
		driver.setName(name),
		driver.setRating(rating),
		availability.Validate(),
	); err != nil {
		return nil, err
	}

	driver.availability = availability
	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
		loc := *location
		driver.location = &loc
	}

	return driver, nil
}

// Validate checks if the Driver was properly constructed.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the unique identifier of the driver.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the human-readable name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Rating returns the aggregate customer rating in [0, 5].
func (d *Driver) Rating() float64 {
	return d.rating
}

// Availability returns the driver's readiness for new assignments.
func (d *Driver) Availability() Availability {
	return d.availability
}

// Location returns the last reported position, or nil if the driver has never
// reported one.
func (d *Driver) Location() *kernel.GeoPoint {
	if d.location == nil {
		return nil
	}
	loc := *d.location
	return &loc
}

// IsAvailable reports whether the driver can be engaged for a new assignment.
func (d *Driver) IsAvailable() bool {
	return d.availability == Available
}

// Engage marks an Available driver as OnDelivery. Selection must never engage
// a driver twice; a non-available driver fails with ErrDriverIsNotAvailable.
func (d *Driver) Engage() error {
	if d.availability != Available {
		return ErrDriverIsNotAvailable
	}
	d.availability = OnDelivery
	return nil
}

// Release returns an OnDelivery driver to the Available pool. Called when the
// assignment reaches a terminal state. Releasing an Offline driver is a no-op:
// the driver ended the shift mid-delivery and stays off shift.
func (d *Driver) Release() {
	if d.availability == OnDelivery {
		d.availability = Available
	}
}

// GoOnline marks the driver as on shift and ready for assignments.
func (d *Driver) GoOnline() {
	if d.availability == Offline {
		d.availability = Available
	}
}

// GoOffline ends the driver's shift. An OnDelivery driver keeps the active
// assignment; Release will then leave them Offline.
func (d *Driver) GoOffline() {
	if d.availability == Available {
		d.availability = Offline
	}
}

// ReportLocation records the driver's self-reported position.
func (d *Driver) ReportLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = &location
	return nil
}

// setID validates and sets the driver's unique identifier.
func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

// setName validates and sets the driver's name.
func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

// setRating validates and sets the driver's rating.
func (d *Driver) setRating(rating float64) error {
	if rating < minRating || rating > maxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, minRating, maxRating)
	}
	d.rating = rating
	return nil
}
