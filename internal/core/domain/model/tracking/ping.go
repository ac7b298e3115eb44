package tracking

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPingIsNotConstructed is returned when using an improperly initialized Ping.
var ErrPingIsNotConstructed = errors.New("Ping must be created via NewPing constructor")

// Ping is an immutable location report tied to an assignment. Pings form an
// append-only trail: they are never updated or deleted, and the current
// location of an assignment is simply the ping with the greatest device
// timestamp. Out-of-order arrival is expected (devices buffer offline), so
// "latest" is decided by the device timestamp, not by insertion order.
type Ping struct { //nolint:recvcheck //using for validation
	// id distinguishes pings with identical timestamps
	id kernel.UUID

	// assignmentID is the assignment this report belongs to
	assignmentID kernel.UUID

	// position is the reported coordinates
	position kernel.GeoPoint

	// recordedAt is the device-side capture time
	recordedAt time.Time

	// accuracyMeters is the reported GPS accuracy radius, 0 when unknown
	accuracyMeters float64

	// metadata carries optional device extras (speed, heading, battery)
	metadata map[string]string

	// guard ensures the ping was properly constructed
	guard guard.ConstructorGuard
}

// NewPing creates a validated location report.
// accuracyMeters may be 0 when the device does not report accuracy, and
// metadata may be nil.
func NewPing(
	id kernel.UUID,
	assignmentID kernel.UUID,
	position kernel.GeoPoint,
	recordedAt time.Time,
	accuracyMeters float64,
	metadata map[string]string,
) (Ping, error) {
	p := Ping{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setAssignmentID(assignmentID),
		p.setPosition(position),
		p.setRecordedAt(recordedAt),
		p.setAccuracyMeters(accuracyMeters),
	); err != nil {
		return Ping{}, err
	}

	p.setMetadata(metadata)

	return p, nil
}

// Validate checks that the Ping was created through NewPing.
func (p Ping) Validate() error {
	return p.guard.Validate(ErrPingIsNotConstructed)
}

// ID returns the ping's unique identifier.
func (p Ping) ID() kernel.UUID {
	return p.id
}

// AssignmentID returns the id of the assignment this report belongs to.
func (p Ping) AssignmentID() kernel.UUID {
	return p.assignmentID
}

// Position returns the reported coordinates.
func (p Ping) Position() kernel.GeoPoint {
	return p.position
}

// RecordedAt returns the device-side capture time.
func (p Ping) RecordedAt() time.Time {
	return p.recordedAt
}

// AccuracyMeters returns the reported GPS accuracy radius, 0 when unknown.
func (p Ping) AccuracyMeters() float64 {
	return p.accuracyMeters
}

// Metadata returns the optional device extras, nil when none were reported.
func (p Ping) Metadata() map[string]string {
	if p.metadata == nil {
		return nil
	}
	copied := make(map[string]string, len(p.metadata))
	for k, v := range p.metadata {
		copied[k] = v
	}
	return copied
}

// IsNewerThan reports whether this ping supersedes other as the current
// location: greater device timestamp wins. The id breaks exact ties so the
// in-memory ordering stays total; the store resolves such ties by insertion
// order, which the read side relies on.
func (p Ping) IsNewerThan(other Ping) bool {
	if !p.recordedAt.Equal(other.recordedAt) {
		return p.recordedAt.After(other.recordedAt)
	}
	return p.id.String() > other.id.String()
}

// setID validates and sets the ping's unique identifier.
func (p *Ping) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

// setAssignmentID validates and sets the assignment reference.
func (p *Ping) setAssignmentID(assignmentID kernel.UUID) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}
	p.assignmentID = assignmentID
	return nil
}

// setPosition validates and sets the reported coordinates.
func (p *Ping) setPosition(position kernel.GeoPoint) error {
	if err := position.Validate(); err != nil {
		return err
	}
	p.position = position
	return nil
}

// setRecordedAt validates and sets the capture time.
func (p *Ping) setRecordedAt(recordedAt time.Time) error {
	if recordedAt.IsZero() {
		return errs.NewValueIsRequiredError("recorded at")
	}
	p.recordedAt = recordedAt
	return nil
}

// setAccuracyMeters validates and sets the accuracy radius.
func (p *Ping) setAccuracyMeters(accuracyMeters float64) error {
	if accuracyMeters < 0 {
		return errs.NewValueIsInvalidError("accuracy cannot be negative")
	}
	p.accuracyMeters = accuracyMeters
	return nil
}

// setMetadata copies and sets the optional device extras.
func (p *Ping) setMetadata(metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	p.metadata = make(map[string]string, len(metadata))
	for k, v := range metadata {
		p.metadata[k] = v
	}
}
