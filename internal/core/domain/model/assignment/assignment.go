package assignment

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrAssignmentIsNotConstructed is returned when an Assignment instance was
	// not created through NewAssignment or RestoreAssignment.
	ErrAssignmentIsNotConstructed = errors.New(
		"Assignment must be created via NewAssignment or RestoreAssignment constructor")

	// ErrNotAuthorized is returned when the acting driver does not own the
	// assignment. Maps to HTTP 403 at the transport boundary.
	ErrNotAuthorized = errors.New("assignment does not belong to the caller")

	// ErrDriverIsRequired is returned when creating an internal assignment
	// without a designated driver.
	ErrDriverIsRequired = errs.NewValueIsRequiredError("driver is required for internal assignments")

	// ErrDriverNotAllowed is returned when creating an external assignment
	// with a driver attached; external couriers are matched remotely.
	ErrDriverNotAllowed = errs.NewValueIsInvalidError("external assignments cannot carry a driver at creation")

	// ErrExternalJobAlreadyAttached is returned when attaching a remote job id
	// to an assignment that already has one. Job creation retries must check
	// for an existing external id instead of creating a second remote job.
	ErrExternalJobAlreadyAttached = errs.NewValueIsInvalidError("external job is already attached")

	// ErrProofAlreadyAttached is returned when attaching proof of delivery to
	// an assignment that already carries one.
	ErrProofAlreadyAttached = errs.NewValueIsInvalidError("proof of delivery is already attached")
)

// Assignment is the aggregate root binding one order to one delivery agent
// for the duration of its fulfillment. It owns the delivery lifecycle: legal
// status transitions, milestone timestamps (each set exactly once, only
// forward in time), and the proof-of-delivery artifact.
//
// Invariants:
//   - provider is fixed at creation and never changes
//   - internal assignments always carry a driver; external ones gain an
//     external job id once the remote job is created
//   - acceptedAt/pickedUpAt/deliveredAt are populated in the order implied by
//     status; deliveredAt is set if and only if status is Delivered
//   - a terminal assignment is immutable except for late external proof
//
// The authoritative status lives in storage: the aggregate enforces the
// transition graph, and the repository enforces a conditional write on the
// version field so concurrent transitions resolve to exactly one winner.
type Assignment struct {
	// id is the unique identifier for the assignment
	id kernel.UUID

	// orderID references the fulfillment unit; one active assignment per order
	orderID kernel.UUID

	// provider is the fulfillment mechanism, fixed at creation
	provider Provider

	// driverID is the designated internal driver (nil for external providers
	// until reporting purposes require none at all)
	driverID *kernel.UUID

	// externalID is the remote job id for external providers
	externalID *string

	// status is the current lifecycle state
	status Status

	// milestone timestamps, each set exactly once
	requestedAt time.Time
	acceptedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	// proof is populated on delivery (internal) or by a later poll (external)
	proof *Proof

	// version is the optimistic concurrency token checked by the repository
	version int64

	// guard ensures the assignment was properly constructed
	guard guard.ConstructorGuard
}

// NewAssignment creates a Pending assignment for a confirmed order.
//
// Internal assignments require a designated driver; external assignments must
// not carry one, since the courier is matched by the remote system. The
// requested timestamp anchors the monotonic milestone sequence.
func NewAssignment(
	id kernel.UUID,
	orderID kernel.UUID,
	provider Provider,
	driverID *kernel.UUID,
	requestedAt time.Time,
) (*Assignment, error) {
	a := &Assignment{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setOrderID(orderID),
		a.setProvider(provider),
		a.setRequestedAt(requestedAt),
	); err != nil {
		return nil, err
	}

	if provider.IsExternal() {
		if driverID != nil {
			return nil, ErrDriverNotAllowed
		}
	} else {
		if driverID == nil {
			return nil, ErrDriverIsRequired
		}
		if err := a.setDriverID(*driverID); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// RestoreAssignment reconstructs an Assignment aggregate from persistent
// storage, preserving its operational state including the version token.
// Unlike NewAssignment it accepts any valid status and milestone combination;
// the storage layer is trusted to hold only states the aggregate produced.
func RestoreAssignment(
	id kernel.UUID,
	orderID kernel.UUID,
	provider Provider,
	driverID *kernel.UUID,
	externalID *string,
	status Status,
	requestedAt time.Time,
	acceptedAt, pickedUpAt, deliveredAt *time.Time,
	proof *Proof,
	version int64,
) (*Assignment, error) {
	a := &Assignment{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setOrderID(orderID),
		a.setProvider(provider),
		a.setRequestedAt(requestedAt),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if driverID != nil {
		if err := a.setDriverID(*driverID); err != nil {
			return nil, err
		}
	}
	if externalID != nil {
		if err := a.setExternalID(*externalID); err != nil {
			return nil, err
		}
	}
	if proof != nil {
		if err := proof.Validate(); err != nil {
			return nil, err
		}
		proofCopy := *proof
		a.proof = &proofCopy
	}

	a.status = status
	a.acceptedAt = copyTime(acceptedAt)
	a.pickedUpAt = copyTime(pickedUpAt)
	a.deliveredAt = copyTime(deliveredAt)
	a.version = version

	return a, nil
}

// Validate ensures the Assignment was created through a constructor.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// IsEqual compares two assignments by their unique identifiers.
func (a *Assignment) IsEqual(other *Assignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the assignment's unique identifier.
func (a *Assignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the id of the order being fulfilled.
func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// Provider returns the fulfillment mechanism.
func (a *Assignment) Provider() Provider {
	return a.provider
}

// DriverID returns the designated internal driver's id, or nil.
func (a *Assignment) DriverID() *kernel.UUID {
	if a.driverID == nil {
		return nil
	}
	id := *a.driverID
	return &id
}

// ExternalID returns the remote job id for external providers, or nil when no
// remote job exists yet (or the provider is internal).
func (a *Assignment) ExternalID() *string {
	if a.externalID == nil {
		return nil
	}
	id := *a.externalID
	return &id
}

// Status returns the current lifecycle state.
func (a *Assignment) Status() Status {
	return a.status
}

// RequestedAt returns the creation timestamp.
func (a *Assignment) RequestedAt() time.Time {
	return a.requestedAt
}

// AcceptedAt returns the acceptance timestamp, or nil.
func (a *Assignment) AcceptedAt() *time.Time {
	return copyTime(a.acceptedAt)
}

// PickedUpAt returns the actual pickup timestamp, or nil.
func (a *Assignment) PickedUpAt() *time.Time {
	return copyTime(a.pickedUpAt)
}

// DeliveredAt returns the actual delivery timestamp, or nil.
func (a *Assignment) DeliveredAt() *time.Time {
	return copyTime(a.deliveredAt)
}

// Proof returns the proof-of-delivery artifact, or nil until it is available.
// Callers polling before completion receive nil, never an error.
func (a *Assignment) Proof() *Proof {
	if a.proof == nil {
		return nil
	}
	proofCopy := *a.proof
	return &proofCopy
}

// Version returns the optimistic concurrency token.
func (a *Assignment) Version() int64 {
	return a.version
}

// AttachExternalJob records the remote job id obtained from the external
// provider. Set-once: a retry of job creation must check ExternalID first so
// no second remote job is ever created for the same assignment.
func (a *Assignment) AttachExternalJob(externalID string) error {
	if !a.provider.IsExternal() {
		return errs.NewValueIsInvalidError("external job cannot be attached to an internal assignment")
	}
	if a.externalID != nil {
		return ErrExternalJobAlreadyAttached
	}
	return a.setExternalID(externalID)
}

// Accept performs the pending -> accepted transition for an internal driver
// claiming the assignment. The actor must be the designated driver; anyone
// else gets ErrNotAuthorized and the assignment is left untouched. A repeat
// accept fails with ErrInvalidTransition and leaves acceptedAt unchanged.
func (a *Assignment) Accept(actor kernel.UUID, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if a.driverID == nil || !a.driverID.IsEqual(actor) {
		return fmt.Errorf("%w: driver %s is not assigned to %s", ErrNotAuthorized, actor, a.id)
	}

	newStatus, err := a.status.Accept()
	if err != nil {
		return err
	}
	if err = a.ensureForward(at, a.requestedAt); err != nil {
		return err
	}

	a.status = newStatus
	a.acceptedAt = &at
	return nil
}

// ConfirmCourierMatch performs the pending -> accepted transition for an
// external assignment whose remote provider matched a courier. There is no
// ownership guard: the provider adapter vouches for the remote job owner.
func (a *Assignment) ConfirmCourierMatch(at time.Time) error {
	if !a.provider.IsExternal() {
		return errs.NewValueIsInvalidError("courier match applies only to external assignments")
	}

	newStatus, err := a.status.Accept()
	if err != nil {
		return err
	}
	if err = a.ensureForward(at, a.requestedAt); err != nil {
		return err
	}

	a.status = newStatus
	a.acceptedAt = &at
	return nil
}

// ConfirmPickup performs the accepted -> picked_up transition and records the
// actual pickup time exactly once. Repeat confirmations are rejected with
// ErrInvalidTransition rather than overwriting the timestamp.
func (a *Assignment) ConfirmPickup(at time.Time) error {
	newStatus, err := a.status.Pickup()
	if err != nil {
		return err
	}
	if err = a.ensureForward(at, *a.acceptedAt); err != nil {
		return err
	}

	a.status = newStatus
	a.pickedUpAt = &at
	return nil
}

// CompleteDelivery performs the picked_up -> delivered transition.
//
// Internal assignments must supply proof (the driver client submits it with
// the handoff). External assignments may pass nil: the status flips on the
// provider's webhook or poll, and proof is attached later by AttachProof when
// the remote system produces it. An assignment may therefore legitimately end
// delivered with no proof if the provider never resolves the artifact.
func (a *Assignment) CompleteDelivery(proof *Proof, at time.Time) error {
	newStatus, err := a.status.Deliver()
	if err != nil {
		return err
	}
	if err = a.ensureForward(at, *a.pickedUpAt); err != nil {
		return err
	}

	if proof == nil {
		if !a.provider.IsExternal() {
			return ErrProofArtifactIsRequired
		}
	} else {
		if err = proof.Validate(); err != nil {
			return err
		}
		proofCopy := *proof
		a.proof = &proofCopy
	}

	a.status = newStatus
	a.deliveredAt = &at
	return nil
}

// AttachProof records a late-arriving proof-of-delivery artifact on a
// delivered external assignment. Set-once; polling after attachment is a
// caller bug surfaced as ErrProofAlreadyAttached.
func (a *Assignment) AttachProof(proof Proof) error {
	if err := proof.Validate(); err != nil {
		return err
	}
	if a.status != Delivered {
		return fmt.Errorf("%w: cannot attach proof in %s", ErrInvalidTransition, a.status)
	}
	if a.proof != nil {
		return ErrProofAlreadyAttached
	}

	a.proof = &proof
	return nil
}

// Cancel performs the transition to the terminal cancelled state from any
// non-terminal state. There is no reverse transition; a cancelled assignment
// may only be superseded by a brand new one for the same order.
func (a *Assignment) Cancel() error {
	newStatus, err := a.status.Cancel()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// Fail performs the transition to the terminal failed state, reserved for
// adapter-reported unrecoverable errors (remote job void, retries exhausted).
func (a *Assignment) Fail() error {
	newStatus, err := a.status.Fail()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// ensureForward rejects milestone timestamps that move backwards relative to
// the previous milestone. Clock skew between reporting devices must not
// produce a delivery that predates its pickup.
func (a *Assignment) ensureForward(at time.Time, previous time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	if at.Before(previous) {
		return errs.NewValueIsInvalidErrorWithCause("timestamp",
			fmt.Errorf("%s is before previous milestone %s", at, previous))
	}
	return nil
}

// setID validates and sets the assignment's unique identifier.
func (a *Assignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

// setOrderID validates and sets the order reference.
func (a *Assignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	a.orderID = orderID
	return nil
}

// setProvider validates and sets the provider.
func (a *Assignment) setProvider(provider Provider) error {
	if err := provider.Validate(); err != nil {
		return err
	}
	a.provider = provider
	return nil
}

// setDriverID validates and sets the designated driver.
func (a *Assignment) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	a.driverID = &driverID
	return nil
}

// setExternalID validates and sets the remote job id.
func (a *Assignment) setExternalID(externalID string) error {
	if externalID == "" {
		return errs.NewValueIsRequiredError("external job id")
	}
	a.externalID = &externalID
	return nil
}

// setRequestedAt validates and sets the creation timestamp.
func (a *Assignment) setRequestedAt(requestedAt time.Time) error {
	if requestedAt.IsZero() {
		return errs.NewValueIsRequiredError("requested at")
	}
	a.requestedAt = requestedAt
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
