package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand records the driver handing the order to the
// customer, together with the mandatory proof-of-delivery artifact.
type CompleteDeliveryCommand struct {
	assignmentID kernel.UUID
	driverID     kernel.UUID
	proof        assignment.Proof

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a validated command. Internal drivers
// must submit proof with the handoff, so the proof is constructed here and
// its photo-or-signature rule fails fast before any transaction starts.
func NewCompleteDeliveryCommand(
	assignmentID, driverID kernel.UUID,
	photoURL, signatureURL, notes string,
) (CompleteDeliveryCommand, error) {
	if err := assignmentID.Validate(); err != nil {
		return CompleteDeliveryCommand{}, err
	}
	if err := driverID.Validate(); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	proof, err := assignment.NewProof(photoURL, signatureURL, notes)
	if err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return CompleteDeliveryCommand{
		assignmentID: assignmentID,
		driverID:     driverID,
		proof:        proof,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// AssignmentID returns the assignment being completed.
func (c *CompleteDeliveryCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// DriverID returns the reporting driver.
func (c *CompleteDeliveryCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Proof returns the proof-of-delivery artifact.
func (c *CompleteDeliveryCommand) Proof() assignment.Proof {
	return c.proof
}

// Validate ensures the command was created through the constructor.
func (c *CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}
