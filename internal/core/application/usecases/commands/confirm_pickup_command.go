package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmPickupCommandIsNotConstructed = errors.New(
	"ConfirmPickupCommand must be created via NewConfirmPickupCommand constructor",
)

// ConfirmPickupCommand records the driver collecting the order from the chef.
type ConfirmPickupCommand struct {
	assignmentID kernel.UUID
	driverID     kernel.UUID

	guard guard.ConstructorGuard
}

// NewConfirmPickupCommand creates a validated command.
func NewConfirmPickupCommand(assignmentID, driverID kernel.UUID) (ConfirmPickupCommand, error) {
	if err := assignmentID.Validate(); err != nil {
		return ConfirmPickupCommand{}, err
	}
	if err := driverID.Validate(); err != nil {
		return ConfirmPickupCommand{}, err
	}

	return ConfirmPickupCommand{
		assignmentID: assignmentID,
		driverID:     driverID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// AssignmentID returns the assignment being picked up.
func (c *ConfirmPickupCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// DriverID returns the reporting driver.
func (c *ConfirmPickupCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Validate ensures the command was created through the constructor.
func (c *ConfirmPickupCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPickupCommandIsNotConstructed)
}
