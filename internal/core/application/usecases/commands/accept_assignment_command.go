package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand records a driver claiming their pending assignment.
// Only the designated driver may accept; the transition races with cancel and
// resolves through the conditional write on the assignment version.
type AcceptAssignmentCommand struct {
	assignmentID kernel.UUID
	driverID     kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptAssignmentCommand creates a validated command.
func NewAcceptAssignmentCommand(assignmentID, driverID kernel.UUID) (AcceptAssignmentCommand, error) {
	if err := assignmentID.Validate(); err != nil {
		return AcceptAssignmentCommand{}, err
	}
	if err := driverID.Validate(); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	return AcceptAssignmentCommand{
		assignmentID: assignmentID,
		driverID:     driverID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// AssignmentID returns the assignment being claimed.
func (c *AcceptAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// DriverID returns the claiming driver.
func (c *AcceptAssignmentCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Validate ensures the command was created through the constructor.
func (c *AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}
