package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelAssignmentCommandIsNotConstructed = errors.New(
	"CancelAssignmentCommand must be created via NewCancelAssignmentCommand constructor",
)

// CancelAssignmentCommand stops an in-flight assignment. The reason is
// free-form and forwarded to external providers as the cancellation key.
type CancelAssignmentCommand struct {
	assignmentID kernel.UUID
	reason       string

	guard guard.ConstructorGuard
}

// NewCancelAssignmentCommand creates a validated command.
func NewCancelAssignmentCommand(assignmentID kernel.UUID, reason string) (CancelAssignmentCommand, error) {
	if err := assignmentID.Validate(); err != nil {
		return CancelAssignmentCommand{}, err
	}

	return CancelAssignmentCommand{
		assignmentID: assignmentID,
		reason:       reason,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// AssignmentID returns the assignment being cancelled.
func (c *CancelAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// Reason returns the cancellation reason.
func (c *CancelAssignmentCommand) Reason() string {
	return c.reason
}

// Validate ensures the command was created through the constructor.
func (c *CancelAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAssignmentCommandIsNotConstructed)
}
