package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignOrderCommandIsNotConstructed = errors.New(
	"AssignOrderCommand must be created via NewAssignOrderCommand constructor",
)

// AssignOrderCommand requests the creation of a delivery assignment for a
// confirmed order. The assignment id is generated by the caller so the
// operation is idempotent at the HTTP layer.
//
// Provider may be left as ProviderUnknown to let the dispatch policy decide;
// an explicit provider is an operator override that disables the fallback.
type AssignOrderCommand struct {
	assignmentID kernel.UUID
	orderID      kernel.UUID
	provider     assignment.Provider

	guard guard.ConstructorGuard
}

// NewAssignOrderCommand creates a validated command.
// provider ProviderUnknown means "use the configured dispatch policy".
func NewAssignOrderCommand(
	assignmentID kernel.UUID,
	orderID kernel.UUID,
	provider assignment.Provider,
) (AssignOrderCommand, error) {
	if err := assignmentID.Validate(); err != nil {
		return AssignOrderCommand{}, err
	}
	if err := orderID.Validate(); err != nil {
		return AssignOrderCommand{}, err
	}
	if provider != assignment.ProviderUnknown {
		if err := provider.Validate(); err != nil {
			return AssignOrderCommand{}, err
		}
	}

	return AssignOrderCommand{
		assignmentID: assignmentID,
		orderID:      orderID,
		provider:     provider,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// AssignmentID returns the caller-generated assignment id.
func (c *AssignOrderCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// OrderID returns the order to dispatch.
func (c *AssignOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Provider returns the operator override, or ProviderUnknown for policy default.
func (c *AssignOrderCommand) Provider() assignment.Provider {
	return c.provider
}

// Validate ensures the command was created through the constructor.
func (c *AssignOrderCommand) Validate() error {
	return c.guard.Validate(ErrAssignOrderCommandIsNotConstructed)
}
