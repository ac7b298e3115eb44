package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrApplyExternalEventCommandIsNotConstructed = errors.New(
	"ApplyExternalEventCommand must be created via NewApplyExternalEventCommand constructor",
)

// ApplyExternalEventCommand carries one provider callback: the remote job id,
// the reported lifecycle status, and whatever the provider attached to it
// (courier position, proof of delivery).
type ApplyExternalEventCommand struct {
	externalID string
	status     assignment.Status
	position   *kernel.GeoPoint
	proof      *assignment.Proof
	occurredAt time.Time

	guard guard.ConstructorGuard
}

// NewApplyExternalEventCommand creates a validated command.
// position and proof are optional and may be nil.
func NewApplyExternalEventCommand(
	externalID string,
	status assignment.Status,
	position *kernel.GeoPoint,
	proof *assignment.Proof,
	occurredAt time.Time,
) (ApplyExternalEventCommand, error) {
	if externalID == "" {
		return ApplyExternalEventCommand{}, errs.NewValueIsRequiredError("external job id")
	}
	if err := status.Validate(); err != nil {
		return ApplyExternalEventCommand{}, err
	}
	if occurredAt.IsZero() {
		return ApplyExternalEventCommand{}, errs.NewValueIsRequiredError("occurred at")
	}
	if position != nil {
		if err := position.Validate(); err != nil {
			return ApplyExternalEventCommand{}, err
		}
	}
	if proof != nil {
		if err := proof.Validate(); err != nil {
			return ApplyExternalEventCommand{}, err
		}
	}

	return ApplyExternalEventCommand{
		externalID: externalID,
		status:     status,
		position:   position,
		proof:      proof,
		occurredAt: occurredAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// ExternalID returns the remote job id the event refers to.
func (c *ApplyExternalEventCommand) ExternalID() string {
	return c.externalID
}

// Status returns the provider-reported lifecycle status.
func (c *ApplyExternalEventCommand) Status() assignment.Status {
	return c.status
}

// Position returns the courier position attached to the event, or nil.
func (c *ApplyExternalEventCommand) Position() *kernel.GeoPoint {
	return c.position
}

// Proof returns the proof of delivery attached to the event, or nil.
func (c *ApplyExternalEventCommand) Proof() *assignment.Proof {
	return c.proof
}

// OccurredAt returns the provider-side event time.
func (c *ApplyExternalEventCommand) OccurredAt() time.Time {
	return c.occurredAt
}

// Validate ensures the command was created through the constructor.
func (c *ApplyExternalEventCommand) Validate() error {
	return c.guard.Validate(ErrApplyExternalEventCommandIsNotConstructed)
}
