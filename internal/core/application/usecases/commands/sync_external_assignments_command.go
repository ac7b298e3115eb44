package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrSyncExternalAssignmentsCommandIsNotConstructed = errors.New(
	"SyncExternalAssignmentsCommand must be created via NewSyncExternalAssignmentsCommand constructor",
)

// SyncExternalAssignmentsCommand triggers a reconciliation poll of every
// in-flight external assignment against its provider. This is the safety net
// behind webhooks: lost callbacks are caught up on the next sync tick.
type SyncExternalAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewSyncExternalAssignmentsCommand creates a new command to trigger the poll.
func NewSyncExternalAssignmentsCommand() SyncExternalAssignmentsCommand {
	return SyncExternalAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *SyncExternalAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrSyncExternalAssignmentsCommandIsNotConstructed)
}
