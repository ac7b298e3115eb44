package commands

import (
	"fmt"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// ensureOwnedBy rejects driver-reported milestones on assignments the driver
// does not own. External assignments carry no driver and always fail here:
// their milestones arrive via webhooks and polls, never from driver clients.
func ensureOwnedBy(aggregate *assignment.Assignment, driverID kernel.UUID) error {
	owner := aggregate.DriverID()
	if owner == nil || !owner.IsEqual(driverID) {
		return fmt.Errorf("%w: driver %s is not assigned to %s",
			assignment.ErrNotAuthorized, driverID, aggregate.ID())
	}
	return nil
}
