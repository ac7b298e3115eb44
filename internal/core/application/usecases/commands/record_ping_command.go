package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/guard"
)

var ErrRecordPingCommandIsNotConstructed = errors.New(
	"RecordPingCommand must be created via NewRecordPingCommand constructor",
)

// RecordPingCommand ingests one courier location report for an assignment.
// The ping id is generated here so the command is self-contained.
type RecordPingCommand struct {
	ping tracking.Ping

	guard guard.ConstructorGuard
}

// NewRecordPingCommand creates a validated command from raw report fields.
func NewRecordPingCommand(
	assignmentID kernel.UUID,
	latitude, longitude float64,
	recordedAt time.Time,
	accuracyMeters float64,
	metadata map[string]string,
) (RecordPingCommand, error) {
	position, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return RecordPingCommand{}, err
	}

	ping, err := tracking.NewPing(kernel.NewUUID(), assignmentID, position, recordedAt, accuracyMeters, metadata)
	if err != nil {
		return RecordPingCommand{}, err
	}

	return RecordPingCommand{
		ping:  ping,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Ping returns the validated location report.
func (c *RecordPingCommand) Ping() tracking.Ping {
	return c.ping
}

// Validate ensures the command was created through the constructor.
func (c *RecordPingCommand) Validate() error {
	return c.guard.Validate(ErrRecordPingCommandIsNotConstructed)
}
