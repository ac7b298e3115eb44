package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

// publishAssignmentEvent emits the lifecycle event best-effort after commit.
// A lost event never fails the command; consumers reconcile via queries.
func publishAssignmentEvent(
	ctx context.Context,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	aggregate *assignment.Assignment,
) {
	event := ports.AssignmentEvent{
		AssignmentID: aggregate.ID(),
		OrderID:      aggregate.OrderID(),
		Provider:     aggregate.Provider(),
		Status:       aggregate.Status(),
		OccurredAt:   time.Now().UTC(),
	}
	if err := publisher.PublishAssignmentChanged(ctx, event); err != nil {
		logger.Warn("failed to publish assignment event",
			"assignment_id", aggregate.ID().String(),
			"status", aggregate.Status().String(),
			"error", err)
	}
}
