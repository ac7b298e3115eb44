package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// AssignmentEvent is the integration event emitted on every assignment status
// change. Downstream consumers (order service, notifications, analytics) key
// on the order id; the status carries the snake_case lifecycle name.
type AssignmentEvent struct {
	AssignmentID kernel.UUID
	OrderID      kernel.UUID
	Provider     assignment.Provider
	Status       assignment.Status
	OccurredAt   time.Time
}

// EventPublisher is the outbound contract for integration events. Publishing
// is best-effort and happens after the transaction commits: a lost event must
// never roll back a state change, and consumers reconcile via queries.
type EventPublisher interface {
	// PublishAssignmentChanged emits an assignment lifecycle event.
	PublishAssignmentChanged(ctx context.Context, event AssignmentEvent) error

	// Close releases the underlying connection.
	Close() error
}
