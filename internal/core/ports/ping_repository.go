package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
)

// PingRepository defines the persistence contract for location pings. Pings
// are append-only: there is no update or delete.
type PingRepository interface {
	// Append persists a new location ping.
	Append(ctx context.Context, ping tracking.Ping) error

	// GetLatest retrieves the current-location ping for an assignment: the
	// one with the greatest device timestamp, exact ties broken by insertion
	// order. Returns errs.ErrObjectNotFound when the assignment has no pings
	// yet.
	GetLatest(ctx context.Context, assignmentID kernel.UUID) (tracking.Ping, error)
}
