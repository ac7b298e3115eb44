// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, provider adapters, the
// order source, and the event publisher. These interfaces enable dependency
// inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for assignment
// aggregates.
//
// Update is a conditional write on the aggregate's version: it succeeds only
// when the stored version still matches the one the aggregate was loaded
// with, and bumps it by one. Concurrent transitions on the same assignment
// therefore resolve to exactly one winner; the loser receives
// errs.ErrVersionIsInvalid and must not blindly retry.
type AssignmentRepository interface {
	// Add persists a new assignment aggregate to storage.
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	// Update persists changes to an existing assignment with a conditional
	// write on the version field. Returns errs.ErrVersionIsInvalid when a
	// concurrent writer got there first.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	// Get retrieves an assignment aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// GetActiveByOrderID retrieves the order's current assignment: the most
	// recently requested one that is not cancelled or failed. Returns
	// errs.ErrObjectNotFound when the order has no active assignment.
	GetActiveByOrderID(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)

	// GetByExternalID retrieves the assignment carrying the given remote job
	// id. Used to correlate provider webhooks and poll results.
	GetByExternalID(ctx context.Context, externalID string) (*assignment.Assignment, error)

	// GetInflightExternal retrieves all external assignments in a
	// non-terminal state. Used by the sync job to poll providers for
	// progress the webhooks may have missed.
	GetInflightExternal(ctx context.Context) ([]*assignment.Assignment, error)
}
