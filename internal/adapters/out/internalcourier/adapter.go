// Package internalcourier implements the provider contract for the in-house
// driver pool. Internal fulfillment has no remote system: the job lives
// entirely in the assignment itself, so the adapter only anchors the provider
// in the registry and answers local defaults.
package internalcourier

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Adapter implements ProviderAdapter for internal drivers.
type Adapter struct{}

// NewAdapter creates an internal pool provider adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Provider identifies this adapter as serving the internal driver pool.
func (a *Adapter) Provider() assignment.Provider {
	return assignment.Internal
}

// CreateJob is a local no-op: the assignment id doubles as the job id.
func (a *Adapter) CreateJob(_ context.Context, request ports.JobRequest) (string, error) {
	if err := request.AssignmentID.Validate(); err != nil {
		return "", err
	}
	return request.AssignmentID.String(), nil
}

// GetJob has no remote counterpart for internal fulfillment; the assignment
// itself is the source of truth. Callers reaching this made a routing mistake.
func (a *Adapter) GetJob(_ context.Context, externalID string) (ports.JobSnapshot, error) {
	return ports.JobSnapshot{}, ports.ErrProviderMismatch
}

// GetETA has no routed estimate for internal drivers; tracking queries
// compute it from the latest ping instead.
func (a *Adapter) GetETA(_ context.Context, _ string, _ ports.ETAKind) (time.Duration, error) {
	return 0, ports.ErrProviderMismatch
}

// CancelJob is a local no-op: cancelling an internal assignment releases the
// driver through the command layer, with no remote job to tear down.
func (a *Adapter) CancelJob(_ context.Context, externalID string, _ string) error {
	if externalID == "" {
		return errs.NewValueIsRequiredError("externalID")
	}
	return nil
}
