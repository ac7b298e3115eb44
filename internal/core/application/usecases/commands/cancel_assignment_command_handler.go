package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CancelAssignmentCommandHandler stops an in-flight assignment: flips it to
// the terminal cancelled state, releases the engaged driver, and cancels the
// remote job for external providers.
//
// The local state change is committed before the remote cancel call: losing
// the race against a provider webhook must not leave the assignment active
// locally. A failed remote cancel is logged and retried by the sync job when
// the provider still reports the job in flight.
type CancelAssignmentCommandHandler struct {
	uowFactory DispatchUoWFactory
	adapters   ports.AdapterRegistry
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCancelAssignmentCommandHandler creates a handler for cancellations.
func NewCancelAssignmentCommandHandler(
	uowFactory DispatchUoWFactory,
	adapters ports.AdapterRegistry,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CancelAssignmentCommandHandler {
	return CancelAssignmentCommandHandler{
		uowFactory: uowFactory,
		adapters:   adapters,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the cancellation.
func (h CancelAssignmentCommandHandler) Handle(ctx context.Context, command CancelAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignmentRepo := uow.AssignmentRepository()

	aggregate, err := assignmentRepo.Get(ctx, command.AssignmentID())
	if err != nil {
		return err
	}

	if err = aggregate.Cancel(); err != nil {
		return err
	}

	if err = assignmentRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if driverID := aggregate.DriverID(); driverID != nil {
		if err = h.releaseDriver(ctx, uow, *driverID); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.cancelRemoteJob(ctx, aggregate, command.Reason())
	publishAssignmentEvent(ctx, h.publisher, h.logger, aggregate)
	return nil
}

// releaseDriver returns the engaged driver to the available pool.
func (h CancelAssignmentCommandHandler) releaseDriver(
	ctx context.Context, uow DispatchUoW, driverID kernel.UUID,
) error {
	driverRepo := uow.DriverRepository()

	d, err := driverRepo.Get(ctx, driverID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.Warn("driver not found on release", "driver_id", driverID.String())
		return nil
	}
	if err != nil {
		return err
	}

	d.Release()
	return driverRepo.Update(ctx, d)
}

// cancelRemoteJob cancels the external job after the local commit,
// best-effort.
func (h CancelAssignmentCommandHandler) cancelRemoteJob(
	ctx context.Context, aggregate *assignment.Assignment, reason string,
) {
	if !aggregate.Provider().IsExternal() || aggregate.ExternalID() == nil {
		return
	}

	adapter, err := h.adapters.Resolve(aggregate.Provider())
	if err != nil {
		h.logger.Error("no adapter for provider",
			"provider", aggregate.Provider().String(), "error", err)
		return
	}

	if err = adapter.CancelJob(ctx, *aggregate.ExternalID(), reason); err != nil {
		h.logger.Warn("remote job cancellation failed, sync job will retry",
			"assignment_id", aggregate.ID().String(),
			"external_id", *aggregate.ExternalID(),
			"error", err)
	}
}
