package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CompleteDeliveryCommandHandler processes a driver's delivery confirmation
// and returns the driver to the available pool.
type CompleteDeliveryCommandHandler struct {
	uowFactory DispatchUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery confirmations.
func NewCompleteDeliveryCommandHandler(
	uowFactory DispatchUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the delivery confirmation.
func (h CompleteDeliveryCommandHandler) Handle(ctx context.Context, command CompleteDeliveryCommand) error {
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

	if err = ensureOwnedBy(aggregate, command.DriverID()); err != nil {
		return err
	}

	proof := command.Proof()
	if err = aggregate.CompleteDelivery(&proof, time.Now().UTC()); err != nil {
		return err
	}

	if err = assignmentRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = h.releaseDriver(ctx, uow, command.DriverID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishAssignmentEvent(ctx, h.publisher, h.logger, aggregate)
	return nil
}

// releaseDriver returns the driver to the available pool. A missing driver
// row is tolerated: the assignment change must not be lost over it.
func (h CompleteDeliveryCommandHandler) releaseDriver(
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
