package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// ConfirmPickupCommandHandler processes a driver's pickup confirmation.
type ConfirmPickupCommandHandler struct {
	uowFactory AssignmentUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewConfirmPickupCommandHandler creates a handler for pickup confirmations.
func NewConfirmPickupCommandHandler(
	uowFactory AssignmentUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ConfirmPickupCommandHandler {
	return ConfirmPickupCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the pickup confirmation.
func (h ConfirmPickupCommandHandler) Handle(ctx context.Context, command ConfirmPickupCommand) error {
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

	if err = aggregate.ConfirmPickup(time.Now().UTC()); err != nil {
		return err
	}

	if err = assignmentRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishAssignmentEvent(ctx, h.publisher, h.logger, aggregate)
	return nil
}
