package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// AcceptAssignmentCommandHandler processes a driver's claim on a pending
// assignment. The aggregate enforces ownership and the transition graph; the
// repository's conditional write resolves concurrent claims to one winner,
// surfacing errs.ErrVersionIsInvalid to the losers.
type AcceptAssignmentCommandHandler struct {
	uowFactory AssignmentUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewAcceptAssignmentCommandHandler creates a handler for assignment claims.
func NewAcceptAssignmentCommandHandler(
	uowFactory AssignmentUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the accept command.
func (h AcceptAssignmentCommandHandler) Handle(ctx context.Context, command AcceptAssignmentCommand) error {
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

	if err = aggregate.Accept(command.DriverID(), time.Now().UTC()); err != nil {
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
