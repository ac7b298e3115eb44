package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/pkg/errs"
)

// RecordPingCommandHandler ingests courier location reports.
//
// Ingestion is deliberately forgiving: reports for unknown assignments or for
// assignments that are not en route are dropped with a debug log and a
// success result. Courier devices batch and retry aggressively, and a late
// ping after delivery is normal operation, not a client error worth a 4xx.
type RecordPingCommandHandler struct {
	uowFactory TrackingUoWFactory
	logger     *slog.Logger
}

// NewRecordPingCommandHandler creates a handler for ping ingestion.
func NewRecordPingCommandHandler(uowFactory TrackingUoWFactory, logger *slog.Logger) RecordPingCommandHandler {
	return RecordPingCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Handle processes one location report.
func (h RecordPingCommandHandler) Handle(ctx context.Context, command RecordPingCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	ping := command.Ping()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.AssignmentRepository().Get(ctx, ping.AssignmentID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.Debug("dropping ping for unknown assignment",
			"assignment_id", ping.AssignmentID().String())
		return nil
	}
	if err != nil {
		return err
	}

	if !aggregate.Status().AcceptsPings() {
		h.logger.Debug("dropping ping outside en-route window",
			"assignment_id", ping.AssignmentID().String(),
			"status", aggregate.Status().String())
		return nil
	}

	if err = uow.PingRepository().Append(ctx, ping); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
