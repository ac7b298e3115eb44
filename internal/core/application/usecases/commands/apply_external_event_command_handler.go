package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ApplyExternalEventCommandHandler applies one provider callback to the
// matching assignment: catches up the lifecycle, records an attached courier
// position as a ping, and attaches late proof.
//
// Replays are the normal case, not an error: providers redeliver webhooks
// until acknowledged, so an event that changes nothing commits nothing and
// succeeds. Events for unknown job ids are dropped with a warning; they
// usually belong to jobs created outside this service.
type ApplyExternalEventCommandHandler struct {
	uowFactory TrackingUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewApplyExternalEventCommandHandler creates a handler for provider callbacks.
func NewApplyExternalEventCommandHandler(
	uowFactory TrackingUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ApplyExternalEventCommandHandler {
	return ApplyExternalEventCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the provider event.
func (h ApplyExternalEventCommandHandler) Handle(ctx context.Context, command ApplyExternalEventCommand) error {
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

	aggregate, err := assignmentRepo.GetByExternalID(ctx, command.ExternalID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.Warn("dropping event for unknown external job",
			"external_id", command.ExternalID())
		return nil
	}
	if err != nil {
		return err
	}

	changed, err := applyExternalProgress(
		aggregate, command.Status(), command.Proof(), command.OccurredAt())
	if err != nil {
		return err
	}

	if changed {
		if err = assignmentRepo.Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if err = h.recordPosition(ctx, uow, aggregate.ID(), command); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if changed {
		publishAssignmentEvent(ctx, h.publisher, h.logger, aggregate)
	}
	return nil
}

// recordPosition stores the courier position attached to the event as a ping,
// honoring the same en-route gate as driver pings.
func (h ApplyExternalEventCommandHandler) recordPosition(
	ctx context.Context,
	uow TrackingUoW,
	assignmentID kernel.UUID,
	command ApplyExternalEventCommand,
) error {
	position := command.Position()
	if position == nil || !command.Status().AcceptsPings() {
		return nil
	}

	ping, err := tracking.NewPing(
		kernel.NewUUID(), assignmentID, *position, command.OccurredAt(), 0, nil)
	if err != nil {
		return err
	}

	return uow.PingRepository().Append(ctx, ping)
}
