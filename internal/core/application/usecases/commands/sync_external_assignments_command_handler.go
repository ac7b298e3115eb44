package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SyncExternalAssignmentsCommandHandler polls providers for every in-flight
// external assignment and applies the reported progress, exactly as a webhook
// would. Each assignment syncs in its own transaction so one provider hiccup
// never stalls the rest of the batch; per-assignment failures are logged and
// skipped.
type SyncExternalAssignmentsCommandHandler struct {
	uowFactory TrackingUoWFactory
	adapters   ports.AdapterRegistry
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewSyncExternalAssignmentsCommandHandler creates a handler for the sync poll.
func NewSyncExternalAssignmentsCommandHandler(
	uowFactory TrackingUoWFactory,
	adapters ports.AdapterRegistry,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) SyncExternalAssignmentsCommandHandler {
	return SyncExternalAssignmentsCommandHandler{
		uowFactory: uowFactory,
		adapters:   adapters,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle polls every in-flight external assignment once.
func (h SyncExternalAssignmentsCommandHandler) Handle(
	ctx context.Context, command SyncExternalAssignmentsCommand,
) error {
	if err := command.Validate(); err != nil {
		return err
	}

	inflight, err := h.listInflight(ctx)
	if err != nil {
		return err
	}

	for _, aggregate := range inflight {
		if err = ctx.Err(); err != nil {
			return err
		}

		if syncErr := h.syncOne(ctx, aggregate.ID()); syncErr != nil {
			h.logger.Warn("assignment sync failed",
				"assignment_id", aggregate.ID().String(),
				"error", syncErr)
		}
	}

	return nil
}

// listInflight snapshots the ids to sync in a short read-only transaction.
func (h SyncExternalAssignmentsCommandHandler) listInflight(
	ctx context.Context,
) ([]*assignment.Assignment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	inflight, err := uow.AssignmentRepository().GetInflightExternal(ctx)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return inflight, nil
}

// syncOne reloads the assignment, polls its provider, and applies progress in
// a dedicated transaction.
func (h SyncExternalAssignmentsCommandHandler) syncOne(ctx context.Context, id kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignmentRepo := uow.AssignmentRepository()

	aggregate, err := assignmentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if aggregate.ExternalID() == nil {
		return nil
	}

	// Delivered with no proof yet: the courier's photo or signature can land
	// minutes after the final status. Keep polling just for the proof.
	if aggregate.Status() == assignment.Delivered && aggregate.Proof() == nil {
		return h.backfillProof(ctx, uow, aggregate)
	}

	// Reload may race a webhook that already finished this assignment.
	if aggregate.Status().IsTerminal() {
		return nil
	}

	adapter, err := h.adapters.Resolve(aggregate.Provider())
	if err != nil {
		return err
	}

	snapshot, err := adapter.GetJob(ctx, *aggregate.ExternalID())
	if err != nil {
		return err
	}

	changed, err := applyExternalProgress(aggregate, snapshot.Status, snapshot.Proof, snapshot.UpdatedAt)
	if err != nil {
		return err
	}

	if changed {
		if err = assignmentRepo.Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if snapshot.CourierPosition != nil && aggregate.Status().AcceptsPings() {
		var metadata map[string]string
		if snapshot.CourierName != "" {
			metadata = map[string]string{"courier_name": snapshot.CourierName}
		}
		ping, pingErr := tracking.NewPing(
			kernel.NewUUID(), aggregate.ID(), *snapshot.CourierPosition, snapshot.UpdatedAt, 0, metadata)
		if pingErr != nil {
			return pingErr
		}
		if err = uow.PingRepository().Append(ctx, ping); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if changed {
		publishAssignmentEvent(ctx, h.publisher, h.logger, aggregate)
	}
	return nil
}

// backfillProof fetches the job once more for a delivered assignment whose
// proof has not arrived yet and attaches it when the provider has it.
func (h SyncExternalAssignmentsCommandHandler) backfillProof(
	ctx context.Context, uow TrackingUoW, aggregate *assignment.Assignment,
) error {
	adapter, err := h.adapters.Resolve(aggregate.Provider())
	if err != nil {
		return err
	}

	snapshot, err := adapter.GetJob(ctx, *aggregate.ExternalID())
	if err != nil {
		// The remote job can expire before we fetch the proof; the artifacts
		// are gone for good and polling again will not bring them back.
		if errors.Is(err, errs.ErrObjectNotFound) {
			h.logger.Info("remote job gone before proof arrived",
				"assignment_id", aggregate.ID().String())
			return nil
		}
		return err
	}

	if snapshot.Proof == nil {
		return nil
	}

	if err = aggregate.AttachProof(*snapshot.Proof); err != nil {
		return err
	}

	if err = uow.AssignmentRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
