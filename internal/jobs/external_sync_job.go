package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// externalSyncSchedule polls every 15 seconds. Webhooks carry most progress;
// the poll catches deliveries whose callbacks were lost.
const externalSyncSchedule = "*/15 * * * * *"

// ExternalSyncJob periodically reconciles in-flight external assignments
// against the provider's view of their jobs.
type ExternalSyncJob struct {
	handler commands.SyncExternalAssignmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewExternalSyncJob creates the reconciliation job.
func NewExternalSyncJob(
	handler commands.SyncExternalAssignmentsCommandHandler, logger *slog.Logger,
) *ExternalSyncJob {
	return &ExternalSyncJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "external_sync_job"),
	}
}

// Start schedules the job. Per-assignment sync failures are handled and
// logged inside the command handler; only scheduler-level errors surface here.
func (j *ExternalSyncJob) Start() error {
	_, err := j.cron.AddFunc(externalSyncSchedule, func() {
		ctx := context.Background()
		cmd := commands.NewSyncExternalAssignmentsCommand()

		if handleErr := j.handler.Handle(ctx, cmd); handleErr != nil {
			j.logger.ErrorContext(ctx, "external assignment sync failed", "error", handleErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "external assignment sync started",
		"schedule", externalSyncSchedule)
	return nil
}

// Stop stops the job.
func (j *ExternalSyncJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "external assignment sync stopped")
}
