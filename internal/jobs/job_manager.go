// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3. The only job today is the external assignment
// sync, which polls the courier provider for progress that webhooks missed.
package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	externalSyncJob *ExternalSyncJob
}

// NewJobManager creates a job manager wired with the sync handler.
func NewJobManager(
	syncHandler commands.SyncExternalAssignmentsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		externalSyncJob: NewExternalSyncJob(syncHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.externalSyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start external sync job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.externalSyncJob.Stop()
}
