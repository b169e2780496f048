package jobs

import (
	"fmt"
	"log/slog"
)

// Config holds the job schedules.
type Config struct {
	ScheduleSpec  string
	ScheduleBatch int
	AuditSpec     string
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	orderSchedulingJob *OrderSchedulingJob
	trackingAuditJob   *TrackingAuditJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	scheduler AcceptedOrdersScheduler,
	auditor TrackingAuditor,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		orderSchedulingJob: NewOrderSchedulingJob(scheduler, cfg.ScheduleSpec, cfg.ScheduleBatch, logger),
		trackingAuditJob:   NewTrackingAuditJob(auditor, cfg.AuditSpec, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.orderSchedulingJob.Start(); err != nil {
		return fmt.Errorf("failed to start order scheduling job: %w", err)
	}

	if err := jm.trackingAuditJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.orderSchedulingJob.Stop()
		return fmt.Errorf("failed to start tracking audit job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.trackingAuditJob.Stop()
	jm.orderSchedulingJob.Stop()
}
