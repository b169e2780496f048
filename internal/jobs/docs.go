// Package jobs provides scheduled background tasks for the catering orchestrator.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OrderSchedulingJob - picks up accepted orders that were never scheduled and schedules them
// 2. TrackingAuditJob - refreshes the TTL of in-flight tracking records and reports missing ones
//
// # Usage
//
//	jobManager := jobs.NewJobManager(scheduleHandler, auditHandler, jobs.Config{
//		ScheduleSpec:  "*/5 * * * * *",
//		ScheduleBatch: commands.DefaultScheduleBatch,
//		AuditSpec:     "0 * * * * *",
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Cron expressions carry a seconds field. A run that is still in progress when
// the next tick fires makes that tick a no-op.
//
// # Error Handling
//
// - Scheduling failures of single orders are logged; the orders stay accepted and are retried
// - Missing tracking records are logged as alarms by the audit handler
// - Failed job starts will stop any already running jobs
package jobs
