package jobs

import (
	"context"
	"log/slog"

	"catering/internal/core/application/usecases/commands"
	"catering/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// TrackingAuditor is implemented by AuditTrackingCommandHandler.
type TrackingAuditor interface {
	Handle(ctx context.Context, cmd commands.AuditTrackingCommand) (commands.AuditResult, error)
}

// TrackingAuditJob keeps in-flight tracking records alive and reports missing ones.
type TrackingAuditJob struct {
	handler TrackingAuditor
	spec    string
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewTrackingAuditJob creates the job. spec is a cron expression with seconds.
func NewTrackingAuditJob(handler TrackingAuditor, spec string, logger *slog.Logger) *TrackingAuditJob {
	return &TrackingAuditJob{
		handler: handler,
		spec:    spec,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "tracking_audit_job"),
	}
}

// Start registers the job and starts the scheduler.
func (j *TrackingAuditJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Tracking audit job started", "spec", j.spec)
	return nil
}

// Run executes one audit pass.
func (j *TrackingAuditJob) Run(ctx context.Context) {
	result, err := j.handler.Handle(ctx, commands.NewAuditTrackingCommand())
	if err != nil {
		// missing records were already reported one by one
		if !errs.IsAlarm(err) {
			j.logger.ErrorContext(ctx, "Tracking audit job failed", "error", err)
		}
	}
	j.logger.DebugContext(ctx, "Tracking audit finished",
		"touched", result.Touched, "missing", len(result.Missing), "redriven", len(result.Redriven))
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *TrackingAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Tracking audit job stopped")
}
