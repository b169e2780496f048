package jobs

import (
	"context"
	"log/slog"

	"catering/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AcceptedOrdersScheduler is implemented by ScheduleAcceptedOrdersCommandHandler.
type AcceptedOrdersScheduler interface {
	Handle(ctx context.Context, cmd commands.ScheduleAcceptedOrdersCommand) (int, error)
}

// OrderSchedulingJob periodically hands accepted orders over to the workers.
type OrderSchedulingJob struct {
	handler AcceptedOrdersScheduler
	spec    string
	batch   int
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOrderSchedulingJob creates the job. spec is a cron expression with seconds.
func NewOrderSchedulingJob(handler AcceptedOrdersScheduler, spec string, batch int, logger *slog.Logger) *OrderSchedulingJob {
	return &OrderSchedulingJob{
		handler: handler,
		spec:    spec,
		batch:   batch,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "order_scheduling_job"),
	}
}

// Start registers the job and starts the scheduler.
func (j *OrderSchedulingJob) Start() error {
	cmd, err := commands.NewScheduleAcceptedOrdersCommand(j.batch)
	if err != nil {
		return err
	}

	if _, err := j.cron.AddFunc(j.spec, func() { j.Run(context.Background(), cmd) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order scheduling job started", "spec", j.spec, "batch", j.batch)
	return nil
}

// Run executes one scheduling pass.
func (j *OrderSchedulingJob) Run(ctx context.Context, cmd commands.ScheduleAcceptedOrdersCommand) {
	if _, err := j.handler.Handle(ctx, cmd); err != nil {
		j.logger.ErrorContext(ctx, "Order scheduling job failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *OrderSchedulingJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Order scheduling job stopped")
}
