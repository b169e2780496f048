package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// RedeliveryPolicy bounds how often a failed task is put back on its queue.
type RedeliveryPolicy struct {
	MaxRedeliveries int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
}

// DefaultRedeliveryPolicy retries a failed task five times over about half a minute.
func DefaultRedeliveryPolicy() RedeliveryPolicy {
	return RedeliveryPolicy{
		MaxRedeliveries: 5,
		InitialDelay:    2 * time.Second,
		MaxDelay:        time.Minute,
	}
}

// Delay returns the pause before the given redelivery, counting from 1.
func (p RedeliveryPolicy) Delay(redelivery int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := b.NextBackOff()
	for i := 1; i < redelivery; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// RedeliveringTaskHandler wraps the task router. A task failing with a
// redeliverable error goes back on its own queue with the same attempt and a
// growing delay, so a store outage or a lost enqueue does not end a worker
// chain. CAS contention is redelivered too. Other alarms, invalid tasks and
// tasks out of redeliveries are returned to the broker, which dead-letters them.
type RedeliveringTaskHandler struct {
	next       ports.TaskHandler
	dispatcher ports.TaskDispatcher
	policy     RedeliveryPolicy
	logger     *slog.Logger
}

// NewRedeliveringTaskHandler creates the wrapper.
func NewRedeliveringTaskHandler(
	next ports.TaskHandler,
	dispatcher ports.TaskDispatcher,
	policy RedeliveryPolicy,
	logger *slog.Logger,
) *RedeliveringTaskHandler {
	return &RedeliveringTaskHandler{
		next:       next,
		dispatcher: dispatcher,
		policy:     policy,
		logger:     logger.With("component", "redelivery"),
	}
}

// Handle runs the task and schedules its redelivery on failure.
func (h *RedeliveringTaskHandler) Handle(ctx context.Context, task ports.Task) error {
	err := h.next.Handle(ctx, task)
	if err == nil || ctx.Err() != nil || !errs.IsRedeliverable(err) {
		return err
	}

	log := h.logger.With("task_id", task.ID, "worker", task.Worker, "order_id", task.OrderID,
		"attempt", task.Attempt, "redelivery", task.Redelivery)

	if task.Redelivery >= h.policy.MaxRedeliveries {
		log.ErrorContext(ctx, "task redeliveries exhausted", "error", err, "alarm", true)
		return err
	}

	again := task.Redeliver()
	delay := h.policy.Delay(again.Redelivery)
	if enqErr := h.dispatcher.Enqueue(ctx, again, task.Worker.Queue(), delay); enqErr != nil {
		return errors.Join(err, enqErr)
	}
	log.WarnContext(ctx, "task failed, redelivering", "delay", delay, "error", err)
	return nil
}
