package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catering/internal/core/ports"
)

// OrderScheduler is implemented by ScheduleOrderCommandHandler.
type OrderScheduler interface {
	Handle(ctx context.Context, cmd ScheduleOrderCommand) error
}

// ScheduleAcceptedOrdersCommandHandler picks up orders that were accepted but
// never scheduled and schedules each of them. A failing order does not stop
// the others; it stays unscheduled and is retried on the next run.
type ScheduleAcceptedOrdersCommandHandler struct {
	repo      ports.OrderRepository
	scheduler OrderScheduler
	logger    *slog.Logger
}

// NewScheduleAcceptedOrdersCommandHandler creates the handler.
func NewScheduleAcceptedOrdersCommandHandler(
	repo ports.OrderRepository,
	scheduler OrderScheduler,
	logger *slog.Logger,
) *ScheduleAcceptedOrdersCommandHandler {
	return &ScheduleAcceptedOrdersCommandHandler{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger.With("component", "order_scheduling"),
	}
}

// Handle schedules the batch and returns how many orders were handed over.
// The error joins the failures of individual orders.
func (h *ScheduleAcceptedOrdersCommandHandler) Handle(ctx context.Context, cmd ScheduleAcceptedOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	orders, err := h.repo.GetUnscheduled(ctx, cmd.Limit())
	if err != nil {
		return 0, err
	}

	var (
		scheduled int
		errList   []error
	)
	for _, o := range orders {
		if ctx.Err() != nil {
			errList = append(errList, ctx.Err())
			break
		}

		schedule, cmdErr := NewScheduleOrderCommand(o.ID())
		if cmdErr != nil {
			errList = append(errList, cmdErr)
			continue
		}
		if err := h.scheduler.Handle(ctx, schedule); err != nil {
			h.logger.WarnContext(ctx, "order not scheduled", "order_id", o.ID(), "error", err)
			errList = append(errList, fmt.Errorf("order %d: %w", o.ID(), err))
			continue
		}
		scheduled++
	}

	if scheduled > 0 {
		h.logger.InfoContext(ctx, "orders scheduled", "count", scheduled, "failed", len(errList))
	}
	return scheduled, errors.Join(errList...)
}
