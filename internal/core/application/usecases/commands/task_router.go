package commands

import (
	"context"
	"fmt"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

type (
	restaurantWorker interface {
		Handle(ctx context.Context, cmd FulfillRestaurantCommand) error
	}
	notifyWorker interface {
		Handle(ctx context.Context, cmd NotifyStatusCommand) error
	}
)

// TaskRouter turns queued tasks into commands for the matching worker.
// It implements ports.TaskHandler for every task broker.
type TaskRouter struct {
	restaurants restaurantWorker
	delivery    DeliveryRunner
	notify      notifyWorker
}

// NewTaskRouter creates a router over the three workers.
func NewTaskRouter(restaurants restaurantWorker, delivery DeliveryRunner, notify notifyWorker) *TaskRouter {
	return &TaskRouter{restaurants: restaurants, delivery: delivery, notify: notify}
}

// Handle dispatches the task by worker type.
func (r *TaskRouter) Handle(ctx context.Context, task ports.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	switch task.Worker {
	case ports.WorkerFulfillRestaurant:
		cmd, err := NewFulfillRestaurantCommand(task.OrderID, task.RestaurantKey, task.Attempt)
		if err != nil {
			return err
		}
		return r.restaurants.Handle(ctx, cmd)
	case ports.WorkerDeliverOrder:
		cmd, err := NewDeliverOrderCommand(task.OrderID, task.Attempt)
		if err != nil {
			return err
		}
		return r.delivery.Handle(ctx, cmd)
	case ports.WorkerNotifyStatus:
		status, err := order.ParseStatus(task.Status)
		if err != nil {
			return err
		}
		cmd, err := NewNotifyStatusCommand(task.OrderID, status)
		if err != nil {
			return err
		}
		return r.notify.Handle(ctx, cmd)
	default:
		return errs.NewValueIsInvalidErrorWithCause("worker", fmt.Errorf("unknown worker type %q", task.Worker))
	}
}
