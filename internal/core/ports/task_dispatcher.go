package ports

import (
	"context"
	"fmt"
	"time"

	"catering/internal/pkg/errs"

	"github.com/google/uuid"
)

// Queue names a priority tier of the task broker.
type Queue string

const (
	QueueHighPriority Queue = "high_priority"
	QueueDefault      Queue = "default"
	QueueLowPriority  Queue = "low_priority"
)

// Queues returns every queue, highest priority first.
func Queues() []Queue {
	return []Queue{QueueHighPriority, QueueDefault, QueueLowPriority}
}

// WorkerType selects the handler that executes a task.
type WorkerType string

const (
	WorkerFulfillRestaurant WorkerType = "fulfill_restaurant"
	WorkerDeliverOrder      WorkerType = "deliver_order"
	WorkerNotifyStatus      WorkerType = "notify_status"
)

// Queue returns the queue tasks of this worker type are enqueued on.
func (w WorkerType) Queue() Queue {
	switch w {
	case WorkerFulfillRestaurant:
		return QueueHighPriority
	case WorkerNotifyStatus:
		return QueueLowPriority
	default:
		return QueueDefault
	}
}

// Task is the serialisable unit of background work.
//
// Polling workers do one attempt per task and re-enqueue a successor with
// Attempt+1, so a worker slot is never held for the whole polling duration.
// Redelivery counts how often this attempt was put back after a failure.
type Task struct {
	ID            uuid.UUID  `json:"id"`
	Worker        WorkerType `json:"worker"`
	OrderID       int64      `json:"order_id"`
	RestaurantKey string     `json:"restaurant_id,omitempty"`
	Status        string     `json:"status,omitempty"`
	Attempt       int        `json:"attempt"`
	Redelivery    int        `json:"redelivery,omitempty"`
}

// NewTask creates the first attempt of a task.
func NewTask(worker WorkerType, orderID int64, restaurantKey string) Task {
	return Task{
		ID:            uuid.New(),
		Worker:        worker,
		OrderID:       orderID,
		RestaurantKey: restaurantKey,
		Attempt:       1,
	}
}

// Next returns the follow-up attempt of a polling task.
func (t Task) Next() Task {
	next := t
	next.ID = uuid.New()
	next.Attempt++
	next.Redelivery = 0
	return next
}

// Redeliver returns a copy of the same attempt to be run again after a failure.
func (t Task) Redeliver() Task {
	again := t
	again.ID = uuid.New()
	again.Redelivery++
	return again
}

// Validate checks the fields every worker relies on.
func (t Task) Validate() error {
	if t.OrderID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", t.OrderID))
	}
	if t.Attempt < 1 {
		return errs.NewValueIsOutOfRangeError("attempt", t.Attempt, 1, "unbounded")
	}
	switch t.Worker {
	case WorkerFulfillRestaurant:
		if t.RestaurantKey == "" {
			return errs.NewValueIsRequiredError("restaurant id")
		}
	case WorkerDeliverOrder:
	case WorkerNotifyStatus:
		if t.Status == "" {
			return errs.NewValueIsRequiredError("status")
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("worker", fmt.Errorf("unknown worker type %q", t.Worker))
	}
	return nil
}

// TaskDispatcher enqueues tasks onto the broker. A positive delay postpones
// delivery of the task to its handler.
type TaskDispatcher interface {
	Enqueue(ctx context.Context, task Task, queue Queue, delay time.Duration) error
}

// TaskHandler executes one task taken off a queue.
type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}
