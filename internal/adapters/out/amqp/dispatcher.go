package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

var _ ports.TaskDispatcher = (*TaskDispatcher)(nil)

// TaskDispatcher publishes tasks onto the priority queues. Delayed tasks are
// parked on the delay queue with a per-message expiration.
type TaskDispatcher struct {
	conn   Connection
	logger *slog.Logger

	mu sync.Mutex
	ch Channel
}

func NewTaskDispatcher(conn Connection, logger *slog.Logger) (*TaskDispatcher, error) {
	if conn == nil {
		return nil, errs.NewValueIsRequiredError("connection")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	return &TaskDispatcher{conn: conn, logger: logger.With("component", "amqp_task_dispatcher")}, nil
}

// Enqueue publishes task onto queue, or onto its delay queue when delay is positive.
func (d *TaskDispatcher) Enqueue(ctx context.Context, task ports.Task, queue ports.Queue, delay time.Duration) error {
	if err := task.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	msg := amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		ContentType:  "application/json",
		MessageId:    task.ID.String(),
		Type:         string(task.Worker),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	routingKey := string(queue)
	if delay > 0 {
		routingKey = DelayQueue(queue)
		msg.Expiration = strconv.FormatInt(max(delay.Milliseconds(), 1), 10)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ch, err := d.channel()
	if err != nil {
		return errs.NewTransientNetworkError("rabbitmq", "enqueue", err)
	}
	if err := ch.PublishWithContext(ctx, "", routingKey, false, false, msg); err != nil {
		d.reset()
		return errs.NewTransientNetworkError("rabbitmq", "enqueue", err)
	}

	d.logger.Debug("task enqueued",
		"task_id", task.ID, "worker", task.Worker, "order_id", task.OrderID,
		"queue", routingKey, "delay", delay)
	return nil
}

// Close releases the publishing channel.
func (d *TaskDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ch == nil {
		return nil
	}
	err := d.ch.Close()
	d.ch = nil
	return err
}

func (d *TaskDispatcher) channel() (Channel, error) {
	if d.ch != nil {
		return d.ch, nil
	}
	ch, err := d.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := DeclareTaskTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	d.ch = ch
	return ch, nil
}

func (d *TaskDispatcher) reset() {
	if d.ch != nil {
		_ = d.ch.Close()
		d.ch = nil
	}
}
