// Package queue consumes tasks from the RabbitMQ priority queues.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catering/internal/adapters/out/amqp"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// DefaultReconnectDelay is the pause between consumer reconnect attempts.
const DefaultReconnectDelay = 5 * time.Second

var errChannelClosed = errors.New("channel closed")

// Consumer feeds tasks from one queue to a handler. Failed tasks are rejected
// without requeue, which moves them to the queue's dead letter queue. The
// handler returns an error only once it gave up on redelivery, see
// commands.RedeliveringTaskHandler.
type Consumer struct {
	conn           amqp.Connection
	handler        ports.TaskHandler
	queue          ports.Queue
	prefetch       int
	reconnectDelay time.Duration
	logger         *slog.Logger
}

func NewConsumer(
	conn amqp.Connection,
	handler ports.TaskHandler,
	queue ports.Queue,
	prefetch int,
	logger *slog.Logger,
) (*Consumer, error) {
	if conn == nil {
		return nil, errs.NewValueIsRequiredError("connection")
	}
	if handler == nil {
		return nil, errs.NewValueIsRequiredError("handler")
	}
	if queue == "" {
		return nil, errs.NewValueIsRequiredError("queue")
	}
	if prefetch < 1 {
		return nil, errs.NewValueIsOutOfRangeError("prefetch", prefetch, 1, "unbounded")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	return &Consumer{
		conn:           conn,
		handler:        handler,
		queue:          queue,
		prefetch:       prefetch,
		reconnectDelay: DefaultReconnectDelay,
		logger:         logger.With("component", "task_consumer", "queue", queue),
	}, nil
}

// WithReconnectDelay overrides the pause between reconnect attempts.
func (c *Consumer) WithReconnectDelay(d time.Duration) *Consumer {
	c.reconnectDelay = d
	return c
}

// Run consumes until ctx is done, reconnecting whenever the channel drops.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("starting")
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.logger.Info("stopped")
			return nil
		}
		c.logger.Warn("consumer disconnected, reconnecting", "error", err, "delay", c.reconnectDelay)

		select {
		case <-ctx.Done():
			c.logger.Info("stopped")
			return nil
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	closed := ch.NotifyClose(make(chan *amqp091.Error, 1))

	if err := amqp.DeclareTaskTopology(ch); err != nil {
		return err
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(string(c.queue), "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				return fmt.Errorf("%w: %s", errChannelClosed, amqpErr.Error())
			}
			return errChannelClosed
		case msg, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}
			c.deliver(ctx, msg)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, msg amqp091.Delivery) {
	var task ports.Task
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		c.logger.Error("undecodable task", "error", err, "message_id", msg.MessageId, "alarm", true)
		_ = msg.Nack(false, false)
		return
	}

	logger := c.logger.With("task_id", task.ID, "worker", task.Worker, "order_id", task.OrderID, "attempt", task.Attempt)

	if err := c.handler.Handle(ctx, task); err != nil {
		if errs.IsAlarm(err) {
			logger.Error("task failed", "error", err, "alarm", true)
		} else {
			logger.Warn("task failed", "error", err)
		}
		if ctx.Err() != nil {
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}

// RunAll consumes every priority queue with workers consumers each.
func RunAll(
	ctx context.Context,
	conn amqp.Connection,
	handler ports.TaskHandler,
	workers int,
	logger *slog.Logger,
) error {
	consumers := make([]*Consumer, 0, workers*len(ports.Queues()))
	for _, q := range ports.Queues() {
		for range workers {
			consumer, err := NewConsumer(conn, handler, q, 1, logger)
			if err != nil {
				return err
			}
			consumers = append(consumers, consumer)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, consumer := range consumers {
		g.Go(func() error { return consumer.Run(ctx) })
	}
	return g.Wait()
}
