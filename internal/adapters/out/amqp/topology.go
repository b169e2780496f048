package amqp

import (
	"fmt"

	"catering/internal/core/ports"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

const (
	// DeadLetterExchange receives tasks whose handler failed for good.
	DeadLetterExchange = "tasks_dlx"

	// NotificationsExchange fans status changes out to every subscriber.
	NotificationsExchange = "notifications_fanout"
)

// DelayQueue is the holding queue of delayed tasks for q. Messages sit there
// until their expiration and are then dead-lettered back onto q.
func DelayQueue(q ports.Queue) string {
	return string(q) + ".delay"
}

// DeadLetterQueue collects the failed tasks of q.
func DeadLetterQueue(q ports.Queue) string {
	return string(q) + ".dlq"
}

// DeclareTaskTopology declares, for every priority queue, the work queue,
// its delay queue and its dead letter queue. Declaring is idempotent.
func DeclareTaskTopology(ch Channel) error {
	if err := ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", DeadLetterExchange, err)
	}

	for _, q := range ports.Queues() {
		name := string(q)

		if _, err := ch.QueueDeclare(DeadLetterQueue(q), true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", DeadLetterQueue(q), err)
		}
		if err := ch.QueueBind(DeadLetterQueue(q), name, DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", DeadLetterQueue(q), err)
		}

		if _, err := ch.QueueDeclare(name, true, false, false, false, amqp091.Table{
			"x-dead-letter-exchange":    DeadLetterExchange,
			"x-dead-letter-routing-key": name,
		}); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}

		if _, err := ch.QueueDeclare(DelayQueue(q), true, false, false, false, amqp091.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": name,
		}); err != nil {
			return fmt.Errorf("declare queue %s: %w", DelayQueue(q), err)
		}
	}
	return nil
}

// DeclareNotificationTopology declares the status change exchange.
func DeclareNotificationTopology(ch Channel) error {
	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", NotificationsExchange, err)
	}
	return nil
}
