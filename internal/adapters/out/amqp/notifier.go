package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// StatusChangedEvent is the message type of published status changes.
const StatusChangedEvent = "order.status_changed"

var _ ports.StatusNotifier = (*StatusNotifier)(nil)

// StatusNotifier publishes status changes on the notifications fanout exchange.
type StatusNotifier struct {
	conn Connection
}

func NewStatusNotifier(conn Connection) (*StatusNotifier, error) {
	if conn == nil {
		return nil, errs.NewValueIsRequiredError("connection")
	}
	return &StatusNotifier{conn: conn}, nil
}

func (n *StatusNotifier) Notify(ctx context.Context, change ports.StatusChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return errs.NewTransientNetworkError("rabbitmq", "notify", err)
	}
	defer ch.Close()

	if err := DeclareNotificationTopology(ch); err != nil {
		return errs.NewTransientNetworkError("rabbitmq", "notify", err)
	}

	err = ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		Type:        StatusChangedEvent,
		Timestamp:   change.At,
		Body:        body,
	})
	if err != nil {
		return errs.NewTransientNetworkError("rabbitmq", "notify", err)
	}
	return nil
}
