package ports

import (
	"context"
	"time"

	"catering/internal/core/domain/model/order"
)

// StatusChange is published after a canonical transition was committed.
type StatusChange struct {
	OrderID int64        `json:"order_id"`
	Status  order.Status `json:"status"`
	At      time.Time    `json:"at"`
}

// StatusNotifier publishes canonical status changes to interested parties.
type StatusNotifier interface {
	Notify(ctx context.Context, change StatusChange) error
}
