package commands

import (
	"context"
	"time"

	"catering/internal/core/ports"
)

// NotifyStatusCommandHandler publishes canonical status changes.
type NotifyStatusCommandHandler struct {
	notifier ports.StatusNotifier
	now      func() time.Time
}

// NewNotifyStatusCommandHandler creates the handler.
func NewNotifyStatusCommandHandler(notifier ports.StatusNotifier) *NotifyStatusCommandHandler {
	return &NotifyStatusCommandHandler{notifier: notifier, now: time.Now}
}

// Handle publishes the change.
func (h *NotifyStatusCommandHandler) Handle(ctx context.Context, cmd NotifyStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.notifier.Notify(ctx, ports.StatusChange{
		OrderID: cmd.OrderID(),
		Status:  cmd.Status(),
		At:      h.now().UTC(),
	})
}
