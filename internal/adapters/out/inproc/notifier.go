package inproc

import (
	"context"
	"log/slog"

	"catering/internal/core/ports"
)

var _ ports.StatusNotifier = (*LogNotifier)(nil)

// LogNotifier writes status changes to the log instead of publishing them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "status_notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, change ports.StatusChange) error {
	n.logger.Info("order status changed",
		"order_id", change.OrderID, "status", change.Status.String(), "at", change.At)
	return nil
}
