package commands

import (
	"context"
	"errors"
	"log/slog"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/services"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// DeliveryDispatch selects how the delivery worker is started once every
// restaurant finished cooking.
type DeliveryDispatch string

const (
	// DeliveryDispatchQueued enqueues the delivery worker on the default queue.
	DeliveryDispatchQueued DeliveryDispatch = "queued"
	// DeliveryDispatchInline runs the first delivery step in the reconciling worker.
	DeliveryDispatchInline DeliveryDispatch = "inline"
)

// ParseDeliveryDispatch validates a configured dispatch mode.
func ParseDeliveryDispatch(s string) (DeliveryDispatch, error) {
	switch mode := DeliveryDispatch(s); mode {
	case DeliveryDispatchQueued, DeliveryDispatchInline:
		return mode, nil
	default:
		return "", errs.NewValueIsInvalidError("delivery dispatch " + s)
	}
}

// OrderReconciler is the entry point every tracking update ends in.
type OrderReconciler interface {
	Handle(ctx context.Context, cmd ReconcileOrderCommand) error
}

// DeliveryRunner runs the delivery worker synchronously.
type DeliveryRunner interface {
	Handle(ctx context.Context, cmd DeliverOrderCommand) error
}

// ReconcileOrderCommandHandler applies the decisions of the status reconciler.
//
// Each decision becomes a conditional repository update. Only the caller whose
// update changed a row continues with the side effects: a status notification,
// the single delivery dispatch after Cooked, and retiring the tracking record
// after Delivered. Racing reconciliations therefore dispatch delivery once.
// A dispatch lost after the Cooked update committed is re-driven by the
// tracking audit.
//
// Inline dispatch runs the first delivery step, including the provider call,
// inside the caller. Reconciliations raised by webhooks always queue delivery.
//
// Example:
//
//	handler := NewReconcileOrderCommandHandler(repo, store, dispatcher, DeliveryDispatchQueued, logger)
//	cmd, _ := NewReconcileOrderCommand(42)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("reconcile order: %w", err)
//	}
type ReconcileOrderCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	dispatcher ports.TaskDispatcher
	reconciler services.StatusReconciler
	mode       DeliveryDispatch
	inline     DeliveryRunner
	logger     *slog.Logger
}

// NewReconcileOrderCommandHandler creates the reconciliation handler.
func NewReconcileOrderCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	dispatcher ports.TaskDispatcher,
	mode DeliveryDispatch,
	logger *slog.Logger,
) *ReconcileOrderCommandHandler {
	return &ReconcileOrderCommandHandler{
		repo:       repo,
		store:      store,
		dispatcher: dispatcher,
		reconciler: services.NewStatusReconciler(),
		mode:       mode,
		logger:     logger.With("component", "reconciler"),
	}
}

// SetInlineDelivery installs the delivery worker used in inline dispatch mode.
// The delivery worker itself reconciles, so it can only be wired after both exist.
func (h *ReconcileOrderCommandHandler) SetInlineDelivery(runner DeliveryRunner) {
	h.inline = runner
}

// Handle re-derives the canonical status of one order.
func (h *ReconcileOrderCommandHandler) Handle(ctx context.Context, cmd ReconcileOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	orderID := cmd.OrderID()

	rec, err := h.store.Read(ctx, orderID)
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		_, err = resolveMissingRecord(ctx, h.repo, orderID, order.Delivered, err)
		return err
	}
	if err != nil {
		return err
	}

	o, err := h.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	decision := h.reconciler.Decide(rec, o.Status())
	if decision.IsNoop() {
		if o.Status() == order.Delivered {
			return h.store.Delete(ctx, orderID)
		}
		return nil
	}

	changed, err := h.repo.ConditionalUpdateStatus(ctx, orderID, decision.From, decision.Target)
	if err != nil {
		return err
	}
	if !changed {
		h.logger.DebugContext(ctx, "transition already applied",
			"order_id", orderID, "status", decision.Target.String())
		return nil
	}

	h.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID, "from", o.Status().String(), "to", decision.Target.String())

	if err = enqueueNotification(ctx, h.dispatcher, orderID, decision.Target); err != nil {
		h.logger.WarnContext(ctx, "failed to enqueue status notification",
			"order_id", orderID, "status", decision.Target.String(), "error", err)
	}

	if decision.DispatchDelivery {
		if err = h.dispatchDelivery(ctx, orderID, cmd.QueuedDelivery()); err != nil {
			return err
		}
	}

	if decision.Target == order.Delivered {
		return h.store.Delete(ctx, orderID)
	}
	return nil
}

func (h *ReconcileOrderCommandHandler) dispatchDelivery(ctx context.Context, orderID int64, queued bool) error {
	if h.mode == DeliveryDispatchInline && h.inline != nil && !queued {
		cmd, err := NewDeliverOrderCommand(orderID, 1)
		if err != nil {
			return err
		}
		h.logger.InfoContext(ctx, "starting delivery inline", "order_id", orderID)
		return h.inline.Handle(ctx, cmd)
	}

	h.logger.InfoContext(ctx, "dispatching delivery", "order_id", orderID)
	return h.dispatcher.Enqueue(ctx, ports.NewTask(ports.WorkerDeliverOrder, orderID, ""), ports.QueueDefault, 0)
}
