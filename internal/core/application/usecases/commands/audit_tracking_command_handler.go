package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// AuditResult summarises one keep-alive pass.
type AuditResult struct {
	Touched  int
	Missing  []int64
	Redriven []int64
}

// AuditTrackingCommandHandler refreshes the TTL of every in-flight tracking
// record so that slow orders never expire mid-flight. An in-flight order
// without a record is reported as TrackingRecordMissing; the record is never
// re-created since its external ids are lost.
//
// Every touched order is reconciled again, which completes transitions whose
// first reconciliation failed. An order that was already COOKED or in delivery
// lookup when the pass started, and has neither a delivery order nor a running
// creation lease, gets a new delivery task.
type AuditTrackingCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	reconciler OrderReconciler
	dispatcher ports.TaskDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// NewAuditTrackingCommandHandler creates the handler.
func NewAuditTrackingCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	reconciler OrderReconciler,
	dispatcher ports.TaskDispatcher,
	logger *slog.Logger,
) *AuditTrackingCommandHandler {
	return &AuditTrackingCommandHandler{
		repo:       repo,
		store:      store,
		reconciler: reconciler,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.With("component", "tracking_audit"),
	}
}

// Handle touches every in-flight record. The error joins one
// TrackingRecordMissingError per missing record plus any store, reconcile and
// dispatch failures.
func (h *AuditTrackingCommandHandler) Handle(ctx context.Context, cmd AuditTrackingCommand) (AuditResult, error) {
	if err := cmd.Validate(); err != nil {
		return AuditResult{}, err
	}

	orders, err := h.repo.GetAllInFlight(ctx)
	if err != nil {
		return AuditResult{}, err
	}

	var (
		result  AuditResult
		errList []error
	)
	for _, o := range orders {
		ok, err := h.store.Touch(ctx, o.ID())
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if !ok {
			result.Missing = append(result.Missing, o.ID())
			missing := errs.NewTrackingRecordMissingError(o.ID())
			h.logger.ErrorContext(ctx, "tracking record missing", "order_id", o.ID(),
				"status", o.Status().String(), "error", missing, "alarm", true)
			errList = append(errList, missing)
			continue
		}
		result.Touched++

		reconcile, err := NewReconcileOrderCommand(o.ID())
		if err == nil {
			err = h.reconciler.Handle(ctx, reconcile.WithQueuedDelivery())
		}
		if err != nil {
			h.logger.WarnContext(ctx, "reconcile failed", "order_id", o.ID(), "error", err)
			errList = append(errList, err)
			continue
		}

		redriven, err := h.redriveDelivery(ctx, o)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if redriven {
			result.Redriven = append(result.Redriven, o.ID())
		}
	}
	return result, errors.Join(errList...)
}

func (h *AuditTrackingCommandHandler) redriveDelivery(ctx context.Context, o *order.Order) (bool, error) {
	if o.Status() != order.Cooked && o.Status() != order.DeliveryLookup {
		return false, nil
	}
	rec, err := h.store.Read(ctx, o.ID())
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Delivery.IsPlaced() || rec.Delivery.Failure != "" || rec.DeliveryClaimed(h.now()) {
		return false, nil
	}

	h.logger.WarnContext(ctx, "delivery not started, dispatching again",
		"order_id", o.ID(), "status", o.Status().String())
	return true, h.dispatcher.Enqueue(ctx, ports.NewTask(ports.WorkerDeliverOrder, o.ID(), ""), ports.QueueDefault, 0)
}
