package commands

import (
	"context"
	"errors"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// DeliveryStatusApplier is the single update path for delivery statuses.
type DeliveryStatusApplier interface {
	Handle(ctx context.Context, cmd ApplyDeliveryStatusCommand) (ApplyResult, error)
}

// ApplyDeliveryStatusCommandHandler writes the delivery status and courier
// location into the tracking record and reconciles the order. Reconciliation
// runs for duplicates too, so a replay finishes an interrupted transition.
type ApplyDeliveryStatusCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	reconciler OrderReconciler
	casRetries int
}

// NewApplyDeliveryStatusCommandHandler creates the handler.
func NewApplyDeliveryStatusCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	reconciler OrderReconciler,
	casRetries int,
) *ApplyDeliveryStatusCommandHandler {
	return &ApplyDeliveryStatusCommandHandler{
		repo:       repo,
		store:      store,
		reconciler: reconciler,
		casRetries: casRetries,
	}
}

// Handle applies the status.
func (h *ApplyDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyDeliveryStatusCommand,
) (ApplyResult, error) {
	if err := cmd.Validate(); err != nil {
		return ApplyResult{}, err
	}

	rec, changed, err := updateRecord(ctx, h.store, cmd.OrderID(), h.casRetries,
		func(r *tracking.Record) (bool, error) {
			return r.AdvanceDelivery(cmd.Status(), cmd.Location()), nil
		})
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		retired, missingErr := resolveMissingRecord(ctx, h.repo, cmd.OrderID(), order.Delivered, err)
		return ApplyResult{Retired: retired}, missingErr
	}
	if err != nil {
		return ApplyResult{}, err
	}

	result := ApplyResult{Record: rec, Changed: changed}

	reconcile, err := NewReconcileOrderCommand(cmd.OrderID())
	if err != nil {
		return result, err
	}
	return result, h.reconciler.Handle(ctx, reconcile)
}
