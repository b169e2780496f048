package commands

import (
	"context"
	"errors"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// ApplyResult describes the outcome of a status update.
type ApplyResult struct {
	// Record is the tracking record after the update.
	Record tracking.Record
	// Changed is false for duplicate or stale statuses.
	Changed bool
	// Retired is true when the record is already gone because the order moved
	// past the stage the status belongs to. Record is empty then.
	Retired bool
}

// RestaurantStatusApplier is the single update path for restaurant statuses.
type RestaurantStatusApplier interface {
	Handle(ctx context.Context, cmd ApplyRestaurantStatusCommand) (ApplyResult, error)
}

// ApplyRestaurantStatusCommandHandler writes a restaurant status into the
// tracking record and reconciles the order. Polling workers and webhooks both
// go through it, so it does not matter which channel reports a status first.
// Equal or earlier statuses leave the record untouched but still reconcile, so a
// replay repairs an order whose earlier reconciliation failed.
type ApplyRestaurantStatusCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	reconciler OrderReconciler
	casRetries int
}

// NewApplyRestaurantStatusCommandHandler creates the handler.
func NewApplyRestaurantStatusCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	reconciler OrderReconciler,
	casRetries int,
) *ApplyRestaurantStatusCommandHandler {
	return &ApplyRestaurantStatusCommandHandler{
		repo:       repo,
		store:      store,
		reconciler: reconciler,
		casRetries: casRetries,
	}
}

// Handle applies the status.
func (h *ApplyRestaurantStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyRestaurantStatusCommand,
) (ApplyResult, error) {
	if err := cmd.Validate(); err != nil {
		return ApplyResult{}, err
	}

	rec, changed, err := updateRecord(ctx, h.store, cmd.OrderID(), h.casRetries,
		func(r *tracking.Record) (bool, error) {
			return r.AdvanceRestaurant(cmd.RestaurantKey(), cmd.Status())
		})
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		retired, missingErr := resolveMissingRecord(ctx, h.repo, cmd.OrderID(), order.Cooked, err)
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
	if cmd.ViaWebhook() {
		reconcile = reconcile.WithQueuedDelivery()
	}
	return result, h.reconciler.Handle(ctx, reconcile)
}
