package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// FulfillRestaurantCommandHandler is the restaurant worker.
//
// Every task performs a single step and, unless the restaurant reached Cooked,
// enqueues its successor with a delay instead of sleeping:
//
//	INIT     read the restaurant entry of the tracking record
//	PLACING  no external id yet: create the upstream order, store its id
//	POLLING  external id known: query the provider, apply the status
//	COOKED   terminal, nothing is enqueued
//
// Since the external id is stored before polling starts, a duplicated task
// finds it and polls instead of creating a second upstream order.
//
// Transient provider errors are retried with backoff inside the step and, once
// that budget is spent, by the next step. Protocol and mapping errors, and
// running out of attempts, flag the entry as failed and leave the canonical
// status untouched.
type FulfillRestaurantCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	registry   ports.ProviderRegistry
	dispatcher ports.TaskDispatcher
	applier    RestaurantStatusApplier
	reconciler OrderReconciler
	opts       PollingOptions
	logger     *slog.Logger
}

// NewFulfillRestaurantCommandHandler creates the restaurant worker.
func NewFulfillRestaurantCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	registry ports.ProviderRegistry,
	dispatcher ports.TaskDispatcher,
	applier RestaurantStatusApplier,
	reconciler OrderReconciler,
	opts PollingOptions,
	logger *slog.Logger,
) *FulfillRestaurantCommandHandler {
	return &FulfillRestaurantCommandHandler{
		repo:       repo,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		applier:    applier,
		reconciler: reconciler,
		opts:       opts,
		logger:     logger.With("component", "restaurant_worker"),
	}
}

// Handle runs one worker step.
func (h *FulfillRestaurantCommandHandler) Handle(ctx context.Context, cmd FulfillRestaurantCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	log := h.logger.With("order_id", cmd.OrderID(), "restaurant_id", cmd.RestaurantKey(), "attempt", cmd.Attempt())

	rec, err := h.store.Read(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		retired, missingErr := resolveMissingRecord(ctx, h.repo, cmd.OrderID(), order.Cooked, err)
		if retired {
			log.InfoContext(ctx, "tracking record retired, nothing to do")
		}
		return missingErr
	}
	if err != nil {
		return err
	}

	entry, err := rec.Restaurant(cmd.RestaurantKey())
	if err != nil {
		return err
	}
	if entry.Failure != "" {
		log.WarnContext(ctx, "restaurant entry already failed", "failure", entry.Failure)
		return nil
	}
	if entry.Status.IsAtLeast(order.Cooked) {
		return h.reconcile(ctx, cmd.OrderID())
	}

	grouped, err := h.repo.ItemsGroupedByRestaurant(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	group, ok := grouped[cmd.RestaurantKey()]
	if !ok {
		return errs.NewObjectNotFoundError("restaurant", cmd.RestaurantKey())
	}
	provider, err := h.registry.Restaurant(group.Restaurant.Name())
	if err != nil {
		return err
	}
	log = log.With("provider", provider.Name())

	if !entry.IsPlaced() {
		return h.place(ctx, log, cmd, provider, group)
	}
	return h.poll(ctx, log, cmd, provider, *entry.ExternalID)
}

func (h *FulfillRestaurantCommandHandler) place(
	ctx context.Context,
	log *slog.Logger,
	cmd FulfillRestaurantCommand,
	provider ports.RestaurantProvider,
	group order.RestaurantItems,
) error {
	lines := make([]ports.OrderLine, 0, len(group.Items))
	for _, item := range group.Items {
		lines = append(lines, ports.OrderLine{Dish: item.DishName(), Quantity: item.Quantity()})
	}

	var created ports.ProviderOrder
	err := h.opts.Retry.run(ctx, func() error {
		var callErr error
		created, callErr = provider.CreateOrder(ctx, lines)
		return callErr
	})
	if err != nil {
		return h.retryOrFail(ctx, log, cmd, err)
	}

	status, err := provider.MapStatus(created.Status)
	if err != nil {
		return h.fail(ctx, log, cmd, err)
	}

	rec, _, err := updateRecord(ctx, h.store, cmd.OrderID(), h.opts.CASRetries,
		func(r *tracking.Record) (bool, error) {
			return r.PlaceRestaurant(cmd.RestaurantKey(), created.ExternalID, status)
		})
	if err != nil {
		return err
	}

	stored := rec.Restaurants[cmd.RestaurantKey()]
	if stored.ExternalID == nil || *stored.ExternalID != created.ExternalID {
		log.WarnContext(ctx, "restaurant order placed concurrently, keeping the stored one",
			"external_id", created.ExternalID)
	} else {
		ref := tracking.ExternalRef{OrderID: cmd.OrderID(), RestaurantKey: cmd.RestaurantKey()}
		if err = h.store.PutExternalRef(ctx, provider.Name(), created.ExternalID, ref); err != nil {
			return err
		}
		log.InfoContext(ctx, "restaurant order placed",
			"external_id", created.ExternalID, "status", status.String())
	}

	if err = h.reconcile(ctx, cmd.OrderID()); err != nil {
		return err
	}
	if stored.Status.IsAtLeast(order.Cooked) {
		return nil
	}
	return h.next(ctx, cmd)
}

func (h *FulfillRestaurantCommandHandler) poll(
	ctx context.Context,
	log *slog.Logger,
	cmd FulfillRestaurantCommand,
	provider ports.RestaurantProvider,
	externalID string,
) error {
	var got ports.ProviderOrder
	err := h.opts.Retry.run(ctx, func() error {
		var callErr error
		got, callErr = provider.GetOrder(ctx, externalID)
		return callErr
	})
	if err != nil {
		return h.retryOrFail(ctx, log, cmd, err)
	}

	status, err := provider.MapStatus(got.Status)
	if err != nil {
		return h.fail(ctx, log, cmd, err)
	}

	apply, err := NewApplyRestaurantStatusCommand(cmd.OrderID(), cmd.RestaurantKey(), status)
	if err != nil {
		return err
	}
	result, err := h.applier.Handle(ctx, apply)
	if err != nil {
		return err
	}
	if result.Retired {
		return nil
	}

	current := result.Record.Restaurants[cmd.RestaurantKey()].Status
	if result.Changed {
		log.InfoContext(ctx, "restaurant status changed", "external_id", externalID, "status", current.String())
	}
	if current.IsAtLeast(order.Cooked) {
		return nil
	}
	if cmd.Attempt() >= h.opts.MaxAttempts {
		return h.fail(ctx, log, cmd, fmt.Errorf("%w: %d attempts", errs.ErrPollingExhausted, cmd.Attempt()))
	}
	return h.next(ctx, cmd)
}

// retryOrFail leaves transient failures to the next step while attempts remain.
func (h *FulfillRestaurantCommandHandler) retryOrFail(
	ctx context.Context,
	log *slog.Logger,
	cmd FulfillRestaurantCommand,
	err error,
) error {
	if !errors.Is(err, errs.ErrTransientNetwork) {
		return h.fail(ctx, log, cmd, err)
	}
	if cmd.Attempt() >= h.opts.MaxAttempts {
		return h.fail(ctx, log, cmd, fmt.Errorf("%w: %w", errs.ErrPollingExhausted, err))
	}
	log.WarnContext(ctx, "provider unavailable, retrying later", "error", err)
	return h.next(ctx, cmd)
}

// fail flags the restaurant entry and surfaces the cause.
func (h *FulfillRestaurantCommandHandler) fail(
	ctx context.Context,
	log *slog.Logger,
	cmd FulfillRestaurantCommand,
	cause error,
) error {
	log.ErrorContext(ctx, "restaurant worker failed", "alarm", true, "error", cause)

	_, _, err := updateRecord(ctx, h.store, cmd.OrderID(), h.opts.CASRetries,
		func(r *tracking.Record) (bool, error) {
			if err := r.FailRestaurant(cmd.RestaurantKey(), cause.Error()); err != nil {
				return false, err
			}
			return true, nil
		})
	return errors.Join(cause, err)
}

func (h *FulfillRestaurantCommandHandler) reconcile(ctx context.Context, orderID int64) error {
	cmd, err := NewReconcileOrderCommand(orderID)
	if err != nil {
		return err
	}
	return h.reconciler.Handle(ctx, cmd)
}

func (h *FulfillRestaurantCommandHandler) next(ctx context.Context, cmd FulfillRestaurantCommand) error {
	task := ports.NewTask(ports.WorkerFulfillRestaurant, cmd.OrderID(), cmd.RestaurantKey())
	task.Attempt = cmd.Attempt() + 1
	return h.dispatcher.Enqueue(ctx, task, ports.QueueHighPriority, h.opts.Interval)
}
