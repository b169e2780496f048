package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// ScheduleOrderCommandHandler hands an accepted order over to the workers.
//
// Inside one transaction it stamps scheduled_at (only if still empty),
// initialises the tracking record with one NotStarted entry per restaurant and
// enqueues one restaurant worker per restaurant on the high priority queue.
// Every restaurant must map to a known provider before anything is written.
// If enqueueing fails the transaction rolls back and the next scheduling run
// picks the order up again; an already initialised record is reused.
type ScheduleOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	store      ports.TrackingStore
	registry   ports.ProviderRegistry
	dispatcher ports.TaskDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// NewScheduleOrderCommandHandler creates the handler.
func NewScheduleOrderCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	store ports.TrackingStore,
	registry ports.ProviderRegistry,
	dispatcher ports.TaskDispatcher,
	logger *slog.Logger,
) *ScheduleOrderCommandHandler {
	return &ScheduleOrderCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.With("component", "scheduler"),
	}
}

// Handle schedules the order. Orders that are already scheduled are skipped.
func (h *ScheduleOrderCommandHandler) Handle(ctx context.Context, cmd ScheduleOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	grouped, err := repo.ItemsGroupedByRestaurant(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if len(grouped) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}

	keys := order.SortedKeys(grouped)
	for _, key := range keys {
		if _, err = h.registry.Restaurant(grouped[key].Restaurant.Name()); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("restaurant "+grouped[key].Restaurant.Name(), err)
		}
	}

	scheduled, err := repo.MarkScheduled(ctx, cmd.OrderID(), h.now())
	if err != nil {
		return err
	}
	if !scheduled {
		h.logger.DebugContext(ctx, "order already scheduled", "order_id", cmd.OrderID())
		return nil
	}

	rec, err := tracking.NewRecord(cmd.OrderID(), keys)
	if err != nil {
		return err
	}
	err = h.store.Init(ctx, rec)
	if errors.Is(err, errs.ErrTrackingRecordExists) {
		h.logger.WarnContext(ctx, "reusing existing tracking record", "order_id", cmd.OrderID())
	} else if err != nil {
		return err
	}

	for _, key := range keys {
		task := ports.NewTask(ports.WorkerFulfillRestaurant, cmd.OrderID(), key)
		if err = h.dispatcher.Enqueue(ctx, task, ports.QueueHighPriority, 0); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order scheduled", "order_id", cmd.OrderID(), "restaurants", keys)
	return nil
}
