package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// ErrOrderIsNotCooked is returned when a delivery task arrives for an order that
// has not been cooked yet.
var ErrOrderIsNotCooked = errors.New("order is not cooked")

// FormatPickupComment is the comment attached to each pickup stop.
func FormatPickupComment(restaurantName string) string {
	return "Delivery to the " + restaurantName
}

// DeliverOrderCommandHandler is the delivery worker, one per order.
//
//	LOOKUP     canonical COOKED -> DELIVERY_LOOKUP, collect pickup addresses
//	REQUESTED  create the delivery order, store its id, status and location
//	POLLING    query the provider, apply status and location changes
//	DELIVERED  terminal; reconciliation marks the order and retires the record
//
// As with restaurants, the delivery external id is stored before polling so a
// duplicated task never books a second courier. Creation itself runs under a
// lease kept in the tracking record: a task that finds the lease held checks
// back one interval later and polls whatever the holder placed. A holder that
// dies loses the lease after PollingOptions.DeliveryLease.
type DeliverOrderCommandHandler struct {
	repo       ports.OrderRepository
	store      ports.TrackingStore
	registry   ports.ProviderRegistry
	dispatcher ports.TaskDispatcher
	applier    DeliveryStatusApplier
	reconciler OrderReconciler
	opts       PollingOptions
	now        func() time.Time
	logger     *slog.Logger
}

// NewDeliverOrderCommandHandler creates the delivery worker.
func NewDeliverOrderCommandHandler(
	repo ports.OrderRepository,
	store ports.TrackingStore,
	registry ports.ProviderRegistry,
	dispatcher ports.TaskDispatcher,
	applier DeliveryStatusApplier,
	reconciler OrderReconciler,
	opts PollingOptions,
	logger *slog.Logger,
) *DeliverOrderCommandHandler {
	return &DeliverOrderCommandHandler{
		repo:       repo,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		applier:    applier,
		reconciler: reconciler,
		opts:       opts,
		now:        time.Now,
		logger:     logger.With("component", "delivery_worker"),
	}
}

// Handle runs one worker step.
func (h *DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	log := h.logger.With("order_id", cmd.OrderID(), "attempt", cmd.Attempt())

	o, err := h.repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if o.Status().IsAtLeast(order.Delivered) {
		return nil
	}
	if o.Status().IsBefore(order.Cooked) {
		return fmt.Errorf("%w: order %d is %s", ErrOrderIsNotCooked, o.ID(), o.Status())
	}

	rec, err := h.store.Read(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrTrackingRecordMissing) {
		_, err = resolveMissingRecord(ctx, h.repo, cmd.OrderID(), order.Delivered, err)
		return err
	}
	if err != nil {
		return err
	}
	if rec.Delivery.Failure != "" {
		log.WarnContext(ctx, "delivery entry already failed", "failure", rec.Delivery.Failure)
		return nil
	}

	provider, err := h.registry.Delivery(o.DeliveryProvider())
	if err != nil {
		return err
	}
	log = log.With("provider", provider.Name())

	if !rec.Delivery.IsPlaced() {
		return h.request(ctx, log, cmd, provider)
	}
	return h.poll(ctx, log, cmd, provider, *rec.Delivery.ExternalID)
}

func (h *DeliverOrderCommandHandler) request(
	ctx context.Context,
	log *slog.Logger,
	cmd DeliverOrderCommand,
	provider ports.DeliveryProvider,
) error {
	changed, err := h.repo.ConditionalUpdateStatus(ctx, cmd.OrderID(), order.Cooked, order.DeliveryLookup)
	if err != nil {
		return err
	}
	if changed {
		if err = enqueueNotification(ctx, h.dispatcher, cmd.OrderID(), order.DeliveryLookup); err != nil {
			log.WarnContext(ctx, "failed to enqueue status notification", "error", err)
		}
	}

	var claimed bool
	current, _, err := updateRecord(ctx, h.store, cmd.OrderID(), h.opts.CASRetries,
		func(r *tracking.Record) (bool, error) {
			claimed = r.ClaimDelivery(h.now(), h.opts.DeliveryLease)
			return claimed, nil
		})
	if err != nil {
		return err
	}
	if !claimed {
		if current.Delivery.IsPlaced() {
			return h.poll(ctx, log, cmd, provider, *current.Delivery.ExternalID)
		}
		log.InfoContext(ctx, "delivery creation in progress elsewhere, checking back later",
			"claimed_until", current.Delivery.ClaimedUntil)
		return h.next(ctx, cmd)
	}

	req, err := h.lookup(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	var created ports.DeliveryOrder
	err = h.opts.Retry.run(ctx, func() error {
		var callErr error
		created, callErr = provider.CreateOrder(ctx, req)
		return callErr
	})
	if err != nil {
		return h.retryOrFail(ctx, log, cmd, err)
	}

	mapped, err := provider.MapStatus(created.Status)
	if err != nil {
		return h.fail(ctx, log, cmd, err)
	}
	// a courier is assigned as soon as the delivery order exists
	status, _ := order.Delivery.Advance(mapped)

	rec, _, err := updateRecord(ctx, h.store, cmd.OrderID(), h.opts.CASRetries,
		func(r *tracking.Record) (bool, error) {
			return r.PlaceDelivery(created.ExternalID, status, created.Location)
		})
	if err != nil {
		return err
	}

	if rec.Delivery.ExternalID == nil || *rec.Delivery.ExternalID != created.ExternalID {
		log.WarnContext(ctx, "delivery placed concurrently, keeping the stored one",
			"external_id", created.ExternalID)
	} else {
		ref := tracking.ExternalRef{OrderID: cmd.OrderID()}
		if err = h.store.PutExternalRef(ctx, provider.Name(), created.ExternalID, ref); err != nil {
			return err
		}
		log.InfoContext(ctx, "delivery requested",
			"external_id", created.ExternalID, "stops", len(req.Addresses))
	}

	reconcile, err := NewReconcileOrderCommand(cmd.OrderID())
	if err != nil {
		return err
	}
	if err = h.reconciler.Handle(ctx, reconcile); err != nil {
		return err
	}
	if rec.Delivery.Status.IsAtLeast(order.Delivered) {
		return nil
	}
	return h.next(ctx, cmd)
}

// lookup builds one pickup stop per restaurant, ordered by restaurant id.
func (h *DeliverOrderCommandHandler) lookup(ctx context.Context, orderID int64) (ports.DeliveryRequest, error) {
	grouped, err := h.repo.ItemsGroupedByRestaurant(ctx, orderID)
	if err != nil {
		return ports.DeliveryRequest{}, err
	}
	if len(grouped) == 0 {
		return ports.DeliveryRequest{}, errs.NewValueIsRequiredError("order items")
	}

	var req ports.DeliveryRequest
	for _, key := range order.SortedKeys(grouped) {
		restaurant := grouped[key].Restaurant
		req.Addresses = append(req.Addresses, restaurant.Address())
		req.Comments = append(req.Comments, FormatPickupComment(restaurant.Name()))
	}
	return req, nil
}

func (h *DeliverOrderCommandHandler) poll(
	ctx context.Context,
	log *slog.Logger,
	cmd DeliverOrderCommand,
	provider ports.DeliveryProvider,
	externalID string,
) error {
	var got ports.DeliveryOrder
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

	apply, err := NewApplyDeliveryStatusCommand(cmd.OrderID(), status, got.Location)
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

	current := result.Record.Delivery
	if result.Changed {
		log.InfoContext(ctx, "delivery updated", "status", current.Status.String(), "location", current.Location)
	}
	if current.Status.IsAtLeast(order.Delivered) {
		log.InfoContext(ctx, "order delivered")
		return nil
	}
	if cmd.Attempt() >= h.opts.MaxAttempts {
		return h.fail(ctx, log, cmd, fmt.Errorf("%w: %d attempts", errs.ErrPollingExhausted, cmd.Attempt()))
	}
	return h.next(ctx, cmd)
}

func (h *DeliverOrderCommandHandler) retryOrFail(
	ctx context.Context,
	log *slog.Logger,
	cmd DeliverOrderCommand,
	err error,
) error {
	if !errors.Is(err, errs.ErrTransientNetwork) {
		return h.fail(ctx, log, cmd, err)
	}
	if cmd.Attempt() >= h.opts.MaxAttempts {
		return h.fail(ctx, log, cmd, fmt.Errorf("%w: %w", errs.ErrPollingExhausted, err))
	}
	log.WarnContext(ctx, "delivery provider unavailable, retrying later", "error", err)
	return h.next(ctx, cmd)
}

func (h *DeliverOrderCommandHandler) fail(
	ctx context.Context,
	log *slog.Logger,
	cmd DeliverOrderCommand,
	cause error,
) error {
	log.ErrorContext(ctx, "delivery worker failed", "alarm", true, "error", cause)

	_, _, err := updateRecord(ctx, h.store, cmd.OrderID(), h.opts.CASRetries,
		func(r *tracking.Record) (bool, error) {
			r.FailDelivery(cause.Error())
			return true, nil
		})
	return errors.Join(cause, err)
}

func (h *DeliverOrderCommandHandler) next(ctx context.Context, cmd DeliverOrderCommand) error {
	task := ports.NewTask(ports.WorkerDeliverOrder, cmd.OrderID(), "")
	task.Attempt = cmd.Attempt() + 1
	return h.dispatcher.Enqueue(ctx, task, ports.QueueDefault, h.opts.Interval)
}
