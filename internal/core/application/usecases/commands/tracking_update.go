package commands

import (
	"context"
	"errors"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// updateRecord is the only write path to tracking records. It reads the record,
// applies mutate through compare-and-swap and starts over on version conflicts,
// giving up with errs.ContentionError after maxRetries attempts.
// changed is false when the mutator had nothing to do.
func updateRecord(
	ctx context.Context,
	store ports.TrackingStore,
	orderID int64,
	maxRetries int,
	mutate ports.Mutator,
) (tracking.Record, bool, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for range maxRetries {
		rec, err := store.Read(ctx, orderID)
		if err != nil {
			return tracking.Record{}, false, err
		}

		updated, err := store.CompareAndSwap(ctx, orderID, rec.Version, mutate)
		if err == nil {
			return updated, updated.Version != rec.Version, nil
		}
		if !errors.Is(err, errs.ErrVersionIsInvalid) {
			return tracking.Record{}, false, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tracking.Record{}, false, ctxErr
		}
		lastErr = err
	}

	return tracking.Record{}, false, errs.NewContentionError(orderID, maxRetries, lastErr)
}

// resolveMissingRecord decides what a missing tracking record means. Once the
// canonical order reached terminal, the record was retired on purpose and the
// caller has nothing left to do (retired is true). Otherwise the loss is fatal.
func resolveMissingRecord(
	ctx context.Context,
	repo ports.OrderRepository,
	orderID int64,
	terminal order.Status,
	cause error,
) (retired bool, err error) {
	o, err := repo.Get(ctx, orderID)
	if err != nil {
		return false, errors.Join(cause, err)
	}
	if o.Status().IsAtLeast(terminal) {
		return true, nil
	}
	return false, cause
}

// enqueueNotification hands a committed canonical transition to the low
// priority notification worker.
func enqueueNotification(ctx context.Context, dispatcher ports.TaskDispatcher, orderID int64, status order.Status) error {
	task := ports.NewTask(ports.WorkerNotifyStatus, orderID, "")
	task.Status = status.String()
	return dispatcher.Enqueue(ctx, task, ports.QueueLowPriority, 0)
}
