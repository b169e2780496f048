package commands

import (
	"errors"
	"fmt"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrReconcileOrderCommandIsNotConstructed = errors.New(
	"ReconcileOrderCommand must be created via NewReconcileOrderCommand constructor",
)

// ReconcileOrderCommand asks for the canonical status of an order to be
// re-derived from its tracking record.
type ReconcileOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        int64
	queuedDelivery bool

	guard guard.ConstructorGuard
}

// NewReconcileOrderCommand creates a reconciliation request for one order.
func NewReconcileOrderCommand(orderID int64) (ReconcileOrderCommand, error) {
	if orderID <= 0 {
		return ReconcileOrderCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	return ReconcileOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReconcileOrderCommand) Validate() error {
	return c.guard.Validate(ErrReconcileOrderCommandIsNotConstructed)
}

// OrderID returns the order to reconcile.
func (c ReconcileOrderCommand) OrderID() int64 {
	return c.orderID
}

// QueuedDelivery reports whether a delivery dispatch must go through the
// queue even when inline dispatch is configured.
func (c ReconcileOrderCommand) QueuedDelivery() bool {
	return c.queuedDelivery
}

// WithQueuedDelivery returns a copy that never runs delivery inline.
func (c ReconcileOrderCommand) WithQueuedDelivery() ReconcileOrderCommand {
	c.queuedDelivery = true
	return c
}
