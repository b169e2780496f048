package commands

import (
	"errors"
	"fmt"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrDeliverOrderCommandIsNotConstructed = errors.New(
	"DeliverOrderCommand must be created via NewDeliverOrderCommand constructor",
)

// DeliverOrderCommand runs one step of the delivery worker of an order.
type DeliverOrderCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	attempt int

	guard guard.ConstructorGuard
}

// NewDeliverOrderCommand creates the command.
func NewDeliverOrderCommand(orderID int64, attempt int) (DeliverOrderCommand, error) {
	if orderID <= 0 {
		return DeliverOrderCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	if attempt < 1 {
		return DeliverOrderCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"attempt", fmt.Errorf("%d is less than 1", attempt))
	}
	return DeliverOrderCommand{orderID: orderID, attempt: attempt, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c DeliverOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeliverOrderCommandIsNotConstructed)
}

func (c DeliverOrderCommand) OrderID() int64 { return c.orderID }
func (c DeliverOrderCommand) Attempt() int   { return c.attempt }
