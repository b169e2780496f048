package commands

import (
	"errors"
	"fmt"

	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrNotifyStatusCommandIsNotConstructed = errors.New(
	"NotifyStatusCommand must be created via NewNotifyStatusCommand constructor",
)

// NotifyStatusCommand announces a committed canonical transition.
type NotifyStatusCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	status  order.Status

	guard guard.ConstructorGuard
}

// NewNotifyStatusCommand creates the command.
func NewNotifyStatusCommand(orderID int64, status order.Status) (NotifyStatusCommand, error) {
	if orderID <= 0 {
		return NotifyStatusCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	if err := status.Validate(); err != nil {
		return NotifyStatusCommand{}, err
	}
	return NotifyStatusCommand{orderID: orderID, status: status, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c NotifyStatusCommand) Validate() error {
	return c.guard.Validate(ErrNotifyStatusCommandIsNotConstructed)
}

func (c NotifyStatusCommand) OrderID() int64       { return c.orderID }
func (c NotifyStatusCommand) Status() order.Status { return c.status }
