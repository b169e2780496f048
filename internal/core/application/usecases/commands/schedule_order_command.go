package commands

import (
	"errors"
	"fmt"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrScheduleOrderCommandIsNotConstructed = errors.New(
	"ScheduleOrderCommand must be created via NewScheduleOrderCommand constructor",
)

// ScheduleOrderCommand starts fulfilment of an accepted order.
//
// Example:
//
//	cmd, err := NewScheduleOrderCommand(42)
//	if err != nil {
//	    return err
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("schedule order: %w", err)
//	}
type ScheduleOrderCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

// NewScheduleOrderCommand creates the command.
func NewScheduleOrderCommand(orderID int64) (ScheduleOrderCommand, error) {
	if orderID <= 0 {
		return ScheduleOrderCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	return ScheduleOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ScheduleOrderCommand) Validate() error {
	return c.guard.Validate(ErrScheduleOrderCommandIsNotConstructed)
}

// OrderID returns the order to schedule.
func (c ScheduleOrderCommand) OrderID() int64 {
	return c.orderID
}
