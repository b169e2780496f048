package commands

import (
	"errors"
	"fmt"

	"catering/internal/core/domain/model/kernel"
	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrApplyDeliveryStatusCommandIsNotConstructed = errors.New(
	"ApplyDeliveryStatusCommand must be created via NewApplyDeliveryStatusCommand constructor",
)

// ApplyDeliveryStatusCommand carries a delivery status and optional courier
// location observed by polling or by a delivery webhook.
type ApplyDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID  int64
	status   order.Status
	location *kernel.Location

	guard guard.ConstructorGuard
}

// NewApplyDeliveryStatusCommand creates the command. location may be nil when
// the provider did not report one.
func NewApplyDeliveryStatusCommand(
	orderID int64,
	status order.Status,
	location *kernel.Location,
) (ApplyDeliveryStatusCommand, error) {
	if orderID <= 0 {
		return ApplyDeliveryStatusCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	if status.IsBefore(order.DeliveryLookup) || order.Delivered.IsBefore(status) {
		return ApplyDeliveryStatusCommand{}, errs.NewValueIsOutOfRangeError(
			"delivery status", status, order.DeliveryLookup, order.Delivered)
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return ApplyDeliveryStatusCommand{}, err
		}
	}

	return ApplyDeliveryStatusCommand{
		orderID:  orderID,
		status:   status,
		location: location,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyDeliveryStatusCommandIsNotConstructed)
}

func (c ApplyDeliveryStatusCommand) OrderID() int64             { return c.orderID }
func (c ApplyDeliveryStatusCommand) Status() order.Status       { return c.status }
func (c ApplyDeliveryStatusCommand) Location() *kernel.Location { return c.location }
