package commands

import (
	"errors"
	"fmt"

	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrApplyRestaurantStatusCommandIsNotConstructed = errors.New(
	"ApplyRestaurantStatusCommand must be created via NewApplyRestaurantStatusCommand constructor",
)

// ApplyRestaurantStatusCommand carries a canonical restaurant status observed
// either by polling or by a provider webhook.
type ApplyRestaurantStatusCommand struct { //nolint:recvcheck //using for validation
	orderID       int64
	restaurantKey string
	status        order.Status
	viaWebhook    bool

	guard guard.ConstructorGuard
}

// NewApplyRestaurantStatusCommand creates the command. The status must be one
// a restaurant can report, NotStarted through Cooked.
func NewApplyRestaurantStatusCommand(
	orderID int64,
	restaurantKey string,
	status order.Status,
) (ApplyRestaurantStatusCommand, error) {
	cmd := ApplyRestaurantStatusCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRestaurantKey(restaurantKey),
		cmd.setStatus(status),
	); err != nil {
		return ApplyRestaurantStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyRestaurantStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyRestaurantStatusCommandIsNotConstructed)
}

func (c ApplyRestaurantStatusCommand) OrderID() int64       { return c.orderID }
func (c ApplyRestaurantStatusCommand) RestaurantKey() string { return c.restaurantKey }
func (c ApplyRestaurantStatusCommand) Status() order.Status  { return c.status }
func (c ApplyRestaurantStatusCommand) ViaWebhook() bool      { return c.viaWebhook }

// FromWebhook marks the status as pushed by the provider. Delivery dispatched
// while applying it is always queued so the webhook response is not held up.
func (c ApplyRestaurantStatusCommand) FromWebhook() ApplyRestaurantStatusCommand {
	c.viaWebhook = true
	return c
}

func (c *ApplyRestaurantStatusCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", orderID))
	}
	c.orderID = orderID
	return nil
}

func (c *ApplyRestaurantStatusCommand) setRestaurantKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("restaurant id")
	}
	c.restaurantKey = key
	return nil
}

func (c *ApplyRestaurantStatusCommand) setStatus(status order.Status) error {
	if status.IsBefore(order.NotStarted) || order.Cooked.IsBefore(status) {
		return errs.NewValueIsOutOfRangeError("restaurant status", status, order.NotStarted, order.Cooked)
	}
	c.status = status
	return nil
}
