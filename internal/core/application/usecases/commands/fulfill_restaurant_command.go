package commands

import (
	"errors"
	"fmt"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var ErrFulfillRestaurantCommandIsNotConstructed = errors.New(
	"FulfillRestaurantCommand must be created via NewFulfillRestaurantCommand constructor",
)

// FulfillRestaurantCommand runs one step of the restaurant worker for one
// (order, restaurant) pair. Attempt counts the steps taken so far.
type FulfillRestaurantCommand struct { //nolint:recvcheck //using for validation
	orderID       int64
	restaurantKey string
	attempt       int

	guard guard.ConstructorGuard
}

// NewFulfillRestaurantCommand creates the command.
func NewFulfillRestaurantCommand(orderID int64, restaurantKey string, attempt int) (FulfillRestaurantCommand, error) {
	cmd := FulfillRestaurantCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRestaurantKey(restaurantKey),
		cmd.setAttempt(attempt),
	); err != nil {
		return FulfillRestaurantCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c FulfillRestaurantCommand) Validate() error {
	return c.guard.Validate(ErrFulfillRestaurantCommandIsNotConstructed)
}

// OrderID returns the order being fulfilled.
func (c FulfillRestaurantCommand) OrderID() int64 {
	return c.orderID
}

// RestaurantKey returns the tracking key of the restaurant.
func (c FulfillRestaurantCommand) RestaurantKey() string {
	return c.restaurantKey
}

// Attempt returns the 1-based step number.
func (c FulfillRestaurantCommand) Attempt() int {
	return c.attempt
}

func (c *FulfillRestaurantCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", orderID))
	}
	c.orderID = orderID
	return nil
}

func (c *FulfillRestaurantCommand) setRestaurantKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("restaurant id")
	}
	c.restaurantKey = key
	return nil
}

func (c *FulfillRestaurantCommand) setAttempt(attempt int) error {
	if attempt < 1 {
		return errs.NewValueIsInvalidErrorWithCause("attempt", fmt.Errorf("%d is less than 1", attempt))
	}
	c.attempt = attempt
	return nil
}
