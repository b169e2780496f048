package order

import (
	"errors"
	"fmt"
	"time"

	"catering/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the RestoreOrder factory method.
	ErrOrderIsNotConstructed = errors.New("Order must be created via RestoreOrder constructor")
)

// Order is a customer order as seen by the orchestrator. The durable copy lives in
// the order repository; the orchestrator only reads it and moves its canonical
// status forward through conditional updates.
//
// Order follows these invariants:
//   - Must have a positive identifier
//   - Status must be a canonical status
//   - Delivery provider must be named
//   - Items are immutable after creation
type Order struct {
	id               int64
	status           Status
	eta              time.Time
	total            int
	deliveryProvider string
	scheduledAt      *time.Time
	items            []Item

	isConstructed bool
}

// RestoreOrder rebuilds an Order from persisted state, validating every field.
//
// Parameters:
//   - id: Order primary key (must be positive)
//   - status: Current canonical status
//   - eta: Promised delivery date
//   - total: Order total in minor currency units (must not be negative)
//   - deliveryProvider: Name of the delivery provider, e.g. "uklon"
//   - scheduledAt: When fulfilment was scheduled, nil while the order waits for scheduling
//   - items: Order lines
//
// Example:
//
//	o, err := order.RestoreOrder(42, order.NotStarted, eta, 350, "uklon", nil, items)
//	if err != nil {
//	    return nil, err
//	}
func RestoreOrder(
	id int64,
	status Status,
	eta time.Time,
	total int,
	deliveryProvider string,
	scheduledAt *time.Time,
	items []Item,
) (*Order, error) {
	o := &Order{
		eta:           eta,
		scheduledAt:   scheduledAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setStatus(status),
		o.setTotal(total),
		o.setDeliveryProvider(deliveryProvider),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's identifier.
func (o *Order) ID() int64 {
	return o.id
}

// Status returns the canonical status of the order.
func (o *Order) Status() Status {
	return o.status
}

// ETA returns the promised delivery date.
func (o *Order) ETA() time.Time {
	return o.eta
}

// Total returns the order total.
func (o *Order) Total() int {
	return o.total
}

// DeliveryProvider returns the name of the provider that delivers the order.
func (o *Order) DeliveryProvider() string {
	return o.deliveryProvider
}

// ScheduledAt returns when fulfilment was scheduled, nil if it was not yet.
func (o *Order) ScheduledAt() *time.Time {
	return o.scheduledAt
}

// IsScheduled reports whether fulfilment has been scheduled.
func (o *Order) IsScheduled() bool {
	return o.scheduledAt != nil
}

// IsInFlight reports whether the order has been scheduled and is not delivered yet.
// Only in-flight orders are expected to own a tracking record.
func (o *Order) IsInFlight() bool {
	return o.IsScheduled() && o.status.IsBefore(Delivered)
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// ItemsByRestaurant groups the order lines by restaurant.
// The map is keyed by the restaurant key used in tracking records.
func (o *Order) ItemsByRestaurant() map[string]RestaurantItems {
	return GroupByRestaurant(o.items)
}

func (o *Order) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", id))
	}
	o.id = id
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setTotal(total int) error {
	if total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("total", fmt.Errorf("%d is negative", total))
	}
	o.total = total
	return nil
}

func (o *Order) setDeliveryProvider(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("delivery provider")
	}
	o.deliveryProvider = name
	return nil
}

func (o *Order) setItems(items []Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}
