package tracking

import (
	"fmt"
	"sort"
	"time"

	"catering/internal/core/domain/model/kernel"
	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"
)

// RestaurantEntry tracks the sub-order placed at one restaurant.
type RestaurantEntry struct {
	// ExternalID is the provider's order id, nil until the sub-order is placed.
	ExternalID *string `json:"external_id"`

	// Status is the canonical status mapped from the provider status.
	Status order.Status `json:"status"`

	// Failure is set when the worker gave up on this restaurant. It is not a
	// canonical status and never moves Status.
	Failure string `json:"failure,omitempty"`
}

// IsPlaced reports whether the upstream sub-order exists.
func (e RestaurantEntry) IsPlaced() bool {
	return e.ExternalID != nil
}

// DeliveryEntry tracks the delivery request.
type DeliveryEntry struct {
	ExternalID *string          `json:"external_id,omitempty"`
	Status     order.Status     `json:"status"`
	Location   *kernel.Location `json:"location"`
	Failure    string           `json:"failure,omitempty"`

	// ClaimedUntil is the end of the lease held by the worker creating the
	// delivery order.
	ClaimedUntil *time.Time `json:"claimed_until,omitempty"`
}

// IsPlaced reports whether the delivery order exists at the provider.
func (e DeliveryEntry) IsPlaced() bool {
	return e.ExternalID != nil
}

// Record is the ephemeral aggregate of every sub-order status of one order.
// It lives in the tracking store and is only ever changed through
// compare-and-swap, Version being the token that is compared.
type Record struct {
	OrderID     int64                      `json:"-"`
	Restaurants map[string]RestaurantEntry `json:"restaurants"`
	Delivery    DeliveryEntry              `json:"delivery"`
	Version     int64                      `json:"version"`
}

// NewRecord creates the initial record of an order with one NotStarted entry per
// restaurant. All entries exist before any worker starts, so no worker ever has
// to create its own entry.
//
// Example:
//
//	rec, err := tracking.NewRecord(42, []string{"1", "2"})
//	// {"restaurants":{"1":{"external_id":null,"status":"NOT_STARTED"}, ...},
//	//  "delivery":{"status":"NOT_STARTED","location":null},"version":0}
func NewRecord(orderID int64, restaurantKeys []string) (Record, error) {
	if orderID <= 0 {
		return Record{}, errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not positive", orderID))
	}
	if len(restaurantKeys) == 0 {
		return Record{}, errs.NewValueIsRequiredError("restaurant ids")
	}

	restaurants := make(map[string]RestaurantEntry, len(restaurantKeys))
	for _, key := range restaurantKeys {
		if key == "" {
			return Record{}, errs.NewValueIsRequiredError("restaurant id")
		}
		if _, dup := restaurants[key]; dup {
			return Record{}, errs.NewValueIsInvalidErrorWithCause("restaurant ids", fmt.Errorf("duplicate %q", key))
		}
		restaurants[key] = RestaurantEntry{Status: order.NotStarted}
	}

	return Record{
		OrderID:     orderID,
		Restaurants: restaurants,
		Delivery:    DeliveryEntry{Status: order.NotStarted},
	}, nil
}

// Clone returns a deep copy, so mutators never alias the stored value.
func (r Record) Clone() Record {
	clone := r
	clone.Restaurants = make(map[string]RestaurantEntry, len(r.Restaurants))
	for key, entry := range r.Restaurants {
		if entry.ExternalID != nil {
			id := *entry.ExternalID
			entry.ExternalID = &id
		}
		clone.Restaurants[key] = entry
	}
	if r.Delivery.ExternalID != nil {
		id := *r.Delivery.ExternalID
		clone.Delivery.ExternalID = &id
	}
	if r.Delivery.Location != nil {
		loc := *r.Delivery.Location
		clone.Delivery.Location = &loc
	}
	if r.Delivery.ClaimedUntil != nil {
		until := *r.Delivery.ClaimedUntil
		clone.Delivery.ClaimedUntil = &until
	}
	return clone
}

// RestaurantKeys returns the restaurant keys in sorted order.
func (r Record) RestaurantKeys() []string {
	keys := make([]string, 0, len(r.Restaurants))
	for key := range r.Restaurants {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Restaurant returns the entry of one restaurant.
func (r Record) Restaurant(key string) (RestaurantEntry, error) {
	entry, ok := r.Restaurants[key]
	if !ok {
		return RestaurantEntry{}, errs.NewObjectNotFoundError("restaurant", key)
	}
	return entry, nil
}

// AllCooked reports whether every restaurant entry reached Cooked.
func (r Record) AllCooked() bool {
	if len(r.Restaurants) == 0 {
		return false
	}
	for _, entry := range r.Restaurants {
		if !entry.Status.IsAtLeast(order.Cooked) {
			return false
		}
	}
	return true
}

// AnyCooking reports whether at least one restaurant started cooking.
func (r Record) AnyCooking() bool {
	for _, entry := range r.Restaurants {
		if entry.Status.IsAtLeast(order.Cooking) {
			return true
		}
	}
	return false
}

// HasFailure reports whether any entry carries a failure flag.
func (r Record) HasFailure() bool {
	for _, entry := range r.Restaurants {
		if entry.Failure != "" {
			return true
		}
	}
	return r.Delivery.Failure != ""
}

// PlaceRestaurant stores the external id of a freshly created sub-order and its
// first status. If another writer already stored an id, that id wins and
// placed is false.
func (r *Record) PlaceRestaurant(key, externalID string, status order.Status) (bool, error) {
	entry, err := r.Restaurant(key)
	if err != nil {
		return false, err
	}
	if externalID == "" {
		return false, errs.NewValueIsRequiredError("external id")
	}
	if entry.IsPlaced() {
		return false, nil
	}

	entry.ExternalID = &externalID
	entry.Status, _ = entry.Status.Advance(status)
	r.Restaurants[key] = entry
	return true, nil
}

// AdvanceRestaurant moves one restaurant forward. Equal or earlier statuses are
// no-ops and report false.
func (r *Record) AdvanceRestaurant(key string, status order.Status) (bool, error) {
	entry, err := r.Restaurant(key)
	if err != nil {
		return false, err
	}
	if status.IsBefore(order.NotStarted) || order.Cooked.IsBefore(status) {
		return false, errs.NewValueIsInvalidErrorWithCause("restaurant status",
			fmt.Errorf("%s is not a restaurant status", status))
	}

	next, changed := entry.Status.Advance(status)
	if !changed {
		return false, nil
	}
	entry.Status = next
	r.Restaurants[key] = entry
	return true, nil
}

// FailRestaurant flags a restaurant entry as failed without touching its status.
func (r *Record) FailRestaurant(key, reason string) error {
	entry, err := r.Restaurant(key)
	if err != nil {
		return err
	}
	entry.Failure = reason
	r.Restaurants[key] = entry
	return nil
}

// PlaceDelivery stores the delivery order id, status and first courier location.
// An already placed delivery is left untouched and placed is false.
func (r *Record) PlaceDelivery(externalID string, status order.Status, location *kernel.Location) (bool, error) {
	if externalID == "" {
		return false, errs.NewValueIsRequiredError("external id")
	}
	if r.Delivery.IsPlaced() {
		return false, nil
	}
	r.Delivery.ExternalID = &externalID
	r.Delivery.Status, _ = r.Delivery.Status.Advance(status)
	r.Delivery.Location = location
	return true, nil
}

// ClaimDelivery takes the lease for creating the delivery order until
// now+lease. It fails when the delivery is placed or another claim is still
// running.
func (r *Record) ClaimDelivery(now time.Time, lease time.Duration) bool {
	if r.Delivery.IsPlaced() || r.DeliveryClaimed(now) {
		return false
	}
	until := now.Add(lease)
	r.Delivery.ClaimedUntil = &until
	return true
}

// DeliveryClaimed reports whether a delivery creation lease is held at now.
func (r Record) DeliveryClaimed(now time.Time) bool {
	return r.Delivery.ClaimedUntil != nil && now.Before(*r.Delivery.ClaimedUntil)
}

// AdvanceDelivery applies a delivery status and courier location. The status
// never moves backwards. A location is taken with any status from
// DeliveryLookup on, since couriers report positions while the provider still
// says lookup.
func (r *Record) AdvanceDelivery(status order.Status, location *kernel.Location) bool {
	next, changed := r.Delivery.Status.Advance(status)
	r.Delivery.Status = next

	if location != nil && status.IsAtLeast(order.DeliveryLookup) &&
		(r.Delivery.Location == nil || !r.Delivery.Location.IsEqual(*location)) {
		loc := *location
		r.Delivery.Location = &loc
		changed = true
	}
	return changed
}

// FailDelivery flags the delivery entry as failed.
func (r *Record) FailDelivery(reason string) {
	r.Delivery.Failure = reason
}

// ExternalRef is the secondary index value that resolves a provider order id
// back to the internal order. RestaurantKey is empty for delivery orders.
type ExternalRef struct {
	OrderID       int64  `json:"internal_order_id"`
	RestaurantKey string `json:"restaurant_id,omitempty"`
}

// IsDelivery reports whether the reference points at a delivery order.
func (r ExternalRef) IsDelivery() bool {
	return r.RestaurantKey == ""
}
