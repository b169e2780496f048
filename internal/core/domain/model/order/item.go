package order

import (
	"errors"
	"sort"
	"strconv"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

const (
	// MinQuantity is the smallest quantity an order line may carry.
	MinQuantity = 1
	// MaxQuantity is the largest quantity an order line may carry.
	MaxQuantity = 20
)

var (
	ErrItemIsNotConstructed       = errors.New("Item must be created via NewItem constructor")
	ErrRestaurantIsNotConstructed = errors.New("Restaurant must be created via NewRestaurant constructor")
)

// Restaurant identifies the place that prepares a dish and where the courier
// picks it up.
type Restaurant struct {
	id      int64
	name    string
	address string
	guard   guard.ConstructorGuard
}

// NewRestaurant creates a Restaurant. Name selects the provider integration and
// address is the pickup address handed to the delivery provider.
func NewRestaurant(id int64, name, address string) (Restaurant, error) {
	if id <= 0 {
		return Restaurant{}, errs.NewValueIsRequiredError("restaurant id")
	}
	if name == "" {
		return Restaurant{}, errs.NewValueIsRequiredError("restaurant name")
	}
	return Restaurant{id: id, name: name, address: address, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the restaurant was created via NewRestaurant.
func (r Restaurant) Validate() error {
	return r.guard.Validate(ErrRestaurantIsNotConstructed)
}

func (r Restaurant) ID() int64       { return r.id }
func (r Restaurant) Name() string    { return r.name }
func (r Restaurant) Address() string { return r.address }

// Key is the restaurant identifier used inside tracking records.
func (r Restaurant) Key() string {
	return strconv.FormatInt(r.id, 10)
}

// Item is one order line. Items are immutable once the order is created.
type Item struct {
	dishID     int64
	dishName   string
	quantity   int
	restaurant Restaurant
	guard      guard.ConstructorGuard
}

// NewItem creates an order line for quantity units of a dish served by restaurant.
func NewItem(dishID int64, dishName string, quantity int, restaurant Restaurant) (Item, error) {
	if dishID <= 0 {
		return Item{}, errs.NewValueIsRequiredError("dish id")
	}
	if dishName == "" {
		return Item{}, errs.NewValueIsRequiredError("dish name")
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return Item{}, errs.NewValueIsOutOfRangeError("quantity", quantity, MinQuantity, MaxQuantity)
	}
	if err := restaurant.Validate(); err != nil {
		return Item{}, err
	}

	return Item{
		dishID:     dishID,
		dishName:   dishName,
		quantity:   quantity,
		restaurant: restaurant,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the item was created via NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) DishID() int64          { return i.dishID }
func (i Item) DishName() string       { return i.dishName }
func (i Item) Quantity() int          { return i.quantity }
func (i Item) Restaurant() Restaurant { return i.restaurant }

// RestaurantItems is the part of an order prepared by one restaurant.
type RestaurantItems struct {
	Restaurant Restaurant
	Items      []Item
}

// GroupByRestaurant groups order lines by restaurant key, keeping line order.
func GroupByRestaurant(items []Item) map[string]RestaurantItems {
	grouped := make(map[string]RestaurantItems)
	for _, item := range items {
		key := item.restaurant.Key()
		group := grouped[key]
		group.Restaurant = item.restaurant
		group.Items = append(group.Items, item)
		grouped[key] = group
	}
	return grouped
}

// SortedKeys returns the restaurant keys of a grouping in ascending numeric order,
// so that callers iterate deterministically.
func SortedKeys(grouped map[string]RestaurantItems) []string {
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return grouped[keys[i]].Restaurant.ID() < grouped[keys[j]].Restaurant.ID()
	})
	return keys
}
