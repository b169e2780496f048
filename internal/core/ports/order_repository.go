package ports

import (
	"context"
	"time"

	"catering/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for canonical orders.
// The orchestrator never rewrites an order wholesale: the canonical status only
// moves through ConditionalUpdateStatus, which is the single source of truth for
// exactly-once side effects such as delivery dispatch.
type OrderRepository interface {
	// Add persists a new order together with its items.
	// Restaurants and dishes referenced by the items must already exist.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its items by identifier.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// ConditionalUpdateStatus sets the status to `to` only if the stored status
	// is at least `from` and still before `to`. It reports whether a row changed,
	// so among concurrent callers exactly one observes true.
	ConditionalUpdateStatus(ctx context.Context, id int64, from, to order.Status) (bool, error)

	// ItemsGroupedByRestaurant returns the order lines keyed by restaurant key.
	ItemsGroupedByRestaurant(ctx context.Context, id int64) (map[string]order.RestaurantItems, error)

	// MarkScheduled stamps scheduled_at if the order was not scheduled yet and
	// reports whether this call did it.
	MarkScheduled(ctx context.Context, id int64, at time.Time) (bool, error)

	// GetUnscheduled returns up to limit accepted orders waiting for scheduling,
	// oldest first.
	GetUnscheduled(ctx context.Context, limit int) ([]*order.Order, error)

	// GetAllInFlight returns every scheduled order that is not delivered yet.
	GetAllInFlight(ctx context.Context) ([]*order.Order, error)
}
