package ports

import (
	"context"

	"catering/internal/core/domain/model/kernel"
	"catering/internal/core/domain/model/order"
)

// StatusMapper translates a provider status into the canonical vocabulary.
// Unknown values fail with errs.UnmappedStatusError, never a default.
type StatusMapper interface {
	Name() string
	MapStatus(raw string) (order.Status, error)
}

// OrderLine is one dish sent to a restaurant provider.
type OrderLine struct {
	Dish     string
	Quantity int
}

// ProviderOrder is a restaurant provider's view of a sub-order.
// Status is the raw provider value.
type ProviderOrder struct {
	ExternalID string
	Status     string
}

// RestaurantProvider is implemented once per restaurant integration.
//
// Errors are errs.TransientNetworkError for connectivity, timeouts and 5xx, and
// errs.ProviderProtocolError for malformed or unexpected responses.
type RestaurantProvider interface {
	StatusMapper
	CreateOrder(ctx context.Context, lines []OrderLine) (ProviderOrder, error)
	GetOrder(ctx context.Context, externalID string) (ProviderOrder, error)
}

// DeliveryRequest lists the pickup stops of a delivery, one per restaurant.
type DeliveryRequest struct {
	Addresses []string
	Comments  []string
}

// DeliveryOrder is the delivery provider's view of a delivery.
type DeliveryOrder struct {
	ExternalID string
	Status     string
	Location   *kernel.Location
}

// DeliveryProvider is implemented once per delivery integration.
type DeliveryProvider interface {
	StatusMapper
	CreateOrder(ctx context.Context, req DeliveryRequest) (DeliveryOrder, error)
	GetOrder(ctx context.Context, externalID string) (DeliveryOrder, error)
}

// ProviderRegistry resolves provider integrations by name, case-insensitively.
// Lookups of unknown names return errs.ObjectNotFoundError.
type ProviderRegistry interface {
	Restaurant(name string) (RestaurantProvider, error)
	Delivery(name string) (DeliveryProvider, error)
	Mapper(name string) (StatusMapper, error)
}
