// Package queries contains read operations for operators watching fulfilment.
// Queries bypass the domain model and return flat read models.
package queries

import (
	"errors"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/guard"
)

var (
	ErrGetInFlightOrdersQueryIsNotConstructed = errors.New(
		"GetInFlightOrdersQuery must be created via NewGetInFlightOrdersQuery constructor",
	)
)

// GetInFlightOrdersQuery lists every scheduled order that is not delivered yet.
//
// Example:
//
//	query := NewGetInFlightOrdersQuery()
//	handler := NewGetInFlightOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list in-flight orders: %w", err)
//	}
//
//	for _, o := range orders {
//	    fmt.Printf("order %d is %s at %d restaurants\n", o.ID, o.Status, o.Restaurants)
//	}
type GetInFlightOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetInFlightOrdersQuery creates the parameterless in-flight listing query.
func NewGetInFlightOrdersQuery() GetInFlightOrdersQuery {
	return GetInFlightOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetInFlightOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetInFlightOrdersQueryIsNotConstructed)
}

// GetInFlightOrdersQueryResponse is one in-flight order.
type GetInFlightOrdersQueryResponse struct {
	ID               int64        `json:"id"`
	Status           order.Status `json:"status"`
	DeliveryProvider string       `json:"delivery_provider"`
	ETA              time.Time    `json:"eta"`
	ScheduledAt      time.Time    `json:"scheduled_at"`
	Restaurants      int          `json:"restaurants"`
}
