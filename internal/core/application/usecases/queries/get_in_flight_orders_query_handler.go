package queries

import (
	"context"

	"catering/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetInFlightOrdersQueryHandler reads in-flight orders straight from the order tables.
type GetInFlightOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetInFlightOrdersQueryHandler creates the handler on top of a GORM connection.
func NewGetInFlightOrdersQueryHandler(db *gorm.DB) GetInFlightOrdersQueryHandler {
	return GetInFlightOrdersQueryHandler{db: db}
}

// Handle returns the in-flight orders sorted by id, each with the number of
// distinct restaurants that prepare it.
func (h GetInFlightOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetInFlightOrdersQuery,
) ([]GetInFlightOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetInFlightOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.status,
			o.delivery_provider,
			o.eta,
			o.scheduled_at,
			COUNT(DISTINCT d.restaurant_id)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN dishes d ON d.id = i.dish_id
		WHERE o.scheduled_at IS NOT NULL AND o.status < ?
		GROUP BY o.id
		ORDER BY o.id
	`, int(order.Delivered)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o GetInFlightOrdersQueryResponse
		var status int

		err = rows.Scan(
			&o.ID,
			&status,
			&o.DeliveryProvider,
			&o.ETA,
			&o.ScheduledAt,
			&o.Restaurants,
		)
		if err != nil {
			return nil, err
		}

		o.Status = order.Status(status)
		if err = o.Status.Validate(); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
