package queries

import (
	"context"
	"errors"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/pkg/errs"
)

// OrderReader loads a single order.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
}

// TrackingReader loads a tracking record.
type TrackingReader interface {
	Read(ctx context.Context, orderID int64) (tracking.Record, error)
}

// GetOrderTrackingQueryHandler joins the order repository and the tracking store.
type GetOrderTrackingQueryHandler struct {
	orders  OrderReader
	records TrackingReader
}

func NewGetOrderTrackingQueryHandler(orders OrderReader, records TrackingReader) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{orders: orders, records: records}
}

// Handle returns errs.ObjectNotFoundError for unknown orders. A missing record
// is not an error here: delivered orders have none.
func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (GetOrderTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	response := GetOrderTrackingQueryResponse{
		OrderID:  o.ID(),
		Status:   o.Status(),
		InFlight: o.IsInFlight(),
	}

	rec, err := h.records.Read(ctx, o.ID())
	switch {
	case err == nil:
		response.Tracking = &rec
	case errors.Is(err, errs.ErrTrackingRecordMissing):
		// retired or expired
	default:
		return GetOrderTrackingQueryResponse{}, err
	}

	return response, nil
}
