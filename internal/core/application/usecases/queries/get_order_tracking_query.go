package queries

import (
	"errors"
	"fmt"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

var (
	ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
		"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
	)
)

// GetOrderTrackingQuery returns the canonical status of one order together with
// its live tracking record.
type GetOrderTrackingQuery struct {
	orderID int64
	guard   guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates the query for a positive order id.
func NewGetOrderTrackingQuery(orderID int64) (GetOrderTrackingQuery, error) {
	if orderID <= 0 {
		return GetOrderTrackingQuery{}, errs.NewValueIsInvalidErrorWithCause(
			"order id", fmt.Errorf("%d is not positive", orderID))
	}
	return GetOrderTrackingQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

func (q GetOrderTrackingQuery) OrderID() int64 {
	return q.orderID
}

// GetOrderTrackingQueryResponse combines the durable order status with the
// ephemeral sub-order view. Tracking is nil once the record is retired or expired.
type GetOrderTrackingQueryResponse struct {
	OrderID  int64            `json:"order_id"`
	Status   order.Status     `json:"status"`
	InFlight bool             `json:"in_flight"`
	Tracking *tracking.Record `json:"tracking"`
}
