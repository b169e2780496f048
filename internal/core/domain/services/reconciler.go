package services

import (
	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
)

// Decision is the canonical transition a tracking record calls for.
//
// The transition must be applied as a conditional update that succeeds only if
// the stored status is at least From and still before Target. DispatchDelivery
// is honoured only by the caller whose update actually changed the row.
type Decision struct {
	From             order.Status
	Target           order.Status
	DispatchDelivery bool
}

// IsNoop reports whether no transition is required.
func (d Decision) IsNoop() bool {
	return d.Target == order.Unknown
}

// StatusReconciler decides canonical order transitions from a tracking record.
//
// Rules, evaluated in order:
//   - Delivery side: once the order is Cooked, a delivery entry at
//     DeliveryLookup or later pulls the canonical status up to it
//   - All cooked: every restaurant entry Cooked and canonical before Cooked
//     moves the order to Cooked and requests one delivery dispatch
//   - Cooking: any restaurant entry Cooking or later and canonical before
//     Cooking moves the order to Cooking
//
// Example usage:
//
//	reconciler := services.NewStatusReconciler()
//	decision := reconciler.Decide(record, o.Status())
//	if decision.IsNoop() {
//	    return nil
//	}
//	changed, err := repo.ConditionalUpdateStatus(ctx, o.ID(), decision.From, decision.Target)
//	if err == nil && changed && decision.DispatchDelivery {
//	    // enqueue exactly one delivery worker
//	}
type StatusReconciler struct{}

// NewStatusReconciler creates a new StatusReconciler instance.
func NewStatusReconciler() StatusReconciler {
	return StatusReconciler{}
}

// Decide returns the transition for the given record and canonical status.
// It is deterministic and side effect free, so repeated triggers with the same
// inputs always yield the same decision.
func (StatusReconciler) Decide(record tracking.Record, canonical order.Status) Decision {
	if canonical.Validate() != nil || !canonical.IsBefore(order.Delivered) {
		return Decision{}
	}

	if canonical.IsAtLeast(order.Cooked) {
		delivery := record.Delivery.Status
		if delivery.IsAtLeast(order.DeliveryLookup) && canonical.IsBefore(delivery) {
			return Decision{From: order.Cooked, Target: delivery}
		}
		return Decision{}
	}

	if record.AllCooked() {
		return Decision{From: order.NotStarted, Target: order.Cooked, DispatchDelivery: true}
	}

	if record.AnyCooking() && canonical.IsBefore(order.Cooking) {
		return Decision{From: order.NotStarted, Target: order.Cooking}
	}

	return Decision{}
}
