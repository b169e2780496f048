// Package order provides the canonical order model of the catering orchestrator.
//
// The package includes:
//   - Status: the ordered canonical lifecycle NotStarted -> Cooking -> Cooked ->
//     DeliveryLookup -> Delivery -> Delivered, with monotonic Advance semantics
//   - Order: the read model of a customer order owned by the order repository
//   - Item, Restaurant, RestaurantItems: immutable order lines and their grouping
//
// Key business rules:
//   - Status never moves backwards; an attempt to move to an earlier or equal
//     status is a no-op, never an error
//   - An order is in flight once it is scheduled and until it is delivered
//   - Item quantities are between MinQuantity and MaxQuantity
package order
