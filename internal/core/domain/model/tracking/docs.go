// Package tracking models the ephemeral per-order tracking record.
//
// A Record holds one entry per restaurant sub-order and one delivery entry.
// Every write goes through a compare-and-swap on Record.Version, and entry
// statuses only move forward, so duplicated or reordered signals converge to
// the same document.
//
// ExternalRef is the value of the secondary index that maps provider order ids
// back to internal orders for webhook ingestion.
package tracking
