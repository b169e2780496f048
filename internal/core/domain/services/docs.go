// Package services provides domain services that span the canonical order and
// its tracking record.
//
// The package includes:
//   - StatusReconciler: the pure decision function that aggregates sub-order
//     statuses into canonical order transitions
//
// The reconciler never performs side effects. Callers apply its Decision with a
// conditional repository update and act on the outcome only when a row changed.
package services
