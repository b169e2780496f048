package ports

import (
	"context"

	"catering/internal/core/domain/model/tracking"
)

// Mutator changes a fresh copy of a tracking record. It reports whether anything
// changed; when it did not, the store skips the write and the version stays.
type Mutator func(rec *tracking.Record) (bool, error)

// TrackingStore holds the ephemeral tracking records and the external id index.
//
// All record mutations go through CompareAndSwap. There is no unconditional write.
type TrackingStore interface {
	// Init stores a new record at version zero.
	// Returns errs.ErrTrackingRecordExists if the order already has a record.
	Init(ctx context.Context, rec tracking.Record) error

	// Read returns the current record including its version.
	// Returns errs.TrackingRecordMissingError when the record is absent or expired.
	Read(ctx context.Context, orderID int64) (tracking.Record, error)

	// CompareAndSwap applies mutate to a fresh copy of the record and writes it
	// back with version+1, only if the stored version still equals version.
	// On mismatch it returns errs.VersionIsInvalidError and the caller must
	// re-read and reapply.
	CompareAndSwap(ctx context.Context, orderID, version int64, mutate Mutator) (tracking.Record, error)

	// Delete retires the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, orderID int64) error

	// Touch refreshes the record TTL and reports whether the record exists.
	Touch(ctx context.Context, orderID int64) (bool, error)

	// PutExternalRef indexes a provider order id under the provider namespace.
	PutExternalRef(ctx context.Context, provider, externalID string, ref tracking.ExternalRef) error

	// GetExternalRef resolves a provider order id.
	// Returns errs.ObjectNotFoundError when the id is unknown.
	GetExternalRef(ctx context.Context, provider, externalID string) (tracking.ExternalRef, error)
}
