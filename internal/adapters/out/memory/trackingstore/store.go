// Package trackingstore provides an in-process TrackingStore for local runs and tests.
// It honours the same compare-and-swap and expiry contract as the Redis store
// but is only shared between goroutines of one process.
package trackingstore

import (
	"context"
	"sync"
	"time"

	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

var _ ports.TrackingStore = (*TrackingStore)(nil)

type recordEntry struct {
	rec       tracking.Record
	expiresAt time.Time
}

type refEntry struct {
	ref       tracking.ExternalRef
	expiresAt time.Time
}

// TrackingStore keeps tracking records in a map guarded by a mutex.
// A zero TTL disables expiry.
type TrackingStore struct {
	mu      sync.Mutex
	records map[int64]recordEntry
	refs    map[string]refEntry
	ttl     time.Duration
	refTTL  time.Duration
	now     func() time.Time
}

// NewTrackingStore creates an empty store.
func NewTrackingStore(ttl, refTTL time.Duration) *TrackingStore {
	return &TrackingStore{
		records: make(map[int64]recordEntry),
		refs:    make(map[string]refEntry),
		ttl:     ttl,
		refTTL:  refTTL,
		now:     time.Now,
	}
}

func (s *TrackingStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *TrackingStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}

// lookup must be called with mu held.
func (s *TrackingStore) lookup(orderID int64) (recordEntry, bool) {
	entry, ok := s.records[orderID]
	if !ok {
		return recordEntry{}, false
	}
	if s.expired(entry.expiresAt) {
		delete(s.records, orderID)
		return recordEntry{}, false
	}
	return entry, true
}

// Init stores a new record.
func (s *TrackingStore) Init(_ context.Context, rec tracking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(rec.OrderID); ok {
		return errs.ErrTrackingRecordExists
	}
	s.records[rec.OrderID] = recordEntry{rec: rec.Clone(), expiresAt: s.expiry(s.ttl)}
	return nil
}

// Read returns a copy of the record.
func (s *TrackingStore) Read(_ context.Context, orderID int64) (tracking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(orderID)
	if !ok {
		return tracking.Record{}, errs.NewTrackingRecordMissingError(orderID)
	}
	return entry.rec.Clone(), nil
}

// CompareAndSwap applies mutate under the store lock if the version matches.
func (s *TrackingStore) CompareAndSwap(
	_ context.Context,
	orderID, version int64,
	mutate ports.Mutator,
) (tracking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(orderID)
	if !ok {
		return tracking.Record{}, errs.NewTrackingRecordMissingError(orderID)
	}
	if entry.rec.Version != version {
		return tracking.Record{}, errs.NewVersionIsInvalidError("tracking record")
	}

	next := entry.rec.Clone()
	changed, err := mutate(&next)
	if err != nil {
		return tracking.Record{}, err
	}
	if !changed {
		return entry.rec.Clone(), nil
	}

	next.OrderID = orderID
	next.Version = entry.rec.Version + 1
	s.records[orderID] = recordEntry{rec: next.Clone(), expiresAt: s.expiry(s.ttl)}
	return next, nil
}

// Delete removes the record.
func (s *TrackingStore) Delete(_ context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, orderID)
	return nil
}

// Touch extends the record expiry.
func (s *TrackingStore) Touch(_ context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(orderID)
	if !ok {
		return false, nil
	}
	entry.expiresAt = s.expiry(s.ttl)
	s.records[orderID] = entry
	return true, nil
}

// PutExternalRef indexes a provider order id.
func (s *TrackingStore) PutExternalRef(_ context.Context, provider, externalID string, ref tracking.ExternalRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refs[refKey(provider, externalID)] = refEntry{ref: ref, expiresAt: s.expiry(s.refTTL)}
	return nil
}

// GetExternalRef resolves a provider order id.
func (s *TrackingStore) GetExternalRef(_ context.Context, provider, externalID string) (tracking.ExternalRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := refKey(provider, externalID)
	entry, ok := s.refs[key]
	if !ok || s.expired(entry.expiresAt) {
		delete(s.refs, key)
		return tracking.ExternalRef{}, errs.NewObjectNotFoundError(provider+" order", externalID)
	}
	return entry.ref, nil
}

func refKey(provider, externalID string) string {
	return provider + "_orders:" + externalID
}
