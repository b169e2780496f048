// Package trackingstore implements the TrackingStore on top of Redis.
//
// Records live under "orders:{id}" as JSON documents carrying their own version.
// CompareAndSwap uses WATCH/MULTI/EXEC: the key is watched, the version checked,
// and the new document written in a transaction that Redis aborts if any other
// client touched the key in between. Index entries live under
// "{provider}_orders:{external id}" with their own TTL.
package trackingstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const recordNamespace = "orders"

var _ ports.TrackingStore = (*TrackingStore)(nil)

// TrackingStore is the Redis backed TrackingStore.
type TrackingStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	refTTL time.Duration
}

// NewTrackingStore creates a store. ttl applies to records and is refreshed on
// every write; refTTL applies to external id index entries.
//
// Example:
//
//	opts, err := redis.ParseURL("redis://localhost:6379/0")
//	if err != nil {
//	    return err
//	}
//	store := NewTrackingStore(redis.NewClient(opts), time.Hour, time.Hour)
func NewTrackingStore(client redis.UniversalClient, ttl, refTTL time.Duration) *TrackingStore {
	return &TrackingStore{client: client, ttl: ttl, refTTL: refTTL}
}

func recordKey(orderID int64) string {
	return recordNamespace + ":" + strconv.FormatInt(orderID, 10)
}

func refKey(provider, externalID string) string {
	return fmt.Sprintf("%s_orders:%s", provider, externalID)
}

func decode(orderID int64, raw []byte) (tracking.Record, error) {
	var rec tracking.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return tracking.Record{}, fmt.Errorf("decode tracking record %d: %w", orderID, err)
	}
	rec.OrderID = orderID
	return rec, nil
}

// Init stores a new record with SET NX.
func (s *TrackingStore) Init(ctx context.Context, rec tracking.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, recordKey(rec.OrderID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order %d", errs.ErrTrackingRecordExists, rec.OrderID)
	}
	return nil
}

// Read loads the record.
func (s *TrackingStore) Read(ctx context.Context, orderID int64) (tracking.Record, error) {
	raw, err := s.client.Get(ctx, recordKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tracking.Record{}, errs.NewTrackingRecordMissingError(orderID)
	}
	if err != nil {
		return tracking.Record{}, err
	}
	return decode(orderID, raw)
}

// CompareAndSwap writes mutate's result if the stored version still matches.
func (s *TrackingStore) CompareAndSwap(
	ctx context.Context,
	orderID, version int64,
	mutate ports.Mutator,
) (tracking.Record, error) {
	key := recordKey(orderID)
	var result tracking.Record

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return errs.NewTrackingRecordMissingError(orderID)
		}
		if err != nil {
			return err
		}

		current, err := decode(orderID, raw)
		if err != nil {
			return err
		}
		if current.Version != version {
			return errs.NewVersionIsInvalidErrorWithCause("tracking record",
				fmt.Errorf("expected version %d, stored %d", version, current.Version))
		}

		next := current.Clone()
		changed, err := mutate(&next)
		if err != nil {
			return err
		}
		if !changed {
			result = current
			return nil
		}

		next.OrderID = orderID
		next.Version = current.Version + 1
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return tracking.Record{}, errs.NewVersionIsInvalidErrorWithCause("tracking record", err)
	}
	if err != nil {
		return tracking.Record{}, err
	}
	return result, nil
}

// Delete removes the record.
func (s *TrackingStore) Delete(ctx context.Context, orderID int64) error {
	return s.client.Del(ctx, recordKey(orderID)).Err()
}

// Touch refreshes the record TTL.
func (s *TrackingStore) Touch(ctx context.Context, orderID int64) (bool, error) {
	if s.ttl <= 0 {
		n, err := s.client.Exists(ctx, recordKey(orderID)).Result()
		return n == 1, err
	}
	return s.client.Expire(ctx, recordKey(orderID), s.ttl).Result()
}

// PutExternalRef indexes a provider order id.
func (s *TrackingStore) PutExternalRef(ctx context.Context, provider, externalID string, ref tracking.ExternalRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, refKey(provider, externalID), data, s.refTTL).Err()
}

// GetExternalRef resolves a provider order id.
func (s *TrackingStore) GetExternalRef(ctx context.Context, provider, externalID string) (tracking.ExternalRef, error) {
	raw, err := s.client.Get(ctx, refKey(provider, externalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tracking.ExternalRef{}, errs.NewObjectNotFoundError(provider+" order", externalID)
	}
	if err != nil {
		return tracking.ExternalRef{}, err
	}

	var ref tracking.ExternalRef
	if err = json.Unmarshal(raw, &ref); err != nil {
		return tracking.ExternalRef{}, fmt.Errorf("decode %s: %w", refKey(provider, externalID), err)
	}
	return ref, nil
}
