package trackingstore

import (
	"sync"
	"testing"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advance(key string, status order.Status) func(*tracking.Record) (bool, error) {
	return func(r *tracking.Record) (bool, error) {
		return r.AdvanceRestaurant(key, status)
	}
}

func newStoreWithRecord(t *testing.T) *TrackingStore {
	t.Helper()
	store := NewTrackingStore(time.Hour, time.Hour)
	rec, err := tracking.NewRecord(42, []string{"1", "2"})
	require.NoError(t, err)
	require.NoError(t, store.Init(t.Context(), rec))
	return store
}

func TestTrackingStore_Init(t *testing.T) {
	store := newStoreWithRecord(t)
	rec, err := tracking.NewRecord(42, []string{"1"})
	require.NoError(t, err)

	err = store.Init(t.Context(), rec)
	require.ErrorIs(t, err, errs.ErrTrackingRecordExists)

	stored, err := store.Read(t.Context(), 42)
	require.NoError(t, err)
	assert.Len(t, stored.Restaurants, 2, "existing record must not be overwritten")
}

func TestTrackingStore_ReadMissing(t *testing.T) {
	store := NewTrackingStore(time.Hour, time.Hour)

	_, err := store.Read(t.Context(), 7)

	require.ErrorIs(t, err, errs.ErrTrackingRecordMissing)
	var missing *errs.TrackingRecordMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, int64(7), missing.OrderID)
}

func TestTrackingStore_CompareAndSwap(t *testing.T) {
	ctx := t.Context()

	t.Run("bumps version on change", func(t *testing.T) {
		store := newStoreWithRecord(t)

		updated, err := store.CompareAndSwap(ctx, 42, 0, advance("1", order.Cooking))

		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Version)
		assert.Equal(t, order.Cooking, updated.Restaurants["1"].Status)
	})

	t.Run("skips write without change", func(t *testing.T) {
		store := newStoreWithRecord(t)

		updated, err := store.CompareAndSwap(ctx, 42, 0, advance("1", order.NotStarted))

		require.NoError(t, err)
		assert.Zero(t, updated.Version)
	})

	t.Run("rejects stale version", func(t *testing.T) {
		store := newStoreWithRecord(t)
		_, err := store.CompareAndSwap(ctx, 42, 0, advance("1", order.Cooking))
		require.NoError(t, err)

		_, err = store.CompareAndSwap(ctx, 42, 0, advance("2", order.Cooking))

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
		stored, _ := store.Read(ctx, 42)
		assert.Equal(t, order.NotStarted, stored.Restaurants["2"].Status)
	})

	t.Run("mutator error leaves record untouched", func(t *testing.T) {
		store := newStoreWithRecord(t)

		_, err := store.CompareAndSwap(ctx, 42, 0, advance("9", order.Cooking))

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		stored, _ := store.Read(ctx, 42)
		assert.Zero(t, stored.Version)
	})

	t.Run("missing record", func(t *testing.T) {
		store := NewTrackingStore(time.Hour, time.Hour)

		_, err := store.CompareAndSwap(ctx, 42, 0, advance("1", order.Cooking))

		require.ErrorIs(t, err, errs.ErrTrackingRecordMissing)
	})
}

func TestTrackingStore_InterleavedWritersKeepBothUpdates(t *testing.T) {
	ctx := t.Context()
	store := newStoreWithRecord(t)

	first, err := store.Read(ctx, 42)
	require.NoError(t, err)
	second, err := store.Read(ctx, 42)
	require.NoError(t, err)

	_, err = store.CompareAndSwap(ctx, 42, first.Version, advance("1", order.Cooked))
	require.NoError(t, err)

	_, err = store.CompareAndSwap(ctx, 42, second.Version, advance("2", order.Cooked))
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	second, err = store.Read(ctx, 42)
	require.NoError(t, err)
	_, err = store.CompareAndSwap(ctx, 42, second.Version, advance("2", order.Cooked))
	require.NoError(t, err)

	final, err := store.Read(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, order.Cooked, final.Restaurants["1"].Status)
	assert.Equal(t, order.Cooked, final.Restaurants["2"].Status)
	assert.Equal(t, int64(2), final.Version)
}

func TestTrackingStore_ConcurrentWriters(t *testing.T) {
	ctx := t.Context()
	store := NewTrackingStore(0, 0)
	keys := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	rec, err := tracking.NewRecord(1, keys)
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx, rec))

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				current, err := store.Read(ctx, 1)
				if err != nil {
					t.Error(err)
					return
				}
				_, err = store.CompareAndSwap(ctx, 1, current.Version, advance(key, order.Cooked))
				if err == nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	final, err := store.Read(ctx, 1)
	require.NoError(t, err)
	assert.True(t, final.AllCooked())
	assert.Equal(t, int64(len(keys)), final.Version)
}

func TestTrackingStore_Expiry(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewTrackingStore(time.Minute, time.Minute)
	store.now = func() time.Time { return now }

	rec, err := tracking.NewRecord(1, []string{"1"})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx, rec))
	require.NoError(t, store.PutExternalRef(ctx, "kfc", "ext-1", tracking.ExternalRef{OrderID: 1, RestaurantKey: "1"}))

	now = now.Add(50 * time.Second)
	alive, err := store.Touch(ctx, 1)
	require.NoError(t, err)
	assert.True(t, alive)

	now = now.Add(50 * time.Second)
	_, err = store.Read(ctx, 1)
	require.NoError(t, err, "touch extended the ttl")

	_, err = store.GetExternalRef(ctx, "kfc", "ext-1")
	require.ErrorIs(t, err, errs.ErrObjectNotFound, "index entries expire on their own ttl")

	now = now.Add(2 * time.Minute)
	_, err = store.Read(ctx, 1)
	require.ErrorIs(t, err, errs.ErrTrackingRecordMissing)
	alive, err = store.Touch(ctx, 1)
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestTrackingStore_ExternalRefs(t *testing.T) {
	ctx := t.Context()
	store := NewTrackingStore(0, 0)

	ref := tracking.ExternalRef{OrderID: 42, RestaurantKey: "1"}
	require.NoError(t, store.PutExternalRef(ctx, "kfc", "abc", ref))

	got, err := store.GetExternalRef(ctx, "kfc", "abc")
	require.NoError(t, err)
	assert.Equal(t, ref, got)

	_, err = store.GetExternalRef(ctx, "silpo", "abc")
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestTrackingStore_Delete(t *testing.T) {
	ctx := t.Context()
	store := newStoreWithRecord(t)

	require.NoError(t, store.Delete(ctx, 42))
	require.NoError(t, store.Delete(ctx, 42))

	_, err := store.Read(ctx, 42)
	require.ErrorIs(t, err, errs.ErrTrackingRecordMissing)
}
