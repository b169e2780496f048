package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catering/internal/adapters/out/memory/trackingstore"
	"catering/internal/core/application/usecases/queries"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type failingTrackingReader struct{ err error }

func (f failingTrackingReader) Read(context.Context, int64) (tracking.Record, error) {
	return tracking.Record{}, f.err
}

func restoreOrder(t *testing.T, id int64, status order.Status, scheduled bool) *order.Order {
	t.Helper()
	restaurant, err := order.NewRestaurant(1, "KFC", "Khreshchatyk 1")
	require.NoError(t, err)
	item, err := order.NewItem(10, "Wings", 2, restaurant)
	require.NoError(t, err)

	var scheduledAt *time.Time
	if scheduled {
		at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		scheduledAt = &at
	}
	o, err := order.RestoreOrder(id, status, time.Now(), 100, "uklon", scheduledAt, []order.Item{item})
	require.NoError(t, err)
	return o
}

func TestGetOrderTrackingQueryHandler_InFlightWithRecord(t *testing.T) {
	ctx := t.Context()
	orders := &MockOrderReader{}
	store := trackingstore.NewTrackingStore(time.Hour, time.Hour)
	orders.On("Get", ctx, int64(7)).Return(restoreOrder(t, 7, order.Cooking, true), nil)

	rec, err := tracking.NewRecord(7, []string{"1"})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx, rec))

	query, err := queries.NewGetOrderTrackingQuery(7)
	require.NoError(t, err)

	got, err := queries.NewGetOrderTrackingQueryHandler(orders, store).Handle(ctx, query)

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.OrderID)
	assert.Equal(t, order.Cooking, got.Status)
	assert.True(t, got.InFlight)
	require.NotNil(t, got.Tracking)
	assert.Equal(t, []string{"1"}, got.Tracking.RestaurantKeys())
	orders.AssertExpectations(t)
}

func TestGetOrderTrackingQueryHandler_DeliveredWithoutRecord(t *testing.T) {
	ctx := t.Context()
	orders := &MockOrderReader{}
	store := trackingstore.NewTrackingStore(time.Hour, time.Hour)
	orders.On("Get", ctx, int64(8)).Return(restoreOrder(t, 8, order.Delivered, true), nil)

	query, err := queries.NewGetOrderTrackingQuery(8)
	require.NoError(t, err)

	got, err := queries.NewGetOrderTrackingQueryHandler(orders, store).Handle(ctx, query)

	require.NoError(t, err)
	assert.Equal(t, order.Delivered, got.Status)
	assert.False(t, got.InFlight)
	assert.Nil(t, got.Tracking)
}

func TestGetOrderTrackingQueryHandler_UnknownOrder(t *testing.T) {
	ctx := t.Context()
	orders := &MockOrderReader{}
	orders.On("Get", ctx, int64(9)).Return(nil, errs.NewObjectNotFoundError("order", int64(9)))

	query, err := queries.NewGetOrderTrackingQuery(9)
	require.NoError(t, err)

	_, err = queries.NewGetOrderTrackingQueryHandler(orders, failingTrackingReader{}).Handle(ctx, query)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestGetOrderTrackingQueryHandler_StoreFailure(t *testing.T) {
	ctx := t.Context()
	orders := &MockOrderReader{}
	orders.On("Get", ctx, int64(3)).Return(restoreOrder(t, 3, order.NotStarted, true), nil)
	boom := errors.New("redis down")

	query, err := queries.NewGetOrderTrackingQuery(3)
	require.NoError(t, err)

	_, err = queries.NewGetOrderTrackingQueryHandler(orders, failingTrackingReader{err: boom}).Handle(ctx, query)

	require.ErrorIs(t, err, boom)
}

func TestGetOrderTrackingQueryHandler_InvalidQuery(t *testing.T) {
	_, err := queries.NewGetOrderTrackingQueryHandler(&MockOrderReader{}, failingTrackingReader{}).
		Handle(t.Context(), queries.GetOrderTrackingQuery{})

	require.ErrorIs(t, err, queries.ErrGetOrderTrackingQueryIsNotConstructed)
}
