package commands_test

import (
	"context"
	"time"

	"catering/internal/core/application/usecases/commands"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ConditionalUpdateStatus(ctx context.Context, id int64, from, to order.Status) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ItemsGroupedByRestaurant(
	ctx context.Context,
	id int64,
) (map[string]order.RestaurantItems, error) {
	args := m.Called(ctx, id)
	if grouped, ok := args.Get(0).(map[string]order.RestaurantItems); ok {
		return grouped, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) MarkScheduled(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetUnscheduled(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllInFlight(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockUnitOfWork struct{ mock.Mock }

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUnitOfWorkFactory struct{ mock.Mock }

func (m *MockUnitOfWorkFactory) Create() ports.UnitOfWork {
	args := m.Called()
	return args.Get(0).(ports.UnitOfWork)
}

type MockTaskDispatcher struct{ mock.Mock }

func (m *MockTaskDispatcher) Enqueue(ctx context.Context, task ports.Task, queue ports.Queue, delay time.Duration) error {
	args := m.Called(ctx, task, queue, delay)
	return args.Error(0)
}

type MockRestaurantProvider struct {
	mock.Mock
	fakeMapper
}

func (m *MockRestaurantProvider) CreateOrder(ctx context.Context, lines []ports.OrderLine) (ports.ProviderOrder, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(ports.ProviderOrder), args.Error(1)
}

func (m *MockRestaurantProvider) GetOrder(ctx context.Context, externalID string) (ports.ProviderOrder, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(ports.ProviderOrder), args.Error(1)
}

type MockDeliveryProvider struct {
	mock.Mock
	fakeMapper
}

func (m *MockDeliveryProvider) CreateOrder(ctx context.Context, req ports.DeliveryRequest) (ports.DeliveryOrder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.DeliveryOrder), args.Error(1)
}

func (m *MockDeliveryProvider) GetOrder(ctx context.Context, externalID string) (ports.DeliveryOrder, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(ports.DeliveryOrder), args.Error(1)
}

type MockOrderReconciler struct{ mock.Mock }

func (m *MockOrderReconciler) Handle(ctx context.Context, cmd commands.ReconcileOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockDeliveryRunner struct{ mock.Mock }

func (m *MockDeliveryRunner) Handle(ctx context.Context, cmd commands.DeliverOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockRestaurantStatusApplier struct{ mock.Mock }

func (m *MockRestaurantStatusApplier) Handle(
	ctx context.Context,
	cmd commands.ApplyRestaurantStatusCommand,
) (commands.ApplyResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ApplyResult), args.Error(1)
}

type MockDeliveryStatusApplier struct{ mock.Mock }

func (m *MockDeliveryStatusApplier) Handle(
	ctx context.Context,
	cmd commands.ApplyDeliveryStatusCommand,
) (commands.ApplyResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ApplyResult), args.Error(1)
}

type MockFulfillRestaurantHandler struct{ mock.Mock }

func (m *MockFulfillRestaurantHandler) Handle(ctx context.Context, cmd commands.FulfillRestaurantCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockNotifyStatusHandler struct{ mock.Mock }

func (m *MockNotifyStatusHandler) Handle(ctx context.Context, cmd commands.NotifyStatusCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockStatusNotifier struct{ mock.Mock }

func (m *MockStatusNotifier) Notify(ctx context.Context, change ports.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type MockOrderScheduler struct{ mock.Mock }

func (m *MockOrderScheduler) Handle(ctx context.Context, cmd commands.ScheduleOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}
