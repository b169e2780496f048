package commands_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"catering/internal/adapters/out/memory/trackingstore"
	"catering/internal/core/application/usecases/commands"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/domain/model/tracking"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolling keeps retries and polling delays out of test run time.
func fastPolling() commands.PollingOptions {
	return commands.PollingOptions{
		Interval:      time.Second,
		MaxAttempts:   3,
		CASRetries:    5,
		DeliveryLease: time.Minute,
		Retry: commands.RetryPolicy{
			MaxRetries:      1,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
		},
	}
}

var (
	kfcStatuses = map[string]order.Status{
		"not started": order.NotStarted,
		"cooking":     order.Cooking,
		"cooked":      order.Cooked,
		"finished":    order.Cooked,
	}
	uklonStatuses = map[string]order.Status{
		"not started": order.DeliveryLookup,
		"delivery":    order.Delivery,
		"delivered":   order.Delivered,
	}
)

type fakeMapper struct {
	name     string
	statuses map[string]order.Status
}

func (m fakeMapper) Name() string { return m.name }

func (m fakeMapper) MapStatus(raw string) (order.Status, error) {
	status, ok := m.statuses[raw]
	if !ok {
		return order.Unknown, errs.NewUnmappedStatusError(m.name, raw)
	}
	return status, nil
}

type fakeRegistry struct {
	restaurants map[string]ports.RestaurantProvider
	delivery    map[string]ports.DeliveryProvider
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		restaurants: make(map[string]ports.RestaurantProvider),
		delivery:    make(map[string]ports.DeliveryProvider),
	}
}

func (r *fakeRegistry) withRestaurant(p ports.RestaurantProvider) *fakeRegistry {
	r.restaurants[strings.ToLower(p.Name())] = p
	return r
}

func (r *fakeRegistry) withDelivery(p ports.DeliveryProvider) *fakeRegistry {
	r.delivery[strings.ToLower(p.Name())] = p
	return r
}

func (r *fakeRegistry) Restaurant(name string) (ports.RestaurantProvider, error) {
	if p, ok := r.restaurants[strings.ToLower(name)]; ok {
		return p, nil
	}
	return nil, errs.NewObjectNotFoundError("restaurant provider", name)
}

func (r *fakeRegistry) Delivery(name string) (ports.DeliveryProvider, error) {
	if p, ok := r.delivery[strings.ToLower(name)]; ok {
		return p, nil
	}
	return nil, errs.NewObjectNotFoundError("delivery provider", name)
}

func (r *fakeRegistry) Mapper(name string) (ports.StatusMapper, error) {
	if p, err := r.Restaurant(name); err == nil {
		return p, nil
	}
	return r.Delivery(name)
}

// testOrderItems returns two wings and a fries from KFC (restaurant 1) and a
// borscht from Silpo (restaurant 2).
func testOrderItems(t *testing.T) []order.Item {
	t.Helper()
	kfc, err := order.NewRestaurant(1, "KFC", "Khreshchatyk 1")
	require.NoError(t, err)
	silpo, err := order.NewRestaurant(2, "Silpo", "Lva Tolstoho 5")
	require.NoError(t, err)

	wings, err := order.NewItem(10, "Wings", 2, kfc)
	require.NoError(t, err)
	fries, err := order.NewItem(11, "Fries", 1, kfc)
	require.NoError(t, err)
	borscht, err := order.NewItem(20, "Borscht", 3, silpo)
	require.NoError(t, err)
	return []order.Item{wings, borscht, fries}
}

func newTestOrder(t *testing.T, id int64, status order.Status) *order.Order {
	t.Helper()
	scheduledAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	o, err := order.RestoreOrder(id, status, scheduledAt.Add(time.Hour), 450, "uklon", &scheduledAt, testOrderItems(t))
	require.NoError(t, err)
	return o
}

// fakeOrderRepository keeps orders in memory and honours the conditional update
// contract, so concurrency tests can race against it.
type fakeOrderRepository struct {
	mu     sync.Mutex
	t      *testing.T
	status map[int64]order.Status
	items  map[int64][]order.Item
	sched  map[int64]*time.Time
}

func newFakeOrderRepository(t *testing.T) *fakeOrderRepository {
	return &fakeOrderRepository{
		t:      t,
		status: make(map[int64]order.Status),
		items:  make(map[int64][]order.Item),
		sched:  make(map[int64]*time.Time),
	}
}

func (r *fakeOrderRepository) Add(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[o.ID()] = o.Status()
	r.items[o.ID()] = o.Items()
	r.sched[o.ID()] = o.ScheduledAt()
	return nil
}

func (r *fakeOrderRepository) Get(_ context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.status[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(id, status, time.Time{}, 450, "uklon", r.sched[id], r.items[id])
}

func (r *fakeOrderRepository) ConditionalUpdateStatus(_ context.Context, id int64, from, to order.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.status[id]
	if !ok || current < from || current >= to {
		return false, nil
	}
	r.status[id] = to
	return true, nil
}

func (r *fakeOrderRepository) ItemsGroupedByRestaurant(
	_ context.Context,
	id int64,
) (map[string]order.RestaurantItems, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.GroupByRestaurant(items), nil
}

func (r *fakeOrderRepository) MarkScheduled(_ context.Context, id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sched[id] != nil {
		return false, nil
	}
	r.sched[id] = &at
	return true, nil
}

func (r *fakeOrderRepository) GetUnscheduled(context.Context, int) ([]*order.Order, error) {
	r.t.Fatal("GetUnscheduled is not used by commands")
	return nil, nil
}

func (r *fakeOrderRepository) GetAllInFlight(context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.status))
	for id, status := range r.status {
		if status.IsBefore(order.Delivered) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	orders := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := order.RestoreOrder(id, r.status[id], time.Time{}, 450, "uklon", r.sched[id], r.items[id])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *fakeOrderRepository) statusOf(id int64) order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status[id]
}

type queuedTask struct {
	Task  ports.Task
	Queue ports.Queue
	Delay time.Duration
}

// recordingDispatcher collects enqueued tasks instead of running them.
type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []queuedTask
}

func (d *recordingDispatcher) Enqueue(_ context.Context, task ports.Task, queue ports.Queue, delay time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, queuedTask{Task: task, Queue: queue, Delay: delay})
	return nil
}

func (d *recordingDispatcher) take() []queuedTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	tasks := d.tasks
	d.tasks = nil
	return tasks
}

func (d *recordingDispatcher) byWorker(worker ports.WorkerType) []queuedTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	var found []queuedTask
	for _, qt := range d.tasks {
		if qt.Task.Worker == worker {
			found = append(found, qt)
		}
	}
	return found
}

func initRecord(t *testing.T, store ports.TrackingStore, orderID int64, keys ...string) {
	t.Helper()
	rec, err := tracking.NewRecord(orderID, keys)
	require.NoError(t, err)
	require.NoError(t, store.Init(t.Context(), rec))
}

func newMemoryStore() *trackingstore.TrackingStore {
	return trackingstore.NewTrackingStore(0, 0)
}

func mustReconcileCommand(t *testing.T, orderID int64) commands.ReconcileOrderCommand {
	t.Helper()
	cmd, err := commands.NewReconcileOrderCommand(orderID)
	require.NoError(t, err)
	return cmd
}
