package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"catering/internal/adapters/out/postgres/orderrepo"
	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	kfc        order.Restaurant
	silpo      order.Restaurant
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(orderrepo.Models()...))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_items, orders, dishes, restaurants").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)

	suite.Require().NoError(suite.db.Create(&[]orderrepo.RestaurantDTO{
		{ID: 1, Name: "KFC", Address: "Khreshchatyk 1"},
		{ID: 2, Name: "Silpo", Address: "Lva Tolstoho 5"},
	}).Error)
	suite.Require().NoError(suite.db.Create(&[]orderrepo.DishDTO{
		{ID: 10, Name: "Wings", RestaurantID: 1},
		{ID: 11, Name: "Fries", RestaurantID: 1},
		{ID: 20, Name: "Borscht", RestaurantID: 2},
	}).Error)

	var err error
	suite.kfc, err = order.NewRestaurant(1, "KFC", "Khreshchatyk 1")
	suite.Require().NoError(err)
	suite.silpo, err = order.NewRestaurant(2, "Silpo", "Lva Tolstoho 5")
	suite.Require().NoError(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(id int64, status order.Status) *order.Order {
	wings, err := order.NewItem(10, "Wings", 2, suite.kfc)
	suite.Require().NoError(err)
	fries, err := order.NewItem(11, "Fries", 1, suite.kfc)
	suite.Require().NoError(err)
	borscht, err := order.NewItem(20, "Borscht", 3, suite.silpo)
	suite.Require().NoError(err)

	eta := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	o, err := order.RestoreOrder(id, status, eta, 450, "uklon", nil, []order.Item{wings, borscht, fries})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()
	suite.createTestOrder(42, order.NotStarted)

	got, err := suite.repository.Get(ctx, 42)

	suite.Require().NoError(err)
	suite.Equal(int64(42), got.ID())
	suite.Equal(order.NotStarted, got.Status())
	suite.Equal(450, got.Total())
	suite.Equal("uklon", got.DeliveryProvider())
	suite.False(got.IsScheduled())
	suite.Require().Len(got.Items(), 3)
	suite.Equal("Wings", got.Items()[0].DishName())
	suite.Equal("Silpo", got.Items()[1].Restaurant().Name())
	suite.assertCount(&orderrepo.OrderItemDTO{}, 3)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_UnknownDishRollsBack() {
	ghost, err := order.NewRestaurant(9, "Ghost", "")
	suite.Require().NoError(err)
	item, err := order.NewItem(99, "Nothing", 1, ghost)
	suite.Require().NoError(err)
	o, err := order.RestoreOrder(1, order.NotStarted, time.Now(), 0, "uklon", nil, []order.Item{item})
	suite.Require().NoError(err)

	err = suite.repository.Add(context.Background(), o)

	suite.Require().Error(err)
	suite.assertCount(&orderrepo.OrderDTO{}, 0)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	got, err := suite.repository.Get(context.Background(), 404)

	suite.Nil(got)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestItemsGroupedByRestaurant() {
	suite.createTestOrder(42, order.NotStarted)

	grouped, err := suite.repository.ItemsGroupedByRestaurant(context.Background(), 42)

	suite.Require().NoError(err)
	suite.Require().Len(grouped, 2)
	suite.Equal([]string{"1", "2"}, order.SortedKeys(grouped))
	suite.Len(grouped["1"].Items, 2)
	suite.Equal("Khreshchatyk 1", grouped["1"].Restaurant.Address())
	suite.Len(grouped["2"].Items, 1)
	suite.Equal(3, grouped["2"].Items[0].Quantity())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdateStatus() {
	ctx := context.Background()
	suite.createTestOrder(42, order.Cooking)

	testCases := []struct {
		name     string
		from, to order.Status
		changed  bool
		expected order.Status
	}{
		{name: "status below lower bound", from: order.Cooked, to: order.DeliveryLookup, changed: false, expected: order.Cooking},
		{name: "forward within range", from: order.NotStarted, to: order.Cooked, changed: true, expected: order.Cooked},
		{name: "repeat is a no-op", from: order.NotStarted, to: order.Cooked, changed: false, expected: order.Cooked},
		{name: "never backwards", from: order.NotStarted, to: order.Cooking, changed: false, expected: order.Cooked},
		{name: "delivery lookup", from: order.Cooked, to: order.DeliveryLookup, changed: true, expected: order.DeliveryLookup},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			changed, err := suite.repository.ConditionalUpdateStatus(ctx, 42, tc.from, tc.to)
			suite.Require().NoError(err)
			suite.Equal(tc.changed, changed)

			got, err := suite.repository.Get(ctx, 42)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, got.Status())
		})
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestConditionalUpdateStatus_RaceHasOneWinner() {
	ctx := context.Background()
	suite.createTestOrder(42, order.Cooking)

	const racers = 8
	results := make(chan bool, racers)
	var wg sync.WaitGroup
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := suite.repository.ConditionalUpdateStatus(ctx, 42, order.NotStarted, order.Cooked)
			suite.NoError(err)
			results <- changed
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for changed := range results {
		if changed {
			winners++
		}
	}
	suite.Equal(1, winners)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestMarkScheduledAndQueries() {
	ctx := context.Background()
	suite.createTestOrder(1, order.NotStarted)
	suite.createTestOrder(2, order.NotStarted)
	suite.createTestOrder(3, order.Delivered)

	unscheduled, err := suite.repository.GetUnscheduled(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(unscheduled, 2)
	suite.Equal(int64(1), unscheduled[0].ID())

	limited, err := suite.repository.GetUnscheduled(ctx, 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)

	now := time.Now().UTC().Truncate(time.Second)
	scheduled, err := suite.repository.MarkScheduled(ctx, 1, now)
	suite.Require().NoError(err)
	suite.True(scheduled)

	scheduled, err = suite.repository.MarkScheduled(ctx, 1, now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.False(scheduled, "an order is scheduled once")

	got, err := suite.repository.Get(ctx, 1)
	suite.Require().NoError(err)
	suite.Require().NotNil(got.ScheduledAt())
	suite.True(now.Equal(got.ScheduledAt().UTC()))

	inFlight, err := suite.repository.GetAllInFlight(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(inFlight, 1)
	suite.Equal(int64(1), inFlight[0].ID())

	unscheduled, err = suite.repository.GetUnscheduled(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(unscheduled, 1)
	suite.Equal(int64(2), unscheduled[0].ID())
}

func (suite *OrderRepositoryIntegrationTestSuite) assertCount(model any, expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(model).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
