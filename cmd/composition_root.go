package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	httpadapter "catering/internal/adapters/in/http"
	"catering/internal/adapters/in/queue"
	"catering/internal/adapters/out/amqp"
	"catering/internal/adapters/out/inproc"
	memorystore "catering/internal/adapters/out/memory/trackingstore"
	"catering/internal/adapters/out/postgres"
	"catering/internal/adapters/out/postgres/orderrepo"
	"catering/internal/adapters/out/providers/registry"
	redisstore "catering/internal/adapters/out/redis/trackingstore"
	"catering/internal/core/application/usecases/commands"
	"catering/internal/core/application/usecases/queries"
	"catering/internal/core/ports"
	"catering/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infrastructure holds the connections opened by main. Redis and AMQP are nil
// when the configuration selects the in-process alternatives.
type Infrastructure struct {
	DB    *gorm.DB
	Redis redis.UniversalClient
	AMQP  amqp.Connection
}

type CompositionRoot struct {
	cfg    Config
	infra  Infrastructure
	logger *slog.Logger

	repo       ports.OrderRepository
	uowFactory ports.UnitOfWorkFactory
	store      ports.TrackingStore
	registry   ports.ProviderRegistry
	dispatcher ports.TaskDispatcher
	notifier   ports.StatusNotifier
	inproc     *inproc.Dispatcher

	reconcile  *commands.ReconcileOrderCommandHandler
	restaurant *commands.ApplyRestaurantStatusCommandHandler
	delivery   *commands.ApplyDeliveryStatusCommandHandler
	fulfill    *commands.FulfillRestaurantCommandHandler
	deliver    *commands.DeliverOrderCommandHandler
}

func NewCompositionRoot(cfg Config, infra Infrastructure, logger *slog.Logger) (*CompositionRoot, error) {
	if infra.DB == nil {
		return nil, errors.New("database is required")
	}

	c := &CompositionRoot{
		cfg:        cfg,
		infra:      infra,
		logger:     logger,
		repo:       orderrepo.NewGormOrderRepository(infra.DB),
		uowFactory: postgres.NewGormUnitOfWorkFactory(infra.DB),
	}

	providersCfg, err := registry.LoadConfig(cfg.ProvidersFile)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(providersCfg.WithEnvOverrides(os.LookupEnv))
	if err != nil {
		return nil, err
	}
	c.registry = reg

	switch cfg.TrackingStore {
	case TrackingStoreRedis:
		if infra.Redis == nil {
			return nil, errors.New("redis client is required for the redis tracking store")
		}
		c.store = redisstore.NewTrackingStore(infra.Redis, cfg.TrackingTTL, cfg.ExternalIndexTTL)
	default:
		c.store = memorystore.NewTrackingStore(cfg.TrackingTTL, cfg.ExternalIndexTTL)
	}

	switch cfg.TaskBroker {
	case TaskBrokerAMQP:
		if infra.AMQP == nil {
			return nil, errors.New("amqp connection is required for the amqp task broker")
		}
		dispatcher, err := amqp.NewTaskDispatcher(infra.AMQP, logger)
		if err != nil {
			return nil, err
		}
		notifier, err := amqp.NewStatusNotifier(infra.AMQP)
		if err != nil {
			return nil, err
		}
		c.dispatcher, c.notifier = dispatcher, notifier
	default:
		dispatcher, err := inproc.NewDispatcher(cfg.WorkerConcurrency, logger)
		if err != nil {
			return nil, err
		}
		c.inproc = dispatcher
		c.dispatcher, c.notifier = dispatcher, inproc.NewLogNotifier(logger)
	}

	if err := c.wireWorkers(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) wireWorkers() error {
	mode, err := commands.ParseDeliveryDispatch(c.cfg.DeliveryDispatch)
	if err != nil {
		return err
	}
	opts := c.cfg.PollingOptions()

	c.reconcile = commands.NewReconcileOrderCommandHandler(c.repo, c.store, c.dispatcher, mode, c.logger)
	c.restaurant = commands.NewApplyRestaurantStatusCommandHandler(c.repo, c.store, c.reconcile, opts.CASRetries)
	c.delivery = commands.NewApplyDeliveryStatusCommandHandler(c.repo, c.store, c.reconcile, opts.CASRetries)
	c.fulfill = commands.NewFulfillRestaurantCommandHandler(
		c.repo, c.store, c.registry, c.dispatcher, c.restaurant, c.reconcile, opts, c.logger)
	c.deliver = commands.NewDeliverOrderCommandHandler(
		c.repo, c.store, c.registry, c.dispatcher, c.delivery, c.reconcile, opts, c.logger)

	if mode == commands.DeliveryDispatchInline {
		c.reconcile.SetInlineDelivery(c.deliver)
	}
	return nil
}

// TaskHandler routes queued tasks to the workers and redelivers the ones that
// failed for a passing reason.
func (c *CompositionRoot) TaskHandler() ports.TaskHandler {
	router := commands.NewTaskRouter(c.fulfill, c.deliver, commands.NewNotifyStatusCommandHandler(c.notifier))
	return commands.NewRedeliveringTaskHandler(router, c.dispatcher, c.cfg.RedeliveryPolicy(), c.logger)
}

// RunWorkers executes tasks until ctx is done.
func (c *CompositionRoot) RunWorkers(ctx context.Context) error {
	if c.inproc != nil {
		return c.inproc.Run(ctx, c.TaskHandler())
	}
	return queue.RunAll(ctx, c.infra.AMQP, c.TaskHandler(), c.cfg.WorkerConcurrency, c.logger)
}

// CreateScheduleOrderCommandHandler builds the handler that schedules a single order.
func (c *CompositionRoot) CreateScheduleOrderCommandHandler() *commands.ScheduleOrderCommandHandler {
	return commands.NewScheduleOrderCommandHandler(c.uowFactory, c.store, c.registry, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateIngestWebhookCommandHandler() *commands.IngestWebhookCommandHandler {
	return commands.NewIngestWebhookCommandHandler(c.store, c.registry, c.restaurant, c.delivery, c.logger)
}

// JobManager builds the scheduling and keep-alive jobs.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		commands.NewScheduleAcceptedOrdersCommandHandler(c.repo, c.CreateScheduleOrderCommandHandler(), c.logger),
		commands.NewAuditTrackingCommandHandler(c.repo, c.store, c.reconcile, c.dispatcher, c.logger),
		jobs.Config{
			ScheduleSpec:  c.cfg.ScheduleCron,
			ScheduleBatch: c.cfg.ScheduleBatch,
			AuditSpec:     c.cfg.KeepAliveCron,
		},
		c.logger,
	)
}

// WebServer builds the echo instance serving webhooks and the order read endpoints.
func (c *CompositionRoot) WebServer() (*echo.Echo, error) {
	server, err := httpadapter.NewServer(
		c.CreateIngestWebhookCommandHandler(),
		c.cfg.WebhookSecret,
		c.logger,
		httpadapter.WithOrderQueries(
			queries.NewGetInFlightOrdersQueryHandler(c.infra.DB),
			queries.NewGetOrderTrackingQueryHandler(c.repo, c.store),
		),
	)
	if err != nil {
		return nil, err
	}
	return httpadapter.NewEcho(server, c.logger)
}

// Close releases the resources owned by the root.
func (c *CompositionRoot) Close() error {
	if d, ok := c.dispatcher.(*amqp.TaskDispatcher); ok {
		return d.Close()
	}
	return nil
}
