package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"catering/cmd"
	httpadapter "catering/internal/adapters/in/http"
	"catering/internal/adapters/out/amqp"
	"catering/internal/adapters/out/postgres/orderrepo"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	infra, closeInfra := openInfrastructure(configs)
	defer closeInfra()

	app, err := cmd.NewCompositionRoot(configs, infra, logger)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}
	defer func() { _ = app.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, configs.HTTPPort, logger); err != nil {
		logger.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) error {
	e, err := app.WebServer()
	if err != nil {
		return err
	}

	jobManager := app.JobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("webhook server listening", "port", port)
		return httpadapter.Serve(ctx, e, port)
	})
	g.Go(func() error {
		return app.RunWorkers(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openInfrastructure(configs cmd.Config) (cmd.Infrastructure, func()) {
	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := gormDB.AutoMigrate(orderrepo.Models()...); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	infra := cmd.Infrastructure{DB: gormDB}
	closers := []func(){func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}

	if configs.TrackingStore == cmd.TrackingStoreRedis {
		opts, err := redis.ParseURL(configs.RedisURL)
		if err != nil {
			log.Fatalf("Error parsing REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Error connecting to redis: %v", err)
		}
		infra.Redis = client
		closers = append(closers, func() { _ = client.Close() })
	}

	if configs.TaskBroker == cmd.TaskBrokerAMQP {
		conn, err := amqp.Dial(configs.AMQPURL)
		if err != nil {
			log.Fatalf("Error connecting to rabbitmq: %v", err)
		}
		infra.AMQP = conn
		closers = append(closers, func() { _ = conn.Close() })
	}

	return infra, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
