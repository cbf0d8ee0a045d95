package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jinxed112/fritos-dispatch/internal/cron"
	"github.com/jinxed112/fritos-dispatch/internal/kitchen"
	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/internal/preptime"
	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
	"github.com/jinxed112/fritos-dispatch/pkg/metrics"
	"github.com/jinxed112/fritos-dispatch/pkg/migrate"
	"github.com/jinxed112/fritos-dispatch/pkg/redis"
)

const lockKeyFormat = "fritos:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ordersRepo := orders.NewRepository(dbClient.DB())

	scheduleService, err := schedule.NewService(schedule.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	prepService, err := preptime.NewService(preptime.ServiceParams{Orders: ordersRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create prep-time service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewSchedulerMetrics(prometheus.DefaultRegisterer)

	kitchenService, err := kitchen.NewService(kitchen.ServiceParams{
		Orders:    ordersRepo,
		Prep:      prepService,
		Schedule:  scheduleService,
		Logger:    logg,
		Metrics:   metricsCollector,
		Scheduler: cfg.Scheduler,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen service", err)
		os.Exit(1)
	}

	launchJob, err := kitchen.NewLaunchJob(kitchenService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create launch job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Scheduler.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(launchJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Scheduler.TickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
