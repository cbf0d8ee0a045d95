package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/jinxed112/fritos-dispatch/api/routes"
	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	"github.com/jinxed112/fritos-dispatch/internal/kitchen"
	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/internal/preptime"
	"github.com/jinxed112/fritos-dispatch/internal/rounds"
	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/internal/slots"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
	"github.com/jinxed112/fritos-dispatch/pkg/maps"
	"github.com/jinxed112/fritos-dispatch/pkg/migrate"
	"github.com/jinxed112/fritos-dispatch/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	slotsRepo := slots.NewRepository(dbClient.DB())
	scheduleRepo := schedule.NewRepository(dbClient.DB())
	roundsRepo := rounds.NewRepository(dbClient.DB())

	scheduleService, err := schedule.NewService(scheduleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	prepService, err := preptime.NewService(preptime.ServiceParams{Orders: ordersRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create prep-time service", err)
		os.Exit(1)
	}

	generator, err := slots.NewGenerator(slots.GeneratorParams{
		Repo:     slotsRepo,
		Schedule: scheduleService,
		Prep:     prepService,
		Demand:   ordersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create slot generator", err)
		os.Exit(1)
	}

	ledger, err := slots.NewLedger(slots.LedgerParams{
		Repo:   slotsRepo,
		Orders: ordersRepo,
		Tx:     dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create slot ledger", err)
		os.Exit(1)
	}

	clusteringService, err := clustering.NewService(clustering.ServiceParams{
		Orders:     ordersRepo,
		Prep:       prepService,
		Schedule:   scheduleService,
		Clustering: cfg.Clustering,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create clustering service", err)
		os.Exit(1)
	}

	roundsParams := rounds.ServiceParams{
		Repo:       roundsRepo,
		Orders:     ordersRepo,
		Tx:         dbClient,
		Prep:       prepService,
		Schedule:   scheduleService,
		Clustering: cfg.Clustering,
	}
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, mapsErr := maps.NewClient(cfg.GoogleMaps.APIKey)
		if mapsErr != nil {
			logg.Error(context.Background(), "failed to create maps client", mapsErr)
			os.Exit(1)
		}
		roundsParams.Travel = mapsClient
	}

	roundsService, err := rounds.NewService(roundsParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create rounds service", err)
		os.Exit(1)
	}

	kitchenService, err := kitchen.NewService(kitchen.ServiceParams{
		Orders:    ordersRepo,
		Prep:      prepService,
		Schedule:  scheduleService,
		Logger:    logg,
		Scheduler: cfg.Scheduler,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Generator: generator,
			Ledger:    ledger,
			Schedule:  scheduleService,
			Clusters:  clusteringService,
			Rounds:    roundsService,
			Kitchen:   kitchenService,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
