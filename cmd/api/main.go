package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/migios-apps/migios-console-api/api/routes"
	"github.com/migios-apps/migios-console-api/internal/catalog"
	checkoutsvc "github.com/migios-apps/migios-console-api/internal/checkout"
	"github.com/migios-apps/migios-console-api/internal/draft"
	"github.com/migios-apps/migios-console-api/pkg/config"
	"github.com/migios-apps/migios-console-api/pkg/coreapi"
	"github.com/migios-apps/migios-console-api/pkg/logger"
	"github.com/migios-apps/migios-console-api/pkg/metrics"
	"github.com/migios-apps/migios-console-api/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "console-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	coreClient, err := coreapi.NewClient(context.Background(), cfg.CoreAPI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create core api client", err)
		os.Exit(1)
	}

	draftStore, err := draft.NewStore(redisClient, cfg.Draft.TTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft store", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(draftStore, coreClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	searchService, err := catalog.NewService(coreClient, redisClient, cfg.Search, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting console api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			Redis:        redisClient,
			CoreAPI:      coreClient,
			DraftStore:   draftStore,
			Checkout:     checkoutService,
			Search:       searchService,
			HTTPMetrics:  httpMetrics,
			PromRegistry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "console api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
