package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reliefgrid/reliefgrid/internal/app"
	"github.com/reliefgrid/reliefgrid/internal/auth"
	"github.com/reliefgrid/reliefgrid/internal/authz"
	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/dispatch"
	"github.com/reliefgrid/reliefgrid/internal/emergency"
	"github.com/reliefgrid/reliefgrid/internal/feeds"
	"github.com/reliefgrid/reliefgrid/internal/observability"
	"github.com/reliefgrid/reliefgrid/internal/platform/cache"
	"github.com/reliefgrid/reliefgrid/internal/platform/db"
	"github.com/reliefgrid/reliefgrid/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	decoder := credential.NewJWTDecoder(cfg.JWTSecret)
	policy := authz.DefaultPolicy()
	gate := authz.Middleware{Policy: policy, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
	authHandler := auth.NewHandler(logger, authService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	dispatchRepo := dispatch.NewRepository(dbpool)
	dispatchService := dispatch.NewService(dispatchRepo, jobClient, logger)
	dispatchHandler := dispatch.NewHandler(logger, dispatchService)

	emergencyRepo := emergency.NewRepository(dbpool)
	emergencyService := emergency.NewService(emergencyRepo)
	emergencyHandler := emergency.NewHandler(logger, emergencyService)

	eventsCache := feeds.NewCache(redisClient, time.Minute)
	feedsRepo := feeds.NewRepository(dbpool)
	feedClient := feeds.NewClient(nil, cfg.QuakeFeedURL, cfg.FireFeedURL)
	feedsService := feeds.NewService(feedClient, feedsRepo, eventsCache, feedBox(cfg), logger)
	feedsHandler := feeds.NewHandler(logger, feedsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		TokenDecoder:     decoder,
		Gate:             gate,
		AuthHandler:      authHandler,
		DispatchHandler:  dispatchHandler,
		EmergencyHandler: emergencyHandler,
		FeedsHandler:     feedsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func feedBox(cfg *app.Config) feeds.BoundingBox {
	return feeds.BoundingBox{
		MinLat: cfg.FeedMinLat,
		MaxLat: cfg.FeedMaxLat,
		MinLon: cfg.FeedMinLon,
		MaxLon: cfg.FeedMaxLon,
	}
}
