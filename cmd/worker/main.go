package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reliefgrid/reliefgrid/internal/app"
	"github.com/reliefgrid/reliefgrid/internal/feeds"
	"github.com/reliefgrid/reliefgrid/internal/observability"
	"github.com/reliefgrid/reliefgrid/internal/platform/cache"
	"github.com/reliefgrid/reliefgrid/internal/platform/db"
	"github.com/reliefgrid/reliefgrid/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	jobMetrics := observability.NewJobMetrics(nil)

	feedClient := feeds.NewClient(nil, cfg.QuakeFeedURL, cfg.FireFeedURL)
	eventsCache := feeds.NewCache(redisClient, time.Minute)
	feedsService := feeds.NewService(feedClient, feeds.NewRepository(pool), eventsCache, feeds.BoundingBox{
		MinLat: cfg.FeedMinLat,
		MaxLat: cfg.FeedMaxLat,
		MinLon: cfg.FeedMinLon,
		MaxLon: cfg.FeedMaxLon,
	}, logger).WithObserver(jobMetrics)

	refreshTask, err := jobs.NewFeedsRefreshTask(time.Now().UTC())
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskFeedsRefresh, Handler: jobs.NewFeedsRefreshHandler(feedsService, jobMetrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
