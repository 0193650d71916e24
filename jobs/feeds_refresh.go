package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reliefgrid/reliefgrid/internal/observability"
)

// Refresher runs one disaster-feed ingestion cycle.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// NewFeedsRefreshHandler returns the Asynq handler for TaskFeedsRefresh.
// The handler is injected during worker setup because it needs the feed
// service, which only the worker process constructs.
func NewFeedsRefreshHandler(svc Refresher, metrics *observability.JobMetrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload FeedsRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		started := time.Now()
		tracker := metrics.Track(TaskFeedsRefresh)
		inserted, err := svc.Refresh(ctx)
		if err = tracker.End(err); err != nil {
			if logger != nil {
				logger.Error("feeds refresh failed", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("feeds refresh done",
				slog.Int("inserted", inserted),
				slog.Duration("took", time.Since(started)),
				slog.Time("scheduled_for", payload.ScheduledFor))
		}
		return nil
	}
}
