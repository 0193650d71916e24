package feeds

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// IngestObserver receives per-kind counts of newly stored events.
// *observability.JobMetrics satisfies it.
type IngestObserver interface {
	AddFeedEvents(kind string, count int)
}

// Service orchestrates ingestion cycles and cached reads.
type Service struct {
	client   *Client
	repo     Repository
	cache    *Cache
	box      BoundingBox
	logger   *slog.Logger
	observer IngestObserver
}

// NewService constructs a new Service. cache may be nil.
func NewService(client *Client, repo Repository, cache *Cache, box BoundingBox, logger *slog.Logger) *Service {
	return &Service{client: client, repo: repo, cache: cache, box: box, logger: logger}
}

// WithObserver attaches an ingestion observer and returns the service.
func (s *Service) WithObserver(o IngestObserver) *Service {
	s.observer = o
	return s
}

// Refresh fetches both feeds concurrently and upserts them kind by kind.
// Returns the number of newly inserted events.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	var quakes, fires []Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quakes, err = s.client.FetchQuakes(gctx, s.box)
		return err
	})
	g.Go(func() error {
		var err error
		fires, err = s.client.FetchFires(gctx, s.box)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	inserted := 0
	for _, batch := range []struct {
		kind   string
		events []Event
	}{
		{KindEarthquake, quakes},
		{KindFire, fires},
	} {
		n, err := s.repo.Upsert(ctx, batch.events)
		inserted += n
		if err != nil {
			return inserted, err
		}
		if s.observer != nil {
			s.observer.AddFeedEvents(batch.kind, n)
		}
	}
	if inserted > 0 {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("bump events cache", slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("disaster feeds refreshed",
			slog.Int("quakes", len(quakes)),
			slog.Int("fires", len(fires)),
			slog.Int("inserted", inserted))
	}
	return inserted, nil
}

// Recent lists the latest stored events, optionally filtered by kind.
// limit values outside (0,500] are clamped to 100. Listings are served
// through the versioned cache when one is configured.
func (s *Service) Recent(ctx context.Context, kind string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	key, err := s.cache.BuildKey(ctx, "feeds:events", kind, strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	var events []Event
	err = s.cache.FetchJSON(ctx, key, &events, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, kind, limit)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
