package feeds

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists disaster events.
type Repository interface {
	Upsert(ctx context.Context, events []Event) (int, error)
	List(ctx context.Context, kind string, limit int) ([]Event, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Upsert inserts events idempotently, keyed on (lon, lat, occurred_at).
// Re-running a cycle over the same feed data inserts nothing new.
func (r *repository) Upsert(ctx context.Context, events []Event) (int, error) {
	const query = `
		INSERT INTO disaster_events (kind, place, magnitude, lon, lat, occurred_at, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (lon, lat, occurred_at) DO NOTHING`
	inserted := 0
	for _, e := range events {
		tag, err := r.pool.Exec(ctx, query,
			e.Kind, e.Place, e.Magnitude, e.Lon, e.Lat, e.OccurredAt)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// List returns the most recent events, optionally filtered by kind.
func (r *repository) List(ctx context.Context, kind string, limit int) ([]Event, error) {
	const query = `
		SELECT kind, place, magnitude, lon, lat, occurred_at
		FROM disaster_events
		WHERE ($1 = '' OR kind = $1)
		ORDER BY occurred_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Kind, &e.Place, &e.Magnitude, &e.Lon, &e.Lat, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
