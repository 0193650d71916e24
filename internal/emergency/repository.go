package emergency

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reliefgrid/reliefgrid/internal/platform/db"
)

// Repository defines persistence operations for emergencies.
type Repository interface {
	Create(ctx context.Context, e Emergency) error
	GetByID(ctx context.Context, id uuid.UUID) (*Emergency, error)
	List(ctx context.Context, status Status, limit int) ([]Emergency, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, e Emergency) error {
	const query = `
		INSERT INTO emergencies
			(id, title, kind, severity, lat, lon, status, reported_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Title, e.Kind, e.Severity, e.Lat, e.Lon, e.Status, e.ReportedBy)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Emergency, error) {
	const query = `
		SELECT id, title, kind, severity, lat, lon, status, reported_by, created_at, updated_at
		FROM emergencies WHERE id = $1`
	var e Emergency
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Kind, &e.Severity, &e.Lat, &e.Lon,
		&e.Status, &e.ReportedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, status Status, limit int) ([]Emergency, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, title, kind, severity, lat, lon, status, reported_by, created_at, updated_at
		FROM emergencies`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Emergency
	for rows.Next() {
		var e Emergency
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Kind, &e.Severity, &e.Lat, &e.Lon,
			&e.Status, &e.ReportedBy, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus moves the emergency and appends the status-history row in
// one transaction, so the audit trail never drifts from the record.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE emergencies SET status = $2, updated_at = now() WHERE id = $1`, id, status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO emergency_status_history (emergency_id, status, changed_at) VALUES ($1, $2, now())`,
			id, status)
		return err
	})
}
