package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// Repository defines persistence operations for dispatch orders.
type Repository interface {
	Create(ctx context.Context, order Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]Order, error)
	ListActive(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, order Order) error
}

// repository implements Repository using pgxpool. Route waypoints are
// stored as JSONB.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `
	id, emergency_id, status, origin, destination, waypoints,
	dispatched_at, estimated_arrival, resources, created_by, created_at, updated_at`

func (r *repository) Create(ctx context.Context, order Order) error {
	const query = `
		INSERT INTO dispatch_orders
			(id, emergency_id, status, origin, destination, waypoints,
			 resources, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	origin, err := marshalWaypoint(order.Origin)
	if err != nil {
		return err
	}
	destination, err := marshalWaypoint(order.Destination)
	if err != nil {
		return err
	}
	waypoints, err := json.Marshal(order.Waypoints)
	if err != nil {
		return fmt.Errorf("dispatch: marshal waypoints: %w", err)
	}
	resources, err := json.Marshal(order.Resources)
	if err != nil {
		return fmt.Errorf("dispatch: marshal resources: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		order.ID, order.EmergencyID, order.Status, origin, destination,
		waypoints, resources, order.CreatedBy)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT` + orderColumns + ` FROM dispatch_orders WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Order, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT` + orderColumns + ` FROM dispatch_orders`
	args := []any{}
	if req.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, req.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, max(req.Offset, 0))
	return r.queryOrders(ctx, query, args...)
}

func (r *repository) ListActive(ctx context.Context) ([]Order, error) {
	query := `SELECT` + orderColumns + `
		FROM dispatch_orders
		WHERE status IN ('received', 'dispatched', 'en_route')
		ORDER BY created_at`
	return r.queryOrders(ctx, query)
}

func (r *repository) UpdateStatus(ctx context.Context, order Order) error {
	const query = `
		UPDATE dispatch_orders
		SET status = $2, dispatched_at = $3, estimated_arrival = $4,
		    waypoints = $5, updated_at = now()
		WHERE id = $1`
	waypoints, err := json.Marshal(order.Waypoints)
	if err != nil {
		return fmt.Errorf("dispatch: marshal waypoints: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query,
		order.ID, order.Status, order.DispatchedAt, order.EstimatedArrival, waypoints)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		order                     Order
		origin, destination       []byte
		waypoints, resources      []byte
		dispatchedAt, estimatedAt *time.Time
	)
	err := row.Scan(
		&order.ID, &order.EmergencyID, &order.Status, &origin, &destination,
		&waypoints, &dispatchedAt, &estimatedAt, &resources,
		&order.CreatedBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.DispatchedAt = dispatchedAt
	order.EstimatedArrival = estimatedAt
	if order.Origin, err = unmarshalWaypoint(origin); err != nil {
		return nil, err
	}
	if order.Destination, err = unmarshalWaypoint(destination); err != nil {
		return nil, err
	}
	if len(waypoints) > 0 {
		if err := json.Unmarshal(waypoints, &order.Waypoints); err != nil {
			return nil, fmt.Errorf("dispatch: unmarshal waypoints: %w", err)
		}
	}
	if len(resources) > 0 {
		if err := json.Unmarshal(resources, &order.Resources); err != nil {
			return nil, fmt.Errorf("dispatch: unmarshal resources: %w", err)
		}
	}
	return &order, nil
}

func marshalWaypoint(w *tracking.Waypoint) ([]byte, error) {
	if w == nil {
		return nil, nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("dispatch: marshal waypoint: %w", err)
	}
	return data, nil
}

func unmarshalWaypoint(data []byte) (*tracking.Waypoint, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var w tracking.Waypoint
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("dispatch: unmarshal waypoint: %w", err)
	}
	return &w, nil
}
