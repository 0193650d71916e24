package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// Notifier announces approved dispatches out of band. A nil notifier
// disables announcements.
type Notifier interface {
	NotifyDispatched(ctx context.Context, order Order) error
}

// Service wraps dispatch business rules. The service drives every status
// transition; the tracking engine only interprets the resulting records.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new dispatch order in the received state.
func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*Order, error) {
	emergencyID, err := uuid.Parse(req.EmergencyID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: parse emergency id: %w", err)
	}
	destination := req.Destination.toWaypoint()
	order := Order{
		ID:          uuid.New(),
		EmergencyID: emergencyID,
		Status:      StatusReceived,
		Destination: &destination,
		Resources:   req.Resources,
		CreatedBy:   createdBy,
	}
	if req.Origin != nil {
		origin := req.Origin.toWaypoint()
		order.Origin = &origin
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Order, error) {
	return s.repo.List(ctx, req)
}

// Dispatch approves the order: records the dispatch time, the estimated
// arrival, and the planned route. The arrival must lie strictly after the
// dispatch time.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID, req DispatchRequest) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanDispatch() {
		return nil, ErrInvalidTransition
	}
	now := s.clock()
	if !req.EstimatedArrival.After(now) {
		return nil, ErrBadArrivalWindow
	}
	order.Status = StatusDispatched
	order.DispatchedAt = &now
	eta := req.EstimatedArrival.UTC()
	order.EstimatedArrival = &eta
	order.Waypoints = routeFor(order, req.Waypoints)
	if err := s.repo.UpdateStatus(ctx, *order); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyDispatched(ctx, *order); err != nil && s.logger != nil {
			s.logger.Warn("dispatch notify", slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("dispatch order approved",
			slog.String("id", order.ID.String()),
			slog.Time("estimated_arrival", eta))
	}
	return order, nil
}

// MarkEnRoute flags the vehicle as moving.
func (s *Service) MarkEnRoute(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, id, StatusEnRoute, Status.CanMarkEnRoute)
}

// Complete closes the order. delivered selects the delivered terminal state
// instead of completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, delivered bool) (*Order, error) {
	target := StatusCompleted
	if delivered {
		target = StatusDelivered
	}
	return s.transition(ctx, id, target, Status.CanComplete)
}

// Cancel aborts an order that has not left yet.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, id, StatusCancelled, Status.CanCancel)
}

// Snapshot returns normalized tracking records for every active order. A
// fetched snapshot wholly replaces the previous one on the consumer side.
func (s *Service) Snapshot(ctx context.Context) ([]tracking.Record, error) {
	orders, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]tracking.Record, 0, len(orders))
	for _, order := range orders {
		records = append(records, order.TrackingRecord())
	}
	return records, nil
}

// TrackingViews derives the human-facing progress state for every active
// order at the current instant.
func (s *Service) TrackingViews(ctx context.Context) ([]TrackingView, error) {
	orders, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	views := make([]TrackingView, 0, len(orders))
	for _, order := range orders {
		rec := order.TrackingRecord()
		views = append(views, TrackingView{
			ID:               rec.ID,
			Status:           order.Status,
			Progress:         tracking.Progress(rec, now),
			TimeRemaining:    tracking.TimeRemaining(rec, now),
			EstimatedArrival: order.EstimatedArrival,
			Destination:      order.Destination,
			Waypoints:        order.Waypoints,
			Resources:        rec.Resources,
		})
	}
	return views, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target Status, allowed func(Status) bool) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(order.Status) {
		return nil, ErrInvalidTransition
	}
	order.Status = target
	if err := s.repo.UpdateStatus(ctx, *order); err != nil {
		return nil, err
	}
	return order, nil
}

// routeFor resolves the planned route: explicit waypoints win, otherwise a
// straight origin→destination leg when both endpoints are known.
func routeFor(order *Order, waypoints []WaypointDTO) []tracking.Waypoint {
	if len(waypoints) >= 2 {
		route := make([]tracking.Waypoint, 0, len(waypoints))
		for _, w := range waypoints {
			route = append(route, w.toWaypoint())
		}
		return route
	}
	if order.Origin != nil && order.Destination != nil {
		return []tracking.Waypoint{*order.Origin, *order.Destination}
	}
	return nil
}
