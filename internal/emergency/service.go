package emergency

import (
	"context"

	"github.com/google/uuid"
)

// Service wraps emergency business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries validated fields for a new report.
type CreateInput struct {
	Title    string
	Kind     string
	Severity int
	Lat      float64
	Lon      float64
}

// Create files a new emergency in the reported state.
func (s *Service) Create(ctx context.Context, in CreateInput, reportedBy string) (*Emergency, error) {
	e := Emergency{
		ID:         uuid.New(),
		Title:      in.Title,
		Kind:       in.Kind,
		Severity:   in.Severity,
		Lat:        in.Lat,
		Lon:        in.Lon,
		Status:     StatusReported,
		ReportedBy: reportedBy,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Get fetches one emergency.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Emergency, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns emergencies, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status, limit int) ([]Emergency, error) {
	return s.repo.List(ctx, status, limit)
}

// Advance moves the emergency to the target status if the transition is
// allowed.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, target Status) (*Emergency, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Status.CanTransition(target) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	e.Status = target
	return e, nil
}
