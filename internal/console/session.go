package console

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reliefgrid/reliefgrid/internal/authz"
	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/shared"
	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// Default cadences: a slow refetch of the authoritative snapshot and a fast
// tick for the cosmetic marker animation.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultTickInterval = 500 * time.Millisecond
	defaultSimStep      = 0.02
)

// SessionConfig collects the session's collaborators.
type SessionConfig struct {
	Store        *credential.Store
	Policy       authz.Policy
	Client       *Client
	Logger       *slog.Logger
	PollInterval time.Duration
	TickInterval time.Duration
	SimStep      float64
}

// Session owns the console's credential, gates navigation through the route
// policy, and maintains the tracking snapshot. The credential store is the
// single owner of the token; the session only ever mutates it through
// Bootstrap, Login, and Logout.
type Session struct {
	store  *credential.Store
	policy authz.Policy
	client *Client
	logger *slog.Logger

	refresh *tracking.Poller
	animate *tracking.Poller
	simStep float64

	mu        sync.RWMutex
	views     []TrackingView
	sims      map[string]*tracking.Simulator
	positions map[string]tracking.Position
}

// NewSession constructs a Session. The zero intervals fall back to the
// defaults above.
func NewSession(cfg SessionConfig) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SimStep <= 0 {
		cfg.SimStep = defaultSimStep
	}
	s := &Session{
		store:     cfg.Store,
		policy:    cfg.Policy,
		client:    cfg.Client,
		logger:    cfg.Logger,
		simStep:   cfg.SimStep,
		sims:      make(map[string]*tracking.Simulator),
		positions: make(map[string]tracking.Position),
	}
	s.refresh = tracking.NewPoller(cfg.PollInterval, s.refetch)
	s.animate = tracking.NewPoller(cfg.TickInterval, s.tick)
	return s
}

// Bootstrap restores a persisted credential. A corrupt token heals silently;
// only storage failures surface.
func (s *Session) Bootstrap(ctx context.Context) error {
	return s.store.Init(ctx)
}

// Login authenticates against the API and records the credential. The
// server-asserted role is the role of record.
func (s *Session) Login(ctx context.Context, email, password string) error {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.store.Login(ctx, result.Token, result.Role)
}

// Logout tears down the server session best-effort and always clears the
// local credential.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil && s.logger != nil {
		s.logger.Warn("console logout", slog.Any("error", err))
	}
	return s.store.Logout(ctx)
}

// Identity returns the current subject identity.
func (s *Session) Identity() shared.Identity {
	return s.store.Identity()
}

// IsAuthenticated reports whether a credential is held.
func (s *Session) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

// CanOpen reports whether the current identity may open the route. Routes
// absent from the policy are public, including when logged out.
func (s *Session) CanOpen(route string) bool {
	role := ""
	if s.store.IsAuthenticated() {
		role = s.store.Identity().Role
	}
	return s.policy.CanAccessRoute(role, route)
}

// Can reports whether the current identity owns the permission.
func (s *Session) Can(permission string) bool {
	if !s.store.IsAuthenticated() {
		return false
	}
	return s.policy.HasPermission(s.store.Identity().Role, permission)
}

// StartTracking begins both cadences. Starting twice is a no-op.
func (s *Session) StartTracking(ctx context.Context) {
	s.refresh.Start(ctx)
	s.animate.Start(ctx)
}

// StopTracking halts both cadences. Once it returns no further tick runs,
// so a torn-down view can never observe a late mutation.
func (s *Session) StopTracking() {
	s.animate.Stop()
	s.refresh.Stop()
}

// Views returns a copy of the last fetched snapshot.
func (s *Session) Views() []TrackingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]TrackingView, len(s.views))
	copy(views, s.views)
	return views
}

// VehiclePosition returns the simulated marker position for one order.
func (s *Session) VehiclePosition(id string) (tracking.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[id]
	return pos, ok
}

// refetch replaces the snapshot wholesale. The previous list is never
// merged into the new one; an order missing from the response is gone.
// Simulators for surviving orders are kept so the marker does not jump
// back to the route start on every poll.
func (s *Session) refetch(ctx context.Context) {
	views, err := s.client.TrackingViews(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("console tracking refetch", slog.Any("error", err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = views

	next := make(map[string]*tracking.Simulator, len(views))
	for _, view := range views {
		if tracking.Status(view.Status).Terminal() || len(view.Waypoints) < 2 {
			continue
		}
		if sim, ok := s.sims[view.ID]; ok {
			next[view.ID] = sim
			continue
		}
		next[view.ID] = tracking.NewSimulator(view.Waypoints, s.simStep)
	}
	s.sims = next
	for id := range s.positions {
		if _, ok := next[id]; !ok {
			delete(s.positions, id)
		}
	}
}

// tick advances every active simulator by one step.
func (s *Session) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sim := range s.sims {
		s.positions[id] = sim.Tick()
	}
}
