package credential

import (
	"context"
	"strings"
	"sync"

	"github.com/reliefgrid/reliefgrid/internal/shared"
)

// RoleFallback is assumed when a valid token carries no role claim.
const RoleFallback = "viewer"

// Store is the single owner of the session credential. Only Init, Login,
// and Logout mutate it; readers never do. A Store is safe for concurrent
// use and is constructed once and passed to consumers explicitly.
type Store struct {
	storage TokenStorage
	decoder TokenDecoder

	mu       sync.RWMutex
	token    string
	identity shared.Identity
}

// NewStore constructs a Store over the given storage and decoder.
func NewStore(storage TokenStorage, decoder TokenDecoder) *Store {
	return &Store{storage: storage, decoder: decoder}
}

// Init loads a previously persisted token and decodes it. A corrupt or
// expired token is self-healing: storage is cleared and the store comes up
// unauthenticated. Only storage I/O failures are returned.
func (s *Store) Init(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		s.reset()
		return nil
	}
	claims, err := s.decoder.Decode(token)
	if err != nil {
		s.reset()
		return s.storage.Clear(ctx)
	}
	s.set(token, claims.SubjectID, claims.Role)
	return nil
}

// Login persists the token and records the server-asserted role as the role
// of record. The subject id still comes from the token itself.
func (s *Store) Login(ctx context.Context, token, role string) error {
	if err := s.storage.Save(ctx, token); err != nil {
		return err
	}
	subject := ""
	if claims, err := s.decoder.Decode(token); err == nil {
		subject = claims.SubjectID
		if role == "" {
			role = claims.Role
		}
	}
	s.set(token, subject, role)
	return nil
}

// Logout clears the in-memory identity and durable storage.
func (s *Store) Logout(ctx context.Context) error {
	s.reset()
	return s.storage.Clear(ctx)
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the current subject identity.
func (s *Store) Identity() shared.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsAuthenticated reports whether a credential is currently held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Store) set(token, subject, role string) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleFallback
	}
	s.mu.Lock()
	s.token = token
	s.identity = shared.Identity{SubjectID: subject, Role: role}
	s.mu.Unlock()
}

func (s *Store) reset() {
	s.mu.Lock()
	s.token = ""
	s.identity = shared.Identity{}
	s.mu.Unlock()
}
