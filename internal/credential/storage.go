// Package credential owns the session credential: the opaque bearer token,
// the identity decoded from it, and its load/save/clear lifecycle against
// durable storage.
package credential

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStorage persists exactly one token under a fixed scope and survives
// process restarts.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// RedisStorage keeps the token in Redis.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStorage constructs a RedisStorage scoped to one session key.
func NewRedisStorage(client *redis.Client, scope string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, key: "credential:" + scope, ttl: ttl}
}

// Load returns the persisted token, or "" when none is stored.
func (s *RedisStorage) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Save persists the token.
func (s *RedisStorage) Save(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

// Clear removes the token.
func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// MemoryStorage is an in-process TokenStorage used in tests and for
// short-lived sessions that need no durability.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored token.
func (s *MemoryStorage) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save stores the token.
func (s *MemoryStorage) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the token.
func (s *MemoryStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var (
	_ TokenStorage = (*RedisStorage)(nil)
	_ TokenStorage = (*MemoryStorage)(nil)
)
