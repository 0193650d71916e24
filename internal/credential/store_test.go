package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/reliefgrid/reliefgrid/internal/credential"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, subject, role string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(expiry).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newRedisStorage(t *testing.T) *credential.RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return credential.NewRedisStorage(client, "console", time.Hour)
}

func TestLoginThenInitRestoresIdentity(t *testing.T) {
	ctx := context.Background()
	storage := newRedisStorage(t)
	decoder := credential.NewJWTDecoder(testSecret)

	store := credential.NewStore(storage, decoder)
	token := mintToken(t, "user-42", "Branch Manager", time.Hour)
	if err := store.Login(ctx, token, "Branch Manager"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := store.Identity().Role; got != "branch manager" {
		t.Fatalf("role not lower-cased: %q", got)
	}

	// Fresh store over the same storage simulates a process restart.
	restarted := credential.NewStore(storage, decoder)
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !restarted.IsAuthenticated() {
		t.Fatalf("expected authenticated after init")
	}
	id := restarted.Identity()
	if id.SubjectID != "user-42" || id.Role != "branch manager" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestLogoutClearsDurableState(t *testing.T) {
	ctx := context.Background()
	storage := newRedisStorage(t)
	decoder := credential.NewJWTDecoder(testSecret)

	store := credential.NewStore(storage, decoder)
	if err := store.Login(ctx, mintToken(t, "u1", "volunteer", time.Hour), "volunteer"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated after logout")
	}

	restarted := credential.NewStore(storage, decoder)
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if restarted.IsAuthenticated() {
		t.Fatalf("logout must survive restart")
	}
}

func TestInitSelfHealsOnCorruptToken(t *testing.T) {
	ctx := context.Background()
	storage := credential.NewMemoryStorage()
	if err := storage.Save(ctx, "not-a-jwt"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := credential.NewStore(storage, credential.NewJWTDecoder(testSecret))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init must not surface decode errors: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("corrupt token must degrade to unauthenticated")
	}
	if token, _ := storage.Load(ctx); token != "" {
		t.Fatalf("corrupt token must be cleared from storage, got %q", token)
	}
}

func TestInitSelfHealsOnExpiredToken(t *testing.T) {
	ctx := context.Background()
	storage := credential.NewMemoryStorage()
	_ = storage.Save(ctx, mintToken(t, "u1", "admin", -time.Minute))

	store := credential.NewStore(storage, credential.NewJWTDecoder(testSecret))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expired token must degrade to unauthenticated")
	}
}

func TestMissingRoleClaimFallsBackToViewer(t *testing.T) {
	ctx := context.Background()
	storage := credential.NewMemoryStorage()
	_ = storage.Save(ctx, mintToken(t, "u9", "", time.Hour))

	store := credential.NewStore(storage, credential.NewJWTDecoder(testSecret))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := store.Identity().Role; got != credential.RoleFallback {
		t.Fatalf("expected fallback role, got %q", got)
	}
}
