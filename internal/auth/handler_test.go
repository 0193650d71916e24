package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/reliefgrid/reliefgrid/internal/auth"
	"github.com/reliefgrid/reliefgrid/internal/authz"
	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/shared"
)

const testSecret = "handler-test-secret"

type stubRepo struct {
	user    *auth.User
	created []auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) error {
	s.created = append(s.created, user)
	return nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID string, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newService(repo auth.Repository) *auth.Service {
	return auth.NewService(repo, auth.NewTokenIssuer(testSecret, time.Hour))
}

func TestAuthenticateIssuesDecodableToken(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{user: &auth.User{
		Email:        "ops@relief.local",
		PasswordHash: string(hashed),
		Role:         "Branch Manager",
		IsActive:     true,
	}}

	user, token, err := newService(repo).Authenticate(context.Background(), "ops@relief.local", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != "branch manager" {
		t.Fatalf("role not normalized: %q", user.Role)
	}

	claims, err := credential.NewJWTDecoder(testSecret).Decode(token)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Role != "branch manager" {
		t.Fatalf("token role %q", claims.Role)
	}
	if claims.SubjectID != user.ID.String() {
		t.Fatalf("token subject %q, want %q", claims.SubjectID, user.ID)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	svc := newService(&stubRepo{user: &auth.User{
		Email:        "ops@relief.local",
		PasswordHash: string(hashed),
		Role:         "volunteer",
		IsActive:     true,
	}})
	if _, _, err := svc.Authenticate(context.Background(), "ops@relief.local", "wrong"); err != shared.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	inactive := newService(&stubRepo{user: &auth.User{
		Email:        "ops@relief.local",
		PasswordHash: string(hashed),
		Role:         "volunteer",
	}})
	if _, _, err := inactive.Authenticate(context.Background(), "ops@relief.local", "correct-horse"); err != shared.ErrInvalidCredentials {
		t.Fatalf("inactive account must not authenticate, got %v", err)
	}
}

func TestRegisterDefaultsToAffectedCitizen(t *testing.T) {
	repo := &stubRepo{}
	user, err := newService(repo).Register(context.Background(), "new@relief.local", "New Person", "long-password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != authz.RoleAffectedCitizen {
		t.Fatalf("expected affected citizen default, got %q", user.Role)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted user")
	}
}

func TestLoginHandler(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	repo := &stubRepo{user: &auth.User{
		Email:        "ops@relief.local",
		PasswordHash: string(hashed),
		Role:         "admin",
		IsActive:     true,
	}}
	handler := auth.NewHandler(nil, newService(repo))

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ops@relief.local","password":"correct-horse"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token == "" || body.Role != "admin" {
		t.Fatalf("unexpected response %+v", body)
	}

	badReq := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ops@relief.local","password":"wrong-password"}`))
	badRes := httptest.NewRecorder()
	router.ServeHTTP(badRes, badReq)
	if badRes.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", badRes.Code)
	}
}
