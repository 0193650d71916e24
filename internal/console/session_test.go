package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefgrid/reliefgrid/internal/authz"
	"github.com/reliefgrid/reliefgrid/internal/credential"
	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

const testSecret = "console-test-secret"

func mintToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type apiState struct {
	mu       sync.Mutex
	views    []TrackingView
	logouts  int
	lastAuth string
}

func (a *apiState) setViews(views []TrackingView) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.views = views
}

func newAPIServer(t *testing.T, state *apiState) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "s3cret-pass" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"title": "Unauthorized", "status": http.StatusUnauthorized,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResult{
			Token:     mintToken(t, "user-1", "Branch Manager"),
			Role:      "Branch Manager",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(time.Hour),
		})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		state.logouts++
		state.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/dispatch/tracking", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		state.lastAuth = r.Header.Get("Authorization")
		views := state.views
		state.mu.Unlock()
		_ = json.NewEncoder(w).Encode(views)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestSession(t *testing.T, state *apiState) *Session {
	t.Helper()
	server := newAPIServer(t, state)
	store := credential.NewStore(credential.NewMemoryStorage(), credential.NewJWTDecoder(testSecret))
	client := NewClient(server.Client(), server.URL, store.Token)
	return NewSession(SessionConfig{
		Store:        store,
		Policy:       authz.DefaultPolicy(),
		Client:       client,
		PollInterval: 10 * time.Millisecond,
		TickInterval: time.Millisecond,
		SimStep:      0.5,
	})
}

func TestLoginRecordsServerRole(t *testing.T) {
	session := newTestSession(t, &apiState{})

	require.NoError(t, session.Bootstrap(context.Background()))
	assert.False(t, session.IsAuthenticated())

	require.NoError(t, session.Login(context.Background(), "ops@relief.test", "s3cret-pass"))
	assert.True(t, session.IsAuthenticated())
	// Role of record is the server's, lower-cased by the store.
	assert.Equal(t, "branch manager", session.Identity().Role)
	assert.Equal(t, "user-1", session.Identity().SubjectID)
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	session := newTestSession(t, &apiState{})

	err := session.Login(context.Background(), "ops@relief.test", "wrong-password")
	require.Error(t, err)
	assert.False(t, session.IsAuthenticated())
}

func TestLogoutClearsLocalCredential(t *testing.T) {
	state := &apiState{}
	session := newTestSession(t, state)

	require.NoError(t, session.Login(context.Background(), "ops@relief.test", "s3cret-pass"))
	require.NoError(t, session.Logout(context.Background()))
	assert.False(t, session.IsAuthenticated())
	state.mu.Lock()
	defer state.mu.Unlock()
	assert.Equal(t, 1, state.logouts)
}

func TestCanOpenFollowsRoutePolicy(t *testing.T) {
	session := newTestSession(t, &apiState{})

	// Anonymous: unlisted routes are public, listed ones are not.
	assert.True(t, session.CanOpen("/about"))
	assert.False(t, session.CanOpen("/dispatch"))

	require.NoError(t, session.Login(context.Background(), "ops@relief.test", "s3cret-pass"))
	assert.True(t, session.CanOpen("/dispatch"))
	assert.False(t, session.CanOpen("/users"))
	assert.True(t, session.Can(authz.PermDispatchResources))
	assert.False(t, session.Can(authz.PermManageUsers))
}

func TestTrackingSnapshotReplacesWholesale(t *testing.T) {
	state := &apiState{}
	state.setViews([]TrackingView{
		{ID: "order-a", Status: "en_route", Progress: 40,
			Waypoints: []tracking.Waypoint{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 0}}},
		{ID: "order-b", Status: "dispatched", Progress: 5,
			Waypoints: []tracking.Waypoint{{Lat: 5, Lon: 5}, {Lat: 6, Lon: 6}}},
	})
	session := newTestSession(t, state)
	require.NoError(t, session.Login(context.Background(), "ops@relief.test", "s3cret-pass"))

	session.StartTracking(context.Background())
	defer session.StopTracking()

	require.Eventually(t, func() bool {
		return len(session.Views()) == 2
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := session.VehiclePosition("order-a")
		return ok
	}, time.Second, time.Millisecond)

	// A fetched list replaces the previous one entirely; the finished order
	// and its marker disappear.
	state.setViews([]TrackingView{
		{ID: "order-b", Status: "dispatched", Progress: 6,
			Waypoints: []tracking.Waypoint{{Lat: 5, Lon: 5}, {Lat: 6, Lon: 6}}},
	})
	require.Eventually(t, func() bool {
		views := session.Views()
		if len(views) != 1 || views[0].ID != "order-b" {
			return false
		}
		_, gone := session.VehiclePosition("order-a")
		return !gone
	}, time.Second, time.Millisecond)

	state.mu.Lock()
	auth := state.lastAuth
	state.mu.Unlock()
	assert.Contains(t, auth, "Bearer ")
}

func TestStopTrackingHaltsTicks(t *testing.T) {
	state := &apiState{}
	state.setViews([]TrackingView{
		{ID: "order-a", Status: "en_route",
			Waypoints: []tracking.Waypoint{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 0}}},
	})
	server := newAPIServer(t, state)
	store := credential.NewStore(credential.NewMemoryStorage(), credential.NewJWTDecoder(testSecret))
	session := NewSession(SessionConfig{
		Store:        store,
		Policy:       authz.DefaultPolicy(),
		Client:       NewClient(server.Client(), server.URL, store.Token),
		PollInterval: 10 * time.Millisecond,
		TickInterval: time.Millisecond,
		// Small enough that the marker is still moving when we stop.
		SimStep: 1e-6,
	})
	require.NoError(t, session.Login(context.Background(), "ops@relief.test", "s3cret-pass"))

	session.StartTracking(context.Background())
	require.Eventually(t, func() bool {
		_, ok := session.VehiclePosition("order-a")
		return ok
	}, time.Second, time.Millisecond)

	session.StopTracking()
	pos, _ := session.VehiclePosition("order-a")
	time.Sleep(10 * time.Millisecond)
	after, _ := session.VehiclePosition("order-a")
	assert.Equal(t, pos, after)

	// Restartable after a stop.
	session.StartTracking(context.Background())
	session.StopTracking()
}
