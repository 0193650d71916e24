// Package console is the client-side composition root for an operations
// console: it owns the session credential, checks the route policy before
// opening a view, and drives the two tracking cadences (a slow refetch and
// a fast marker animation).
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// Client talks to the ReliefGrid HTTP API. The token callback supplies the
// current bearer token; an empty token sends an anonymous request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      func() string
}

// NewClient constructs an API client rooted at baseURL.
func NewClient(httpClient *http.Client, baseURL string, token func() string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TrackingView mirrors one entry of the server's tracking payload.
type TrackingView struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	Progress         int                 `json:"progress"`
	TimeRemaining    string              `json:"time_remaining"`
	EstimatedArrival *time.Time          `json:"estimated_arrival,omitempty"`
	Destination      *tracking.Waypoint  `json:"destination,omitempty"`
	Waypoints        []tracking.Waypoint `json:"waypoints,omitempty"`
	Resources        []string            `json:"resources,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the server-side session. The caller clears the local
// credential regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// TrackingViews fetches the current tracking snapshot.
func (c *Client) TrackingViews(ctx context.Context) ([]TrackingView, error) {
	var views []TrackingView
	if err := c.do(ctx, http.MethodGet, "/dispatch/tracking", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

type problemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("console: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("console: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("console: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var problem problemDetail
		if err := json.NewDecoder(res.Body).Decode(&problem); err == nil && problem.Title != "" {
			return fmt.Errorf("console: %s %s: %s (%d)", method, path, problem.Title, res.StatusCode)
		}
		return fmt.Errorf("console: %s %s: unexpected status %d", method, path, res.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("console: decode response: %w", err)
	}
	return nil
}
