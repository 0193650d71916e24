package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indiaBox matches the production default.
var indiaBox = BoundingBox{MinLat: 6, MaxLat: 37, MinLon: 68, MaxLon: 97}

const quakeFeed = `{
	"features": [
		{"geometry": {"coordinates": [77.2, 28.6, 10.0]},
		 "properties": {"place": "12km N of Delhi", "mag": 4.5, "time": 1748800000000}},
		{"geometry": {"coordinates": [-122.4, 37.8, 8.0]},
		 "properties": {"place": "San Francisco Bay", "mag": 3.1, "time": 1748800000000}}
	]
}`

const fireFeed = `{
	"features": [
		{"geometry": {"coordinates": [78.5, 17.4]},
		 "properties": {"brightness": 330.5, "acq_date": "2025-06-01", "acq_time": "0415", "satellite": "Aqua"}},
		{"geometry": {"coordinates": [80.1, 13.0]},
		 "properties": {"brightness": 312.0, "acq_date": "2025-06-01", "acq_time": "bad", "satellite": ""}}
	]
}`

type memoryRepo struct {
	seen map[[2]float64]Event
}

func (m *memoryRepo) Upsert(ctx context.Context, events []Event) (int, error) {
	if m.seen == nil {
		m.seen = make(map[[2]float64]Event)
	}
	inserted := 0
	for _, e := range events {
		key := [2]float64{e.Lon, e.Lat}
		if _, ok := m.seen[key]; !ok {
			m.seen[key] = e
			inserted++
		}
	}
	return inserted, nil
}

func (m *memoryRepo) List(ctx context.Context, kind string, limit int) ([]Event, error) {
	var out []Event
	for _, e := range m.seen {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quakes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(quakeFeed))
	})
	mux.HandleFunc("/fires", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fireFeed))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRefreshFiltersAndNormalizes(t *testing.T) {
	server := newFeedServer(t)
	client := NewClient(server.Client(), server.URL+"/quakes", server.URL+"/fires")
	fixedNow := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	client.clock = func() time.Time { return fixedNow }

	repo := &memoryRepo{}
	svc := NewService(client, repo, nil, indiaBox, nil)

	inserted, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	// The San Francisco quake is outside the box.
	assert.Equal(t, 3, inserted)

	quake := repo.seen[[2]float64{77.2, 28.6}]
	assert.Equal(t, KindEarthquake, quake.Kind)
	require.NotNil(t, quake.Magnitude)
	assert.Equal(t, 4.5, *quake.Magnitude)
	assert.Equal(t, time.UnixMilli(1748800000000).UTC(), quake.OccurredAt)

	fire := repo.seen[[2]float64{78.5, 17.4}]
	assert.Equal(t, KindFire, fire.Kind)
	assert.Equal(t, "Aqua", fire.Place)
	require.NotNil(t, fire.Magnitude)
	assert.InDelta(t, 3.305, *fire.Magnitude, 1e-9)
	assert.Equal(t, time.Date(2025, time.June, 1, 4, 15, 0, 0, time.UTC), fire.OccurredAt)

	// Unparsable acquisition time falls back to the current instant, and a
	// missing satellite label falls back to a placeholder.
	fallback := repo.seen[[2]float64{80.1, 13.0}]
	assert.Equal(t, "Unknown area", fallback.Place)
	assert.Equal(t, fixedNow, fallback.OccurredAt)
}

func TestRefreshIsIdempotent(t *testing.T) {
	server := newFeedServer(t)
	client := NewClient(server.Client(), server.URL+"/quakes", server.URL+"/fires")
	repo := &memoryRepo{}
	svc := NewService(client, repo, nil, indiaBox, nil)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	second, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first)
	assert.Equal(t, 0, second)
}

type recordingObserver struct {
	counts map[string]int
}

func (o *recordingObserver) AddFeedEvents(kind string, count int) {
	o.counts[kind] += count
}

func TestRefreshReportsPerKindCounts(t *testing.T) {
	server := newFeedServer(t)
	client := NewClient(server.Client(), server.URL+"/quakes", server.URL+"/fires")
	obs := &recordingObserver{counts: map[string]int{}}
	svc := NewService(client, &memoryRepo{}, nil, indiaBox, nil).WithObserver(obs)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KindEarthquake: 1, KindFire: 2}, obs.counts)
}

func TestRefreshSurfacesFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL, server.URL)
	svc := NewService(client, &memoryRepo{}, nil, indiaBox, nil)
	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
}
