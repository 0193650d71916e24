package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fetches and normalizes the upstream GeoJSON feeds.
type Client struct {
	httpClient *http.Client
	quakeURL   string
	fireURL    string
	clock      func() time.Time
}

// NewClient constructs a feed client.
func NewClient(httpClient *http.Client, quakeURL, fireURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		quakeURL:   quakeURL,
		fireURL:    fireURL,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		// USGS earthquake fields.
		Place string   `json:"place"`
		Mag   *float64 `json:"mag"`
		Time  int64    `json:"time"`
		// FIRMS fire fields.
		Brightness json.Number `json:"brightness"`
		AcqDate    string      `json:"acq_date"`
		AcqTime    string      `json:"acq_time"`
		Satellite  string      `json:"satellite"`
	} `json:"properties"`
}

// FetchQuakes pulls the earthquake feed and normalizes events inside box.
func (c *Client) FetchQuakes(ctx context.Context, box BoundingBox) ([]Event, error) {
	features, err := c.fetch(ctx, c.quakeURL)
	if err != nil {
		return nil, fmt.Errorf("feeds: fetch quakes: %w", err)
	}
	var events []Event
	for _, f := range features {
		lon, lat, ok := coordinates(f)
		if !ok || !box.Contains(lat, lon) {
			continue
		}
		events = append(events, Event{
			Kind:       KindEarthquake,
			Place:      f.Properties.Place,
			Magnitude:  f.Properties.Mag,
			Lon:        lon,
			Lat:        lat,
			OccurredAt: time.UnixMilli(f.Properties.Time).UTC(),
		})
	}
	return events, nil
}

// FetchFires pulls the active-fire feed and normalizes events inside box.
func (c *Client) FetchFires(ctx context.Context, box BoundingBox) ([]Event, error) {
	features, err := c.fetch(ctx, c.fireURL)
	if err != nil {
		return nil, fmt.Errorf("feeds: fetch fires: %w", err)
	}
	var events []Event
	for _, f := range features {
		lon, lat, ok := coordinates(f)
		if !ok || !box.Contains(lat, lon) {
			continue
		}
		events = append(events, c.normalizeFire(f, lon, lat))
	}
	return events, nil
}

func (c *Client) normalizeFire(f feature, lon, lat float64) Event {
	place := f.Properties.Satellite
	if place == "" {
		place = "Unknown area"
	}
	// Brightness is in kelvin; scale it down to a magnitude-like figure so
	// fires and quakes sort on one severity axis.
	var magnitude *float64
	if brightness, err := f.Properties.Brightness.Float64(); err == nil && brightness > 0 {
		m := brightness / 100
		magnitude = &m
	}
	occurredAt, err := time.Parse("2006-01-02 1504", f.Properties.AcqDate+" "+f.Properties.AcqTime)
	if err != nil {
		occurredAt = c.clock()
	}
	return Event{
		Kind:       KindFire,
		Place:      place,
		Magnitude:  magnitude,
		Lon:        lon,
		Lat:        lat,
		OccurredAt: occurredAt.UTC(),
	}
}

func (c *Client) fetch(ctx context.Context, url string) ([]feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	var collection featureCollection
	if err := json.NewDecoder(res.Body).Decode(&collection); err != nil {
		return nil, err
	}
	return collection.Features, nil
}

// coordinates extracts [lon, lat] from a GeoJSON geometry, tolerating the
// trailing depth element on earthquake features.
func coordinates(f feature) (lon, lat float64, ok bool) {
	coords := f.Geometry.Coordinates
	if len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}
