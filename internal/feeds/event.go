// Package feeds ingests public disaster feeds (USGS earthquakes, NASA FIRMS
// fires), normalizes them to disaster events inside the configured bounding
// box, and upserts them idempotently.
package feeds

import "time"

// Event kinds.
const (
	KindEarthquake = "earthquake"
	KindFire       = "fire"
)

// Event is one normalized disaster occurrence.
type Event struct {
	Kind       string    `json:"kind"`
	Place      string    `json:"place"`
	Magnitude  *float64  `json:"magnitude,omitempty"`
	Lon        float64   `json:"lon"`
	Lat        float64   `json:"lat"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BoundingBox limits ingestion to the operational region.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the coordinate falls inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
