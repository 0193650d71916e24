// Package tracking derives human-facing dispatch state from timestamped
// records: percent complete, time remaining, and a simulated vehicle
// position. No live feed is assumed; callers re-evaluate on a polling
// cadence. Every computation is total over the record shape and never
// panics on missing fields.
package tracking

import (
	"strings"
	"time"
)

// Status is the discrete lifecycle state of a dispatch record. The engine
// only interprets it; transitions are driven by external actors.
type Status string

const (
	StatusReceived   Status = "received"
	StatusDispatched Status = "dispatched"
	StatusEnRoute    Status = "en_route"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
)

// Terminal reports whether the status marks a finished dispatch.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCompleted
}

// Waypoint is one coordinate in an ordered route.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DispatchDetails carries the two timestamps progress is derived from plus
// the planned route.
type DispatchDetails struct {
	DispatchedAt     time.Time  `json:"dispatched_at"`
	EstimatedArrival time.Time  `json:"estimated_arrival"`
	Waypoints        []Waypoint `json:"waypoints,omitempty"`
}

// Record is a normalized dispatch snapshot. Dispatch is nil until the order
// has actually been dispatched.
type Record struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	Dispatch    *DispatchDetails `json:"dispatch,omitempty"`
	Destination *Waypoint        `json:"destination,omitempty"`
	Resources   []string         `json:"resources,omitempty"`
}

// Normalize resolves a raw snapshot into a Record with defaults applied at
// the boundary, so readers never re-derive them. Unusable dispatch details
// (either timestamp missing) are dropped entirely.
func Normalize(raw Record) Record {
	rec := raw
	rec.Status = Status(strings.ToLower(strings.TrimSpace(string(raw.Status))))
	if rec.Dispatch != nil {
		if rec.Dispatch.DispatchedAt.IsZero() || rec.Dispatch.EstimatedArrival.IsZero() {
			rec.Dispatch = nil
		}
	}
	return rec
}
