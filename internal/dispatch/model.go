// Package dispatch provides dispatch order entity logic: resources en route
// from a branch to an emergency site.
package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// Status represents the lifecycle of a dispatch order.
type Status string

const (
	StatusReceived   Status = "received"   // Request acknowledged, awaiting approval
	StatusDispatched Status = "dispatched" // Approved, vehicle assigned
	StatusEnRoute    Status = "en_route"   // Vehicle on the way
	StatusDelivered  Status = "delivered"  // Resources handed over on site
	StatusCompleted  Status = "completed"  // Paperwork closed out
	StatusCancelled  Status = "cancelled"  // Cancelled before departure
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusReceived, StatusDispatched, StatusEnRoute, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanDispatch checks if the order can be approved and dispatched.
func (s Status) CanDispatch() bool {
	return s == StatusReceived
}

// CanMarkEnRoute checks if the vehicle can be marked as moving.
func (s Status) CanMarkEnRoute() bool {
	return s == StatusDispatched
}

// CanComplete checks if the order can be closed as delivered/completed.
func (s Status) CanComplete() bool {
	return s == StatusEnRoute || s == StatusDelivered
}

// CanCancel checks if the order can still be cancelled.
func (s Status) CanCancel() bool {
	return s == StatusReceived || s == StatusDispatched
}

// ResourceLine is one resource allocation on a dispatch order.
type ResourceLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// Order represents resources en route to an emergency.
type Order struct {
	ID               uuid.UUID           `json:"id"`
	EmergencyID      uuid.UUID           `json:"emergency_id"`
	Status           Status              `json:"status"`
	Origin           *tracking.Waypoint  `json:"origin,omitempty"`
	Destination      *tracking.Waypoint  `json:"destination,omitempty"`
	Waypoints        []tracking.Waypoint `json:"waypoints,omitempty"`
	DispatchedAt     *time.Time          `json:"dispatched_at,omitempty"`
	EstimatedArrival *time.Time          `json:"estimated_arrival,omitempty"`
	Resources        []ResourceLine      `json:"resources,omitempty"`
	CreatedBy        string              `json:"created_by"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TrackingRecord maps the order to the normalized snapshot shape consumed by
// the tracking engine. This is the single normalization point per fetch.
func (o Order) TrackingRecord() tracking.Record {
	rec := tracking.Record{
		ID:          o.ID.String(),
		Status:      tracking.Status(o.Status),
		Destination: o.Destination,
	}
	for _, line := range o.Resources {
		rec.Resources = append(rec.Resources, line.Name)
	}
	if o.DispatchedAt != nil && o.EstimatedArrival != nil {
		rec.Dispatch = &tracking.DispatchDetails{
			DispatchedAt:     *o.DispatchedAt,
			EstimatedArrival: *o.EstimatedArrival,
			Waypoints:        o.Waypoints,
		}
	}
	return tracking.Normalize(rec)
}
