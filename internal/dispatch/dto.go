package dispatch

import (
	"time"

	"github.com/reliefgrid/reliefgrid/internal/tracking"
)

// CreateRequest is the payload for creating a dispatch order.
type CreateRequest struct {
	EmergencyID string         `json:"emergency_id" validate:"required,uuid4"`
	Origin      *WaypointDTO   `json:"origin" validate:"omitempty"`
	Destination WaypointDTO    `json:"destination" validate:"required"`
	Resources   []ResourceLine `json:"resources" validate:"required,min=1,dive"`
}

// WaypointDTO carries one coordinate.
type WaypointDTO struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// DispatchRequest is the payload for approving and dispatching an order.
type DispatchRequest struct {
	EstimatedArrival time.Time     `json:"estimated_arrival" validate:"required"`
	Waypoints        []WaypointDTO `json:"waypoints" validate:"omitempty,min=2,dive"`
}

// CompleteRequest closes out an order.
type CompleteRequest struct {
	Delivered bool `json:"delivered"`
}

// ListRequest filters the order listing.
type ListRequest struct {
	Status Status
	Limit  int
	Offset int
}

// TrackingView is the derived, human-facing state for one order, computed
// by the tracking engine on every poll.
type TrackingView struct {
	ID               string              `json:"id"`
	Status           Status              `json:"status"`
	Progress         int                 `json:"progress"`
	TimeRemaining    string              `json:"time_remaining"`
	EstimatedArrival *time.Time          `json:"estimated_arrival,omitempty"`
	Destination      *tracking.Waypoint  `json:"destination,omitempty"`
	Waypoints        []tracking.Waypoint `json:"waypoints,omitempty"`
	Resources        []string            `json:"resources,omitempty"`
}

func (w WaypointDTO) toWaypoint() tracking.Waypoint {
	return tracking.Waypoint{Lat: w.Lat, Lon: w.Lon}
}
