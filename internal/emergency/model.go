// Package emergency provides emergency report entity logic.
package emergency

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of an emergency report.
type Status string

const (
	StatusReported   Status = "reported"
	StatusVerified   Status = "verified"
	StatusResponding Status = "responding"
	StatusResolved   Status = "resolved"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusReported, StatusVerified, StatusResponding, StatusResolved:
		return true
	default:
		return false
	}
}

// next lists the allowed transitions out of each status.
var next = map[Status][]Status{
	StatusReported:   {StatusVerified, StatusResolved},
	StatusVerified:   {StatusResponding, StatusResolved},
	StatusResponding: {StatusResolved},
}

// CanTransition reports whether moving to target is allowed.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range next[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Emergency represents one reported incident needing relief resources.
type Emergency struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"`
	Severity   int       `json:"severity"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Status     Status    `json:"status"`
	ReportedBy string    `json:"reported_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
