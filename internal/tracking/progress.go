package tracking

import (
	"fmt"
	"math"
	"time"
)

// Progress estimates temporal completion as a percentage in [0,100].
// Terminal records are always 100. Records without usable dispatch details
// report 0 rather than failing; a degenerate window (ETA at or before the
// dispatch time) also reports 0.
func Progress(rec Record, now time.Time) int {
	if rec.Status.Terminal() {
		return 100
	}
	d := rec.Dispatch
	if d == nil || d.DispatchedAt.IsZero() || d.EstimatedArrival.IsZero() {
		return 0
	}
	if !now.Before(d.EstimatedArrival) {
		return 100
	}
	window := d.EstimatedArrival.Sub(d.DispatchedAt)
	if window <= 0 {
		return 0
	}
	elapsed := now.Sub(d.DispatchedAt)
	percent := int(math.Round(float64(elapsed) / float64(window) * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// TimeRemaining renders the time left until arrival. Durations truncate
// toward zero so the label never promises less time than actually remains.
func TimeRemaining(rec Record, now time.Time) string {
	switch rec.Status {
	case StatusCompleted:
		return "Completed"
	case StatusDelivered:
		return "Delivered"
	}
	d := rec.Dispatch
	if d == nil || d.EstimatedArrival.IsZero() {
		return "N/A"
	}
	remaining := d.EstimatedArrival.Sub(now)
	if remaining <= 0 {
		return "Arrived"
	}
	minutes := int(remaining.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d hr %d min", minutes/60, minutes%60)
}
