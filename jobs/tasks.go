package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault carries routine background work such as feed refreshes.
	QueueDefault = "default"
	// QueueCritical carries time-sensitive work; dispatch announcements
	// must not wait behind a slow feed pull.
	QueueCritical = "critical"

	// TaskFeedsRefresh pulls the public disaster feeds.
	TaskFeedsRefresh = "feeds:refresh"
	// TaskDispatchNotify announces an approved dispatch to field teams.
	TaskDispatchNotify = "dispatch:notify"
)

// FeedsRefreshPayload carries scheduling metadata for a feed pull.
type FeedsRefreshPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewFeedsRefreshTask constructs an Asynq task for a feed refresh cycle.
func NewFeedsRefreshTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(FeedsRefreshPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFeedsRefresh, body, asynq.Queue(QueueDefault)), nil
}

// DispatchNotifyPayload describes the dispatch to announce.
type DispatchNotifyPayload struct {
	OrderID          string     `json:"order_id"`
	EmergencyID      string     `json:"emergency_id"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

// NewDispatchNotifyTask constructs an Asynq task.
func NewDispatchNotifyTask(payload DispatchNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDispatchNotify, data), nil
}

// HandleDispatchNotifyTask processes TaskDispatchNotify tasks.
func HandleDispatchNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload DispatchNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with the SMS gateway in phase 2.
	fmt.Printf("[jobs] notify dispatch order=%s emergency=%s\n", payload.OrderID, payload.EmergencyID)
	return nil
}
