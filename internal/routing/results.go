package routing

import (
	"time"

	"hotline-router/internal/calls"
	"hotline-router/internal/representatives"
)

// CallResult is returned by InitiateCall.
//
// Representative is set when Status is connected; Position and
// EstimatedWaitMinutes are set when Status is queued.
type CallResult struct {
	CallID string       `json:"call_id"`
	Status calls.Status `json:"status"`

	Representative *representatives.Representative `json:"representative,omitempty"`

	Position             int `json:"position,omitempty"`
	EstimatedWaitMinutes int `json:"estimated_wait_minutes,omitempty"`
}

// CallStatus is a point-in-time view of one call.
type CallStatus struct {
	CallID string       `json:"call_id"`
	UserID string       `json:"user_id"`
	Status calls.Status `json:"status"`

	Representative  *representatives.Representative `json:"representative,omitempty"`
	DurationSeconds int                             `json:"duration,omitempty"`

	Position             int `json:"position,omitempty"`
	EstimatedWaitMinutes int `json:"estimated_wait_minutes,omitempty"`
}

// ActiveCall is a snapshot row of the active call table.
type ActiveCall struct {
	CallID          string                         `json:"call_id"`
	UserID          string                         `json:"user_id"`
	Representative  representatives.Representative `json:"representative"`
	StartedAt       time.Time                      `json:"start_time"`
	DurationSeconds int                            `json:"duration"`
}

// QueuedCall is a snapshot row of the call queue.
type QueuedCall struct {
	CallID               string    `json:"call_id"`
	UserID               string    `json:"user_id"`
	EnqueuedAt           time.Time `json:"timestamp"`
	Position             int       `json:"position"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
}

// Stats summarizes pool and table sizes.
//
// Busy counts representatives serving a call; Offline counts unavailable
// representatives with no call. Available+Busy+Offline == Total and
// Busy == ActiveCalls always hold.
type Stats struct {
	TotalRepresentatives     int `json:"total_representatives"`
	AvailableRepresentatives int `json:"available_representatives"`
	BusyRepresentatives      int `json:"busy_representatives"`
	OfflineRepresentatives   int `json:"offline_representatives"`

	ActiveCalls int `json:"active_calls"`
	QueuedCalls int `json:"queued_calls"`
}
