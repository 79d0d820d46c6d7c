package calls

import "time"

// Status is the lifecycle state of a hotline call.
//
// Transitions: queued -> connected -> ended, or connected directly on arrival
// when a representative is free. Nothing moves a call back to queued.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusConnected Status = "connected"
	StatusEnded     Status = "ended"
)

// ActiveRecord exists only while a call is connected.
//
// Invariant: the referenced representative is unavailable for the record's lifetime.
type ActiveRecord struct {
	CallID           string    `json:"call_id"`
	UserID           string    `json:"user_id"`
	RepresentativeID string    `json:"representative_id"`
	StartedAt        time.Time `json:"started_at"`
}

// QueuedRecord exists only while a call waits for a representative.
// The queue position is never stored; it is derived from the record's index.
type QueuedRecord struct {
	CallID     string    `json:"call_id"`
	UserID     string    `json:"user_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ElapsedSeconds returns whole seconds between start and now, floored and never negative.
func ElapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
