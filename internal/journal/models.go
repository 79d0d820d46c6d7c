package journal

import (
	"time"

	"hotline-router/internal/events"
)

// Entry is an immutable, append-only record of one routing transition.
//
// Invariants:
// - Entries are never updated or deleted.
// - The journal is a reporting source only; routing state is never rebuilt from it.
//
// Storage (Postgres): table call_events, INSERT-only.
type Entry struct {
	ID   string      `json:"id" db:"id"`
	Type events.Type `json:"type" db:"type"`

	CallID           string `json:"call_id,omitempty" db:"call_id"`
	UserID           string `json:"user_id,omitempty" db:"user_id"`
	RepresentativeID string `json:"representative_id,omitempty" db:"representative_id"`

	Position    int  `json:"position,omitempty" db:"position"`
	FromQueue   bool `json:"from_queue,omitempty" db:"from_queue"`
	WaitSeconds int  `json:"wait_seconds,omitempty" db:"wait_seconds"`
	TalkSeconds int  `json:"talk_seconds,omitempty" db:"talk_seconds"`
	Available   bool `json:"available,omitempty" db:"available"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FromEvent converts a bus event into a journal entry.
func FromEvent(e events.Event) Entry {
	return Entry{
		ID:               e.ID,
		Type:             e.Type,
		CallID:           e.CallID,
		UserID:           e.UserID,
		RepresentativeID: e.RepresentativeID,
		Position:         e.Position,
		FromQueue:        e.FromQueue,
		WaitSeconds:      e.WaitSeconds,
		TalkSeconds:      e.TalkSeconds,
		Available:        e.Available,
		CreatedAt:        e.OccurredAt,
	}
}
