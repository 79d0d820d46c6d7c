package events

import (
	"sync"
	"time"
)

// Type names a call-state change. Keep these stable; subscribers match on them.
type Type string

const (
	TypeCallQueued      Type = "call.queued"
	TypeCallConnected   Type = "call.connected"
	TypeCallEnded       Type = "call.ended"
	TypeRepAvailability Type = "representative.availability"
)

// Event describes one routing transition.
//
// QueueLength and ActiveCount are the table sizes right after the transition,
// so consumers can track gauges without reading engine state.
type Event struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	CallID           string `json:"call_id,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	RepresentativeID string `json:"representative_id,omitempty"`

	// Position is set for call.queued.
	Position int `json:"position,omitempty"`
	// FromQueue is set for call.connected when the call waited first.
	FromQueue bool `json:"from_queue,omitempty"`
	// WaitSeconds is set for call.connected.
	WaitSeconds int `json:"wait_seconds,omitempty"`
	// TalkSeconds is set for call.ended.
	TalkSeconds int `json:"talk_seconds,omitempty"`
	// Available is set for representative.availability.
	Available bool `json:"available,omitempty"`

	QueueLength int `json:"queue_length"`
	ActiveCount int `json:"active_count"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher accepts events. Implementations must not block the caller.
type Publisher interface {
	Publish(e Event)
}

// Bus fans events out to in-process subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	ch chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber with the given buffer size.
// The returned cancel func closes the channel and is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	s := &subscription{ch: make(chan Event, buffer)}
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
