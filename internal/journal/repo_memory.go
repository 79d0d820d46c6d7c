package journal

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory append-only repository.
// It is the default store; entries live for the process lifetime.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// List returns entries with from <= CreatedAt < to, oldest first.
func (r *MemoryRepo) List(ctx context.Context, from, to time.Time) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
