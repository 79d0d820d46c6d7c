package representatives

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	ErrInvalidRepresentative = errors.New("representatives: invalid representative")
	ErrDuplicateID           = errors.New("representatives: duplicate id")
)

// MemoryStore is an in-memory directory that keeps insertion order.
// List order is the iteration order the routing engine selects from.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Representative
}

func NewMemoryStore(roster ...Representative) (*MemoryStore, error) {
	s := &MemoryStore{byID: make(map[string]*Representative, len(roster))}
	for _, r := range roster {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) Add(r Representative) error {
	if r.ID == "" {
		return ErrInvalidRepresentative
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	cp := r
	s.byID[r.ID] = &cp
	s.order = append(s.order, r.ID)
	return nil
}

// List returns snapshots in insertion order.
func (s *MemoryStore) List() []Representative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Representative, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *MemoryStore) Get(id string) (Representative, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return Representative{}, false
	}
	return *r, true
}

// SetAvailable flips the availability flag in place. It reports false for unknown ids.
func (s *MemoryStore) SetAvailable(id string, available bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return false
	}
	r.Available = available
	return true
}

// LoadRosterFile reads a JSON array of representatives.
func LoadRosterFile(path string) ([]Representative, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()

	var roster []Representative
	if err := json.NewDecoder(f).Decode(&roster); err != nil {
		return nil, fmt.Errorf("decode roster file: %w", err)
	}
	return roster, nil
}
