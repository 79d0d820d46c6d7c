package routing

import (
	"fmt"
	"sync"
	"time"

	"hotline-router/internal/representatives"
)

// Candidate is an available representative offered to a Selector.
type Candidate struct {
	representatives.Representative

	// Index is the representative's position in directory order.
	Index int
	// IdleSince is when the engine last released this representative.
	// Zero means never released by this engine.
	IdleSince time.Time
}

// Selector chooses which available representative takes the next call.
// Candidates are in directory order and are never empty.
// Selectors are called with the engine lock held.
type Selector interface {
	Pick(candidates []Candidate) (Candidate, bool)
}

const (
	SelectorFirstAvailable = "first_available"
	SelectorRoundRobin     = "round_robin"
	SelectorLongestIdle    = "longest_idle"
)

// NewSelector builds a selector by name. An empty name means first-available.
func NewSelector(name string) (Selector, error) {
	switch name {
	case "", SelectorFirstAvailable:
		return FirstAvailable{}, nil
	case SelectorRoundRobin:
		return &RoundRobin{}, nil
	case SelectorLongestIdle:
		return LongestIdle{}, nil
	default:
		return nil, fmt.Errorf("routing: unknown selector %q", name)
	}
}

// FirstAvailable picks the first candidate in directory order.
type FirstAvailable struct{}

func (FirstAvailable) Pick(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

// RoundRobin picks the first candidate after the previously picked directory position,
// wrapping around to the start.
type RoundRobin struct {
	mu   sync.Mutex
	last int
	used bool
}

func (r *RoundRobin) Pick(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	chosen := candidates[0]
	if r.used {
		for _, c := range candidates {
			if c.Index > r.last {
				chosen = c
				break
			}
		}
	}
	r.last = chosen.Index
	r.used = true
	return chosen, true
}

// LongestIdle picks the candidate released longest ago; ties keep directory order.
type LongestIdle struct{}

func (LongestIdle) Pick(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	oldest := candidates[0]
	for _, c := range candidates[1:] {
		if c.IdleSince.Before(oldest.IdleSince) {
			oldest = c
		}
	}
	return oldest, true
}
