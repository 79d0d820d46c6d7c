package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotline-router/internal/calls"
	"hotline-router/internal/events"
	"hotline-router/internal/representatives"
	"hotline-router/pkg/logger"

	"github.com/google/uuid"
)

// DefaultMinutesPerCall is the per-position wait estimate for queued calls.
const DefaultMinutesPerCall = 5

var (
	ErrUserIDRequired         = errors.New("routing: user_id required")
	ErrRepresentativeNotFound = errors.New("routing: representative not found")
	ErrRepresentativeBusy     = errors.New("routing: representative is serving a call")
)

// Directory is the representative store the engine routes over.
// The engine reads availability and flips it on connect and release;
// it does not own any other representative fields.
type Directory interface {
	List() []representatives.Representative
	Get(id string) (representatives.Representative, bool)
	SetAvailable(id string, available bool) bool
}

// Engine matches hotline calls to representatives.
//
// Each public method runs as one critical section, so the check-then-set on
// representative availability never interleaves. A call id lives in at most
// one of the queue and the active table.
type Engine struct {
	mu sync.Mutex

	dir            Directory
	selector       Selector
	minutesPerCall int
	events         events.Publisher

	queue     *callQueue
	active    *activeTable
	idleSince map[string]time.Time

	Now   func() time.Time
	NewID func() string
}

type Options struct {
	// Selector defaults to FirstAvailable.
	Selector Selector
	// MinutesPerCall defaults to DefaultMinutesPerCall.
	MinutesPerCall int
	// Events receives every transition, in order. Optional.
	Events events.Publisher
}

func NewEngine(dir Directory, opts Options) *Engine {
	if opts.Selector == nil {
		opts.Selector = FirstAvailable{}
	}
	if opts.MinutesPerCall <= 0 {
		opts.MinutesPerCall = DefaultMinutesPerCall
	}
	return &Engine{
		dir:            dir,
		selector:       opts.Selector,
		minutesPerCall: opts.MinutesPerCall,
		events:         opts.Events,
		queue:          newCallQueue(),
		active:         newActiveTable(),
		idleSince:      make(map[string]time.Time),
		Now:            time.Now,
		NewID:          uuid.NewString,
	}
}

// InitiateCall connects userID to an available representative, or queues the
// call when none is free. Queuing is a normal outcome, not an error.
func (e *Engine) InitiateCall(ctx context.Context, userID string) (CallResult, error) {
	if userID == "" {
		return CallResult{}, ErrUserIDRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	callID := e.newID()
	if _, ok := e.active.get(callID); ok || e.queue.contains(callID) {
		invariantViolated("call id %s reissued", callID)
	}

	if rep, ok := e.pick(); ok {
		rep = e.connect(ctx, callID, userID, rep, now, time.Time{})
		return CallResult{CallID: callID, Status: calls.StatusConnected, Representative: &rep}, nil
	}

	e.queue.push(calls.QueuedRecord{CallID: callID, UserID: userID, EnqueuedAt: now})
	pos := e.queue.len()
	e.publish(events.Event{
		Type:     events.TypeCallQueued,
		CallID:   callID,
		UserID:   userID,
		Position: pos,
	}, now)
	logger.From(ctx).Debug("call queued", "call_id", callID, "user_id", userID, "position", pos)

	return CallResult{
		CallID:               callID,
		Status:               calls.StatusQueued,
		Position:             pos,
		EstimatedWaitMinutes: e.estimateWait(pos),
	}, nil
}

// EndCall ends a connected call, releases its representative and drains the queue.
// It reports false, without mutating anything, when callID is not connected;
// queued calls are not removed.
func (e *Engine) EndCall(ctx context.Context, callID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.active.remove(callID)
	if !ok {
		return false
	}
	now := e.now()
	log := logger.From(ctx)

	if e.dir.SetAvailable(rec.RepresentativeID, true) {
		e.idleSince[rec.RepresentativeID] = now
	} else {
		log.Warn("released representative missing from directory", "representative_id", rec.RepresentativeID, "call_id", callID)
	}

	talk := calls.ElapsedSeconds(rec.StartedAt, now)
	e.publish(events.Event{
		Type:             events.TypeCallEnded,
		CallID:           callID,
		UserID:           rec.UserID,
		RepresentativeID: rec.RepresentativeID,
		TalkSeconds:      talk,
	}, now)
	log.Info("call ended", "call_id", callID, "representative_id", rec.RepresentativeID, "talk_seconds", talk)

	e.drainQueue(ctx, now)
	return true
}

// CallStatus looks a call up in the active table, then the queue.
func (e *Engine) CallStatus(callID string) (CallStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if rec, ok := e.active.get(callID); ok {
		st := CallStatus{
			CallID:          callID,
			UserID:          rec.UserID,
			Status:          calls.StatusConnected,
			DurationSeconds: calls.ElapsedSeconds(rec.StartedAt, now),
		}
		if rep, ok := e.dir.Get(rec.RepresentativeID); ok {
			st.Representative = &rep
		}
		return st, true
	}

	if rec, pos, ok := e.queue.find(callID); ok {
		return CallStatus{
			CallID:               callID,
			UserID:               rec.UserID,
			Status:               calls.StatusQueued,
			Position:             pos,
			EstimatedWaitMinutes: e.estimateWait(pos),
		}, true
	}
	return CallStatus{}, false
}

// ActiveCalls returns a snapshot of connected calls ordered by start time.
func (e *Engine) ActiveCalls() []ActiveCall {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	recs := e.active.list()
	out := make([]ActiveCall, 0, len(recs))
	for _, rec := range recs {
		rep, ok := e.dir.Get(rec.RepresentativeID)
		if !ok {
			rep = representatives.Representative{ID: rec.RepresentativeID}
		}
		out = append(out, ActiveCall{
			CallID:          rec.CallID,
			UserID:          rec.UserID,
			Representative:  rep,
			StartedAt:       rec.StartedAt,
			DurationSeconds: calls.ElapsedSeconds(rec.StartedAt, now),
		})
	}
	return out
}

// CallQueue returns a snapshot of queued calls, head first.
func (e *Engine) CallQueue() []QueuedCall {
	e.mu.Lock()
	defer e.mu.Unlock()

	recs := e.queue.snapshot()
	out := make([]QueuedCall, 0, len(recs))
	for i, rec := range recs {
		pos := i + 1
		out = append(out, QueuedCall{
			CallID:               rec.CallID,
			UserID:               rec.UserID,
			EnqueuedAt:           rec.EnqueuedAt,
			Position:             pos,
			EstimatedWaitMinutes: e.estimateWait(pos),
		})
	}
	return out
}

// SetAvailability changes a representative's availability through the engine so
// the change is serialized with routing. Making a representative available drains the queue.
func (e *Engine) SetAvailability(ctx context.Context, repID string, available bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep, ok := e.dir.Get(repID)
	if !ok {
		return ErrRepresentativeNotFound
	}
	if e.active.busy(repID) {
		if available {
			return ErrRepresentativeBusy
		}
		return nil
	}
	if rep.Available == available {
		return nil
	}

	now := e.now()
	e.dir.SetAvailable(repID, available)
	if available {
		e.idleSince[repID] = now
	}
	e.publish(events.Event{
		Type:             events.TypeRepAvailability,
		RepresentativeID: repID,
		Available:        available,
	}, now)
	logger.From(ctx).Info("representative availability changed", "representative_id", repID, "available", available)

	if available {
		e.drainQueue(ctx, now)
	}
	return nil
}

// Stats reports pool and table sizes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{ActiveCalls: e.active.len(), QueuedCalls: e.queue.len()}
	for _, rep := range e.dir.List() {
		s.TotalRepresentatives++
		switch {
		case e.active.busy(rep.ID):
			s.BusyRepresentatives++
		case rep.Available:
			s.AvailableRepresentatives++
		default:
			s.OfflineRepresentatives++
		}
	}
	return s
}

// drainQueue promotes queued calls, head first, while representatives are free.
func (e *Engine) drainQueue(ctx context.Context, now time.Time) int {
	promoted := 0
	for e.queue.len() > 0 {
		rep, ok := e.pick()
		if !ok {
			break
		}
		next, _ := e.queue.popHead()
		e.connect(ctx, next.CallID, next.UserID, rep, now, next.EnqueuedAt)
		promoted++
	}
	return promoted
}

// pick offers the available representatives to the selector.
func (e *Engine) pick() (representatives.Representative, bool) {
	list := e.dir.List()
	candidates := make([]Candidate, 0, len(list))
	for i, rep := range list {
		if !rep.Available {
			continue
		}
		if e.active.busy(rep.ID) {
			invariantViolated("representative %s is available while serving a call", rep.ID)
		}
		candidates = append(candidates, Candidate{Representative: rep, Index: i, IdleSince: e.idleSince[rep.ID]})
	}
	if len(candidates) == 0 {
		return representatives.Representative{}, false
	}
	c, ok := e.selector.Pick(candidates)
	if !ok {
		return representatives.Representative{}, false
	}
	return c.Representative, true
}

// connect records an active call and marks rep unavailable.
// enqueuedAt is zero for calls that never waited.
func (e *Engine) connect(ctx context.Context, callID, userID string, rep representatives.Representative, now, enqueuedAt time.Time) representatives.Representative {
	if e.queue.contains(callID) {
		invariantViolated("call %s connected while still queued", callID)
	}
	e.active.add(calls.ActiveRecord{CallID: callID, UserID: userID, RepresentativeID: rep.ID, StartedAt: now})
	if !e.dir.SetAvailable(rep.ID, false) {
		invariantViolated("selected representative %s missing from directory", rep.ID)
	}
	rep.Available = false

	fromQueue := !enqueuedAt.IsZero()
	wait := 0
	if fromQueue {
		wait = calls.ElapsedSeconds(enqueuedAt, now)
	}
	e.publish(events.Event{
		Type:             events.TypeCallConnected,
		CallID:           callID,
		UserID:           userID,
		RepresentativeID: rep.ID,
		FromQueue:        fromQueue,
		WaitSeconds:      wait,
	}, now)
	logger.From(ctx).Info("call connected", "call_id", callID, "representative_id", rep.ID, "from_queue", fromQueue)
	return rep
}

func (e *Engine) publish(ev events.Event, now time.Time) {
	if e.events == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.OccurredAt = now
	ev.QueueLength = e.queue.len()
	ev.ActiveCount = e.active.len()
	e.events.Publish(ev)
}

func (e *Engine) estimateWait(position int) int {
	return position * e.minutesPerCall
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// invariantViolated reports a routing bug. These states are unreachable when
// every transition mutates exactly one table.
func invariantViolated(format string, args ...any) {
	panic(fmt.Sprintf("routing: invariant violated: "+format, args...))
}
