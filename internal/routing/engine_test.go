package routing

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"hotline-router/internal/calls"
	"hotline-router/internal/events"
	"hotline-router/internal/representatives"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Publish(e events.Event) { p.events = append(p.events, e) }

func (p *recordingPublisher) types() []events.Type {
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	engine *Engine
	dir    *representatives.MemoryStore
	clock  *fakeClock
	pub    *recordingPublisher
}

func newFixture(t *testing.T, opts Options, roster ...representatives.Representative) fixture {
	t.Helper()
	dir, err := representatives.NewMemoryStore(roster...)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	opts.Events = pub
	e := NewEngine(dir, opts)

	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	e.Now = clock.Now
	seq := 0
	e.NewID = func() string {
		seq++
		return fmt.Sprintf("call-%d", seq)
	}
	return fixture{engine: e, dir: dir, clock: clock, pub: pub}
}

func available(ids ...string) []representatives.Representative {
	out := make([]representatives.Representative, 0, len(ids))
	for _, id := range ids {
		out = append(out, representatives.Representative{ID: id, Name: "Rep " + id, Available: true})
	}
	return out
}

func callIDs[T any](rows []T, id func(T) string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, id(r))
	}
	return out
}

func activeIDs(rows []ActiveCall) []string {
	return callIDs(rows, func(a ActiveCall) string { return a.CallID })
}

func queuedIDs(rows []QueuedCall) []string {
	return callIDs(rows, func(q QueuedCall) string { return q.CallID })
}

func TestEngine_OneRepresentativeTwoCalls(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	ctx := context.Background()

	first, err := f.engine.InitiateCall(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, calls.StatusConnected, first.Status)
	require.NotNil(t, first.Representative)
	assert.Equal(t, "r1", first.Representative.ID)
	assert.False(t, first.Representative.Available)

	second, err := f.engine.InitiateCall(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, calls.StatusQueued, second.Status)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, 5, second.EstimatedWaitMinutes)

	assert.True(t, f.engine.EndCall(ctx, first.CallID))

	assert.Empty(t, f.engine.CallQueue())
	active := f.engine.ActiveCalls()
	require.Len(t, active, 1)
	assert.Equal(t, second.CallID, active[0].CallID)
	assert.Equal(t, "U2", active[0].UserID)
	assert.Equal(t, "r1", active[0].Representative.ID)

	rep, _ := f.dir.Get("r1")
	assert.False(t, rep.Available)
}

func TestEngine_NoRepresentativesQueuesEveryCall(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	for i, want := range []struct{ pos, wait int }{{1, 5}, {2, 10}, {3, 15}} {
		res, err := f.engine.InitiateCall(ctx, fmt.Sprintf("U%d", i+1))
		require.NoError(t, err)
		assert.Equal(t, calls.StatusQueued, res.Status)
		assert.Equal(t, want.pos, res.Position)
		assert.Equal(t, want.wait, res.EstimatedWaitMinutes)
	}

	q := f.engine.CallQueue()
	require.Len(t, q, 3)
	for i, row := range q {
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, (i+1)*5, row.EstimatedWaitMinutes)
	}
}

func TestEngine_EndCallUnknownIDMutatesNothing(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	ctx := context.Background()

	_, err := f.engine.InitiateCall(ctx, "U1")
	require.NoError(t, err)
	_, err = f.engine.InitiateCall(ctx, "U2")
	require.NoError(t, err)

	beforeStats := f.engine.Stats()
	beforeActive := f.engine.ActiveCalls()
	beforeQueue := f.engine.CallQueue()
	beforeEvents := len(f.pub.events)

	assert.False(t, f.engine.EndCall(ctx, "never-issued"))

	assert.Equal(t, beforeStats, f.engine.Stats())
	assert.Equal(t, beforeActive, f.engine.ActiveCalls())
	assert.Equal(t, beforeQueue, f.engine.CallQueue())
	assert.Len(t, f.pub.events, beforeEvents)
}

func TestEngine_EndCallIgnoresQueuedAndEndedCalls(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	ctx := context.Background()

	first, _ := f.engine.InitiateCall(ctx, "U1")
	second, _ := f.engine.InitiateCall(ctx, "U2")

	assert.False(t, f.engine.EndCall(ctx, second.CallID), "queued calls are not ended")
	st, ok := f.engine.CallStatus(second.CallID)
	require.True(t, ok)
	assert.Equal(t, calls.StatusQueued, st.Status)

	assert.True(t, f.engine.EndCall(ctx, first.CallID))
	assert.False(t, f.engine.EndCall(ctx, first.CallID), "second end of the same call fails")
}

func TestEngine_DrainPromotesOnlyHeadAndShiftsSuccessors(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 4; i++ {
		res, err := f.engine.InitiateCall(ctx, fmt.Sprintf("U%d", i))
		require.NoError(t, err)
		ids = append(ids, res.CallID)
	}
	require.Equal(t, ids[1:], queuedIDs(f.engine.CallQueue()))

	require.True(t, f.engine.EndCall(ctx, ids[0]))

	assert.Equal(t, []string{ids[1]}, activeIDs(f.engine.ActiveCalls()))
	q := f.engine.CallQueue()
	assert.Equal(t, ids[2:], queuedIDs(q))
	assert.Equal(t, 1, q[0].Position)
	assert.Equal(t, 2, q[1].Position)
}

func TestEngine_DrainPromotesOnePerFreedRepresentative(t *testing.T) {
	roster := []representatives.Representative{{ID: "r1"}, {ID: "r2"}}
	f := newFixture(t, Options{}, roster...)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 3; i++ {
		res, _ := f.engine.InitiateCall(ctx, fmt.Sprintf("U%d", i))
		ids = append(ids, res.CallID)
	}

	require.NoError(t, f.engine.SetAvailability(ctx, "r1", true))
	require.NoError(t, f.engine.SetAvailability(ctx, "r2", true))

	assert.ElementsMatch(t, ids[:2], activeIDs(f.engine.ActiveCalls()))
	assert.Equal(t, ids[2:], queuedIDs(f.engine.CallQueue()))

	st, ok := f.engine.CallStatus(ids[0])
	require.True(t, ok)
	require.NotNil(t, st.Representative)
	assert.Equal(t, "r1", st.Representative.ID)
}

func TestEngine_CallStatus(t *testing.T) {
	f := newFixture(t, Options{MinutesPerCall: 7}, available("r1")...)
	ctx := context.Background()

	connected, _ := f.engine.InitiateCall(ctx, "U1")
	queued, _ := f.engine.InitiateCall(ctx, "U2")

	f.clock.Advance(2*time.Second + 900*time.Millisecond)

	st, ok := f.engine.CallStatus(connected.CallID)
	require.True(t, ok)
	assert.Equal(t, calls.StatusConnected, st.Status)
	assert.Equal(t, "U1", st.UserID)
	assert.Equal(t, 2, st.DurationSeconds)
	require.NotNil(t, st.Representative)
	assert.Equal(t, "r1", st.Representative.ID)

	st, ok = f.engine.CallStatus(queued.CallID)
	require.True(t, ok)
	assert.Equal(t, calls.StatusQueued, st.Status)
	assert.Equal(t, 1, st.Position)
	assert.Equal(t, 7, st.EstimatedWaitMinutes)

	_, ok = f.engine.CallStatus("missing")
	assert.False(t, ok)
}

func TestEngine_ReadsAreIdempotent(t *testing.T) {
	f := newFixture(t, Options{}, available("r1", "r2")...)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := f.engine.InitiateCall(ctx, fmt.Sprintf("U%d", i))
		require.NoError(t, err)
	}
	published := len(f.pub.events)

	assert.Equal(t, f.engine.ActiveCalls(), f.engine.ActiveCalls())
	assert.Equal(t, f.engine.CallQueue(), f.engine.CallQueue())
	assert.Equal(t, f.engine.Stats(), f.engine.Stats())
	assert.Len(t, f.pub.events, published, "reads must not publish")
}

func TestEngine_InitiateCallRequiresUserID(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)

	_, err := f.engine.InitiateCall(context.Background(), "")
	assert.ErrorIs(t, err, ErrUserIDRequired)
	assert.Equal(t, 0, f.engine.Stats().ActiveCalls)
}

func TestEngine_SetAvailability(t *testing.T) {
	f := newFixture(t, Options{}, available("r1", "r2")...)
	ctx := context.Background()

	res, _ := f.engine.InitiateCall(ctx, "U1")
	require.Equal(t, "r1", res.Representative.ID)

	assert.ErrorIs(t, f.engine.SetAvailability(ctx, "r1", true), ErrRepresentativeBusy)
	assert.NoError(t, f.engine.SetAvailability(ctx, "r1", false))
	assert.ErrorIs(t, f.engine.SetAvailability(ctx, "nope", true), ErrRepresentativeNotFound)

	require.NoError(t, f.engine.SetAvailability(ctx, "r2", false))
	queued, _ := f.engine.InitiateCall(ctx, "U2")
	assert.Equal(t, calls.StatusQueued, queued.Status)

	s := f.engine.Stats()
	assert.Equal(t, Stats{TotalRepresentatives: 2, BusyRepresentatives: 1, OfflineRepresentatives: 1, ActiveCalls: 1, QueuedCalls: 1}, s)
}

func TestEngine_PublishesTransitionsInOrder(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	ctx := context.Background()

	first, _ := f.engine.InitiateCall(ctx, "U1")
	second, _ := f.engine.InitiateCall(ctx, "U2")
	f.clock.Advance(90 * time.Second)
	f.engine.EndCall(ctx, first.CallID)

	assert.Equal(t, []events.Type{
		events.TypeCallConnected,
		events.TypeCallQueued,
		events.TypeCallEnded,
		events.TypeCallConnected,
	}, f.pub.types())

	ended := f.pub.events[2]
	assert.Equal(t, first.CallID, ended.CallID)
	assert.Equal(t, 90, ended.TalkSeconds)
	assert.Equal(t, 0, ended.ActiveCount)
	assert.Equal(t, 1, ended.QueueLength)

	promoted := f.pub.events[3]
	assert.Equal(t, second.CallID, promoted.CallID)
	assert.True(t, promoted.FromQueue)
	assert.Equal(t, 90, promoted.WaitSeconds)
	assert.Equal(t, 0, promoted.QueueLength)
	assert.Equal(t, 1, promoted.ActiveCount)
}

func TestEngine_RandomSequencesKeepInvariants(t *testing.T) {
	const reps = 3
	roster := make([]representatives.Representative, 0, reps)
	for i := 0; i < reps; i++ {
		roster = append(roster, representatives.Representative{ID: fmt.Sprintf("r%d", i), Available: true})
	}
	f := newFixture(t, Options{}, roster...)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var issued []string
	enqueueOrder := map[string]int{}

	for step := 0; step < 500; step++ {
		f.clock.Advance(time.Duration(rng.Intn(5)) * time.Second)
		if len(issued) == 0 || rng.Intn(2) == 0 {
			res, err := f.engine.InitiateCall(ctx, fmt.Sprintf("U%d", step))
			require.NoError(t, err)
			issued = append(issued, res.CallID)
			if res.Status == calls.StatusQueued {
				enqueueOrder[res.CallID] = step
			}
		} else {
			f.engine.EndCall(ctx, issued[rng.Intn(len(issued))])
		}

		f.engine.mu.Lock()
		for id := range f.engine.active.byCall {
			require.False(t, f.engine.queue.contains(id), "call %s in both tables", id)
		}
		f.engine.mu.Unlock()

		s := f.engine.Stats()
		require.Equal(t, reps, s.AvailableRepresentatives+s.BusyRepresentatives)
		require.Equal(t, s.ActiveCalls, s.BusyRepresentatives)
		if s.QueuedCalls > 0 {
			require.Zero(t, s.AvailableRepresentatives, "calls wait while a representative is free")
		}

		q := f.engine.CallQueue()
		for i := 1; i < len(q); i++ {
			require.Less(t, enqueueOrder[q[i-1].CallID], enqueueOrder[q[i].CallID])
			require.Less(t, q[i-1].Position, q[i].Position)
		}
	}
}

func TestEngine_InvariantViolationsPanic(t *testing.T) {
	table := newActiveTable()
	table.add(calls.ActiveRecord{CallID: "c1", RepresentativeID: "r1"})

	assert.Panics(t, func() { table.add(calls.ActiveRecord{CallID: "c1", RepresentativeID: "r2"}) })
	assert.Panics(t, func() { table.add(calls.ActiveRecord{CallID: "c2", RepresentativeID: "r1"}) })

	q := newCallQueue()
	q.push(calls.QueuedRecord{CallID: "c3"})
	assert.Panics(t, func() { q.push(calls.QueuedRecord{CallID: "c3"}) })
}

func TestEngine_ReissuedCallIDPanics(t *testing.T) {
	f := newFixture(t, Options{}, available("r1")...)
	f.engine.NewID = func() string { return "same" }

	_, err := f.engine.InitiateCall(context.Background(), "U1")
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = f.engine.InitiateCall(context.Background(), "U2") })
}
