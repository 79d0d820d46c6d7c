package routing

import (
	"context"
	"testing"
	"time"

	"hotline-router/internal/representatives"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(ids ...string) []Candidate {
	out := make([]Candidate, 0, len(ids))
	for i, id := range ids {
		out = append(out, Candidate{Representative: representatives.Representative{ID: id, Available: true}, Index: i})
	}
	return out
}

func TestNewSelector(t *testing.T) {
	for name, want := range map[string]Selector{
		"":                     FirstAvailable{},
		SelectorFirstAvailable: FirstAvailable{},
		SelectorLongestIdle:    LongestIdle{},
	} {
		got, err := NewSelector(name)
		require.NoError(t, err)
		assert.IsType(t, want, got)
	}

	rr, err := NewSelector(SelectorRoundRobin)
	require.NoError(t, err)
	assert.IsType(t, &RoundRobin{}, rr)

	_, err = NewSelector("random")
	assert.Error(t, err)
}

func TestSelectors_EmptyCandidates(t *testing.T) {
	for _, s := range []Selector{FirstAvailable{}, &RoundRobin{}, LongestIdle{}} {
		_, ok := s.Pick(nil)
		assert.False(t, ok)
	}
}

func TestFirstAvailable_PicksDirectoryHead(t *testing.T) {
	c, ok := FirstAvailable{}.Pick(candidates("a", "b"))
	require.True(t, ok)
	assert.Equal(t, "a", c.ID)
}

func TestRoundRobin_Rotates(t *testing.T) {
	rr := &RoundRobin{}
	all := candidates("a", "b", "c")

	var got []string
	for i := 0; i < 4; i++ {
		c, ok := rr.Pick(all)
		require.True(t, ok)
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
}

func TestLongestIdle_PrefersOldestRelease(t *testing.T) {
	base := time.Unix(1700000000, 0)
	cs := candidates("a", "b", "c")
	cs[0].IdleSince = base.Add(2 * time.Minute)
	cs[1].IdleSince = base
	cs[2].IdleSince = base.Add(time.Minute)

	c, ok := LongestIdle{}.Pick(cs)
	require.True(t, ok)
	assert.Equal(t, "b", c.ID)
}

func TestEngine_RoundRobinSpreadsCalls(t *testing.T) {
	f := newFixture(t, Options{Selector: &RoundRobin{}}, available("r1", "r2")...)
	ctx := context.Background()

	first, _ := f.engine.InitiateCall(ctx, "U1")
	require.True(t, f.engine.EndCall(ctx, first.CallID))
	second, _ := f.engine.InitiateCall(ctx, "U2")

	assert.Equal(t, "r1", first.Representative.ID)
	assert.Equal(t, "r2", second.Representative.ID)
}

func TestEngine_LongestIdleUsesReleaseTimes(t *testing.T) {
	f := newFixture(t, Options{Selector: LongestIdle{}}, available("r1", "r2")...)
	ctx := context.Background()

	a, _ := f.engine.InitiateCall(ctx, "U1")
	b, _ := f.engine.InitiateCall(ctx, "U2")
	require.Equal(t, "r1", a.Representative.ID)
	require.Equal(t, "r2", b.Representative.ID)

	f.engine.EndCall(ctx, b.CallID)
	f.clock.Advance(time.Minute)
	f.engine.EndCall(ctx, a.CallID)

	next, _ := f.engine.InitiateCall(ctx, "U3")
	assert.Equal(t, "r2", next.Representative.ID)
}
