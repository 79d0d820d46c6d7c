package routing

import (
	"sort"

	"hotline-router/internal/calls"
)

// activeTable maps connected calls to their representative.
// byRep is the reverse index used to catch a representative connected twice.
type activeTable struct {
	byCall map[string]calls.ActiveRecord
	byRep  map[string]string
}

func newActiveTable() *activeTable {
	return &activeTable{
		byCall: make(map[string]calls.ActiveRecord),
		byRep:  make(map[string]string),
	}
}

func (t *activeTable) add(rec calls.ActiveRecord) {
	if _, ok := t.byCall[rec.CallID]; ok {
		invariantViolated("call %s connected twice", rec.CallID)
	}
	if other, ok := t.byRep[rec.RepresentativeID]; ok {
		invariantViolated("representative %s already serving call %s", rec.RepresentativeID, other)
	}
	t.byCall[rec.CallID] = rec
	t.byRep[rec.RepresentativeID] = rec.CallID
}

func (t *activeTable) remove(callID string) (calls.ActiveRecord, bool) {
	rec, ok := t.byCall[callID]
	if !ok {
		return calls.ActiveRecord{}, false
	}
	delete(t.byCall, callID)
	delete(t.byRep, rec.RepresentativeID)
	return rec, true
}

func (t *activeTable) get(callID string) (calls.ActiveRecord, bool) {
	rec, ok := t.byCall[callID]
	return rec, ok
}

func (t *activeTable) busy(repID string) bool {
	_, ok := t.byRep[repID]
	return ok
}

func (t *activeTable) len() int { return len(t.byCall) }

// list returns records ordered by connection time, then call id.
func (t *activeTable) list() []calls.ActiveRecord {
	out := make([]calls.ActiveRecord, 0, len(t.byCall))
	for _, rec := range t.byCall {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].CallID < out[j].CallID
	})
	return out
}
