package routing

import "hotline-router/internal/calls"

// callQueue holds calls waiting for a representative, oldest first.
type callQueue struct {
	items []calls.QueuedRecord
	index map[string]struct{}
}

func newCallQueue() *callQueue {
	return &callQueue{index: make(map[string]struct{})}
}

func (q *callQueue) push(rec calls.QueuedRecord) {
	if _, ok := q.index[rec.CallID]; ok {
		invariantViolated("call %s queued twice", rec.CallID)
	}
	q.items = append(q.items, rec)
	q.index[rec.CallID] = struct{}{}
}

// popHead removes and returns the oldest queued call.
func (q *callQueue) popHead() (calls.QueuedRecord, bool) {
	if len(q.items) == 0 {
		return calls.QueuedRecord{}, false
	}
	head := q.items[0]
	q.items[0] = calls.QueuedRecord{}
	q.items = q.items[1:]
	delete(q.index, head.CallID)
	return head, true
}

func (q *callQueue) contains(callID string) bool {
	_, ok := q.index[callID]
	return ok
}

// find returns the record and its 1-based position.
func (q *callQueue) find(callID string) (calls.QueuedRecord, int, bool) {
	if !q.contains(callID) {
		return calls.QueuedRecord{}, 0, false
	}
	for i, rec := range q.items {
		if rec.CallID == callID {
			return rec, i + 1, true
		}
	}
	invariantViolated("call %s indexed but missing from queue", callID)
	return calls.QueuedRecord{}, 0, false
}

func (q *callQueue) len() int { return len(q.items) }

func (q *callQueue) snapshot() []calls.QueuedRecord {
	out := make([]calls.QueuedRecord, len(q.items))
	copy(out, q.items)
	return out
}
