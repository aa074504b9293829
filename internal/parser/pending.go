package parser

import (
	"sort"

	"stracetui/internal/model"
)

// pendingCall is an unfinished call waiting for its resumed half.
type pendingCall struct {
	rec  *model.CallRecord
	line int // line of the unfinished half
	seq  int // start order, keeps end-of-input flushing deterministic
}

// pendingTable holds at most one in-flight call per pid.
type pendingTable struct {
	calls map[int]pendingCall
	seq   int
}

func newPendingTable() pendingTable {
	return pendingTable{calls: make(map[int]pendingCall)}
}

// put stores rec for pid and returns the entry it displaced, if any.
func (t *pendingTable) put(pid int, rec *model.CallRecord, line int) (pendingCall, bool) {
	old, had := t.calls[pid]
	t.seq++
	t.calls[pid] = pendingCall{rec: rec, line: line, seq: t.seq}
	return old, had
}

// take removes and returns the entry of pid.
func (t *pendingTable) take(pid int) (pendingCall, bool) {
	p, ok := t.calls[pid]
	if ok {
		delete(t.calls, pid)
	}
	return p, ok
}

func (t *pendingTable) len() int {
	return len(t.calls)
}

// drain empties the table, returning entries in the order they started.
func (t *pendingTable) drain() []pendingCall {
	out := make([]pendingCall, 0, len(t.calls))
	for _, p := range t.calls {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	clear(t.calls)
	return out
}
