package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // CLI operations: pipeline, spawn
	ScopePass                    // parse, resolve
	ScopeFile                    // per-input steps: detection, batch progress
	ScopeFrame                   // one symbolizer lookup
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeFile:   "file",
	ScopeFrame:  "frame",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is a key/value pair attached to a span end.
type Attr struct {
	Key   string
	Value string
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the sink, monotonic per process
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	File     string // input the event belongs to, if any
	Name     string // e.g. "parse", "resolve /usr/bin/app:0x1a2b"
	Detail   string
	Attrs    []Attr
}
