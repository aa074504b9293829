package trace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 {
	return seqCounter.Add(1)
}

// openSpans tracks spans that began and have not ended yet; the heartbeat
// reports the oldest one.
var openSpans = struct {
	sync.Mutex
	m map[uint64]*Span
}{m: make(map[uint64]*Span)}

// Span is one timed operation. A nil *Span, or one started while its scope is
// filtered out, is inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	file    string
	started time.Time
	attrs   []Attr
}

// Start begins a span under the span of ctx and returns a context carrying
// the new span for nested work.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return ctx, nil
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  spanID(ctx),
		scope:   scope,
		name:    name,
		file:    FileOf(ctx),
		started: time.Now(),
	}
	openSpans.Lock()
	openSpans.m[s.id] = s
	openSpans.Unlock()

	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		File:     s.file,
		Name:     name,
	})
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// Set records key=value on the span's end event.
func (s *Span) Set(key, value string) *Span {
	if s != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	openSpans.Lock()
	delete(openSpans.m, s.id)
	openSpans.Unlock()

	now := time.Now()
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	})
	return now.Sub(s.started)
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under the span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: spanID(ctx),
		File:     FileOf(ctx),
		Name:     name,
		Detail:   detail,
	})
}

// oldestOpen returns the longest running span, if any, and how many are open.
func oldestOpen() (*Span, int) {
	openSpans.Lock()
	defer openSpans.Unlock()
	var oldest *Span
	for _, s := range openSpans.m {
		if oldest == nil || s.started.Before(oldest.started) {
			oldest = s
		}
	}
	return oldest, len(openSpans.m)
}
