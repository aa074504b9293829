package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a periodic event naming the oldest span still open. A run
// of heartbeats pointing at the same span is a stuck step, typically a
// symbolizer that never answers.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case now := <-ticker.C:
			h.beat(n, now)
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) beat(n int, now time.Time) {
	ev := &Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: fmt.Sprintf("#%d idle", n),
	}
	if oldest, open := oldestOpen(); oldest != nil {
		ev.SpanID = oldest.id
		ev.File = oldest.file
		age := now.Sub(oldest.started).Round(time.Millisecond)
		ev.Detail = fmt.Sprintf("#%d %d open, oldest %s for %s", n, open, oldest.name, age)
	}
	h.tracer.Emit(ev)
}

// Stop ends the loop and waits for it. Safe on nil and safe to repeat.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
