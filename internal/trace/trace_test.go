package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStartNestsThroughContext(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)
	ctx = WithFile(ctx, "run.trace")

	ctx, outer := Start(ctx, ScopeDriver, "pipeline")
	inner, parse := Start(ctx, ScopePass, "parse")
	Point(inner, ScopeFile, "detect", "mode=pid")
	parse.Set("records", "3").End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	begin, point, end := events[1], events[2], events[3]
	if begin.Kind != KindSpanBegin || begin.ParentID != outer.ID() {
		t.Errorf("parse begin = %+v, want parent %d", begin, outer.ID())
	}
	if point.ParentID != parse.ID() || point.File != "run.trace" {
		t.Errorf("detect point = %+v", point)
	}
	if len(end.Attrs) != 1 || end.Attrs[0] != (Attr{Key: "records", Value: "3"}) {
		t.Errorf("parse end attrs = %+v", end.Attrs)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Errorf("seq not increasing at %d: %d after %d", i, events[i].Seq, events[i-1].Seq)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))

	if Enabled(ctx, ScopeFile) {
		t.Error("file scope enabled at phase level")
	}
	ctx, span := Start(ctx, ScopePass, "parse")
	_, hidden := Start(ctx, ScopeFrame, "lookup")
	if hidden != nil {
		t.Error("frame span started at phase level")
	}
	hidden.Set("k", "v").End("ignored")
	Point(ctx, ScopeFile, "detect", "mode=pid")
	span.Set("records", "3").End("pid")

	out := buf.String()
	if !strings.Contains(out, "→ parse") || !strings.Contains(out, "← parse (pid) {records=3}") {
		t.Errorf("missing parse span:\n%s", out)
	}
	if strings.Contains(out, "detect") || strings.Contains(out, "lookup") {
		t.Errorf("filtered events written:\n%s", out)
	}
}

func TestNoTracerIsInert(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || Enabled(ctx, ScopeDriver) {
		t.Fatal("expected Nop without a tracer")
	}
	ctx2, span := Start(ctx, ScopeDriver, "run")
	if span != nil || ctx2 != ctx {
		t.Error("Start without a tracer must be a no-op")
	}
	if d := span.End(""); d != 0 {
		t.Errorf("End on inert span = %v", d)
	}
}

func TestNDJSONCarriesFileAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))
	ctx = WithFile(ctx, "a.trace")
	_, span := Start(ctx, ScopeFrame, "addr2line")
	buf.Reset()
	span.Set("binary", "/bin/true").End("ok")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid NDJSON %q: %v", buf.String(), err)
	}
	if ev["kind"] != "end" || ev["scope"] != "frame" || ev["file"] != "a.trace" || ev["detail"] != "ok" {
		t.Errorf("event = %v", ev)
	}
	attrs, _ := ev["attrs"].(map[string]any)
	if attrs["binary"] != "/bin/true" {
		t.Errorf("attrs = %v", ev["attrs"])
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	for _, name := range []string{"a", "b", "c"} {
		Point(ctx, ScopeDriver, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v, want [b c]", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("dump = %q", buf.String())
	}
}

func TestNewBothTeesEvents(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ring, ok := Ring(tr)
	if !ok {
		t.Fatal("both mode has no ring")
	}
	ctx := WithTracer(context.Background(), tr)
	_, span := Start(ctx, ScopeDriver, "run")
	span.End("")

	if len(ring.Snapshot()) != 2 || strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("ring %d events, stream %q", len(ring.Snapshot()), buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	off, err := New(Config{Level: LevelOff, Mode: ModeBoth})
	if err != nil || off != Nop {
		t.Errorf("LevelOff = %v, %v", off, err)
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Error("expected error for missing mode")
	}
}

func TestHeartbeatNamesOldestSpan(t *testing.T) {
	ring := NewRingTracer(64, LevelError)
	ctx := WithTracer(WithFile(context.Background(), "slow.trace"), ring)
	_, span := Start(ctx, ScopeDriver, "spawn")

	hb := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	var beat *Event
	for beat == nil && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat {
				ev := ev
				beat = &ev
				break
			}
		}
	}
	hb.Stop()
	hb.Stop()
	span.End("")

	if beat == nil {
		t.Fatal("no heartbeat recorded")
	}
	if !strings.Contains(beat.Detail, "oldest spawn") || beat.File != "slow.trace" || beat.SpanID != span.ID() {
		t.Errorf("heartbeat = %+v", beat)
	}
	if StartHeartbeat(Nop, time.Second) != nil {
		t.Error("heartbeat started for Nop")
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel(" Detail "); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted loud")
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth || m.String() != "both" {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}
	if FormatForPath("out.ndjson") != FormatNDJSON || FormatForPath("out.log") != FormatText {
		t.Error("FormatForPath")
	}
}
