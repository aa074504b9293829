package ui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"stracetui/internal/driver"
)

func TestProgressApplyEvent(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("stracetui", []string{"a.trace", "b.trace", "c.trace"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.trace", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.trace", Stage: driver.StageParse, Status: driver.StatusWorking, Elapsed: time.Millisecond, Records: 12})
	m.applyEvent(driver.Event{File: "b.trace", Stage: driver.StageResolve, Status: driver.StatusWorking, Records: 12, Done: 3, Total: 4, Failed: 1})
	m.applyEvent(driver.Event{File: "c.trace", Stage: driver.StageParse, Status: driver.StatusError, Err: errors.New("no such file")})
	m.applyEvent(driver.Event{File: "missing.trace", Stage: driver.StageParse, Status: driver.StatusDone})

	if got := m.items[0].state; got != fileParsing {
		t.Errorf("a.trace state = %s", got.label())
	}
	b := m.items[1]
	if b.state != fileResolving || b.records != 12 || b.done != 3 || b.total != 4 || b.failed != 1 {
		t.Errorf("b.trace = %+v", b)
	}
	if m.items[2].state != fileFailed {
		t.Errorf("c.trace state = %s", m.items[2].state.label())
	}

	view := m.View()
	for _, want := range []string{"parsing", "3/4 addresses, 1 failed", "no such file"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m.applyEvent(driver.Event{Stage: driver.StageResolve, Status: driver.StatusWorking})
	if m.phase != "resolving" {
		t.Errorf("phase = %q", m.phase)
	}
}

func TestProgressParsedThenDone(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("stracetui", []string{"a.trace"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.trace", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "a.trace", Stage: driver.StageParse, Status: driver.StatusWorking, Elapsed: 2 * time.Millisecond, Records: 5})
	if m.items[0].state != fileParsed {
		t.Fatalf("state = %s, want parsed", m.items[0].state.label())
	}
	m.applyEvent(driver.Event{File: "a.trace", Stage: driver.StageResolve, Status: driver.StatusDone, Elapsed: 3 * time.Millisecond, Records: 5, Done: 2, Total: 2})
	item := m.items[0]
	if item.state != fileDone || item.elapsed != 5*time.Millisecond {
		t.Fatalf("item = %+v", item)
	}
	if got := item.detail(); got != "5 records, 2 addresses in 5ms" {
		t.Errorf("detail = %q", got)
	}
	if m.percent() != 1 {
		t.Errorf("percent = %v", m.percent())
	}
}

func TestFileItemWeight(t *testing.T) {
	tests := []struct {
		item fileItem
		want float64
	}{
		{fileItem{state: fileQueued}, 0},
		{fileItem{state: fileParsing}, 0.1},
		{fileItem{state: fileParsed}, 0.4},
		{fileItem{state: fileResolving}, 0.4},
		{fileItem{state: fileResolving, done: 1, total: 2}, 0.7},
		{fileItem{state: fileFailed}, 1},
	}
	for _, tt := range tests {
		if got := tt.item.weight(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("weight(%+v) = %v, want %v", tt.item, got, tt.want)
		}
	}
}

func TestProgressQuitsWhenEventsClosed(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("stracetui", []string{"a.trace"}, events).(*progressModel)
	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	m.Update(msg)
	if !m.finished {
		t.Error("model not finished after events closed")
	}
	if !strings.Contains(m.View(), "done: stracetui") {
		t.Errorf("view = %q", m.View())
	}
}
