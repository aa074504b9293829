// Package observ measures how long the parse and resolve stages take per
// input, for --timings.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Timer accumulates stage durations. One Timer per goroutine.
type Timer struct {
	stages []stage
}

type stage struct {
	name string
	dur  time.Duration
	note string
}

func NewTimer() *Timer { return &Timer{} }

// Track starts timing name; call the returned func once the stage is over.
func (t *Timer) Track(name string) (stop func(note string)) {
	i := len(t.stages)
	t.stages = append(t.stages, stage{name: name})
	started := time.Now()
	return func(note string) {
		t.stages[i].dur = time.Since(started)
		t.stages[i].note = note
	}
}

// Merge adds the stages of r under prefix, used to fold per-file timers into
// one table.
func (t *Timer) Merge(prefix string, r Report) {
	for _, s := range r.Phases {
		t.stages = append(t.stages, stage{
			name: prefix + s.Name,
			dur:  time.Duration(s.DurationMS * float64(time.Millisecond)),
			note: s.Note,
		})
	}
}

// PhaseReport is one timed stage.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is a Timer frozen for output.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	for _, s := range t.stages {
		ms := millis(s.dur)
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: s.name, DurationMS: ms, Note: s.note})
	}
	return r
}

// WriteTable prints one row per stage with its share of the total.
func (r Report) WriteTable(w io.Writer) error {
	width := len("total")
	for _, p := range r.Phases {
		width = max(width, len(p.Name))
	}
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range r.Phases {
		share := 0.0
		if r.TotalMS > 0 {
			share = 100 * p.DurationMS / r.TotalMS
		}
		line := fmt.Sprintf("  %-*s %9.2f ms %5.1f%%", width, p.Name, p.DurationMS, share)
		if p.Note != "" {
			line += "  " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-*s %9.2f ms\n", width, "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
