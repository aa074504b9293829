package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stracetui/internal/model"
)

// TextOpts configures WriteText.
type TextOpts struct {
	Color      bool
	Width      int  // обрезка строки вызова, 0 - не ограничено
	Backtraces bool // печатать кадры стека под вызовом
	Summary    bool // итоговая сводка в конце
}

type palette struct {
	pid, name, failed, pending, signal, exit, frame, loc, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		pid:     color.New(color.FgCyan),
		name:    color.New(color.Bold),
		failed:  color.New(color.FgRed),
		pending: color.New(color.FgYellow),
		signal:  color.New(color.FgMagenta),
		exit:    color.New(color.FgBlue, color.Bold),
		frame:   color.New(color.Faint),
		loc:     color.New(color.FgGreen),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.pid, p.name, p.failed, p.pending, p.signal, p.exit, p.frame, p.loc, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText prints one line per record in a strace-like layout.
func WriteText(w io.Writer, doc *Document, opts TextOpts) error {
	bw := bufio.NewWriter(w)
	p := newPalette(opts.Color)

	for i := range doc.Entries {
		r := &doc.Entries[i]
		bw.WriteString(recordLine(r, p, opts.Width))
		bw.WriteByte('\n')
		if !opts.Backtraces {
			continue
		}
		for j := range r.Backtrace {
			f := &r.Backtrace[j]
			bw.WriteString("    ")
			bw.WriteString(p.frame.Sprint("> " + f.String()))
			if f.Resolved != nil {
				bw.WriteString(" at ")
				bw.WriteString(p.loc.Sprint(f.Resolved.String()))
			}
			bw.WriteByte('\n')
		}
	}

	if opts.Summary {
		writeSummary(bw, &doc.Summary, len(doc.Errors), p)
	}
	return bw.Flush()
}

func recordLine(r *model.CallRecord, p palette, width int) string {
	var b strings.Builder
	if r.PID != model.NoPID {
		b.WriteString(p.pid.Sprint("[pid " + strconv.Itoa(r.PID) + "]"))
		b.WriteByte(' ')
	}
	if r.Timestamp != "" {
		b.WriteString(p.dim.Sprint(r.Timestamp))
		b.WriteByte(' ')
	}

	switch r.Kind() {
	case model.KindSignal:
		s := "--- " + r.Signal.Name
		if r.Signal.Detail != "" {
			s += " " + r.Signal.Detail
		}
		b.WriteString(p.signal.Sprint(truncate(s+" ---", width)))
		return b.String()
	case model.KindExit:
		b.WriteString(p.exit.Sprint(r.Title()))
		return b.String()
	}

	b.WriteString(p.name.Sprint(r.Name))
	b.WriteString(truncate("("+r.Arguments+")", width))
	switch {
	case r.Incomplete():
		b.WriteString(" ")
		b.WriteString(p.pending.Sprint("<unfinished ...>"))
	case r.Failed():
		ret := "-1"
		if r.ReturnValue != nil {
			ret = *r.ReturnValue
		}
		msg := " = " + ret + " " + r.Error.Code
		if r.Error.Message != "" {
			msg += " (" + r.Error.Message + ")"
		}
		b.WriteString(p.failed.Sprint(msg))
	case r.ReturnValue != nil:
		b.WriteString(" = ")
		b.WriteString(*r.ReturnValue)
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func writeSummary(w io.Writer, s *model.Summary, errors int, p palette) {
	pr := message.NewPrinter(language.English)
	pr.Fprintf(w, "\n%d syscalls, %d failed, %d incomplete\n", s.TotalSyscalls, s.FailedSyscalls, s.Incomplete)
	pr.Fprintf(w, "%d signals, %d exits, %d processes\n", s.Signals, s.Exits, len(s.UniquePIDs))
	if errors > 0 {
		pr.Fprintf(w, "%s\n", p.failed.Sprint(pr.Sprintf("%d parse diagnostics", errors)))
	}
}
