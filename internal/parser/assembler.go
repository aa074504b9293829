package parser

import (
	"fmt"

	"stracetui/internal/diag"
	"stracetui/internal/lexer"
	"stracetui/internal/model"
	"stracetui/internal/source"
)

// Assembler turns classified lines into the ordered record sequence.
//
// Records are emitted in completion order: a self-contained line is emitted
// where it appears, a call split by `<unfinished ...>` is emitted where its
// `<... resumed>` half appears. For non-overlapping calls this is file order.
//
// Backtrace frames follow the line they belong to. They are buffered and
// attached to the record produced by the last non-backtrace line once the
// next non-backtrace line (or the end of input) arrives. Frames following an
// unfinished half attach to the pending call and travel with it into the
// merged record.
//
// An Assembler serves one input. It is not safe for concurrent use.
type Assembler struct {
	mode     Mode
	reporter diag.Reporter
	strings  *source.Interner

	records []*model.CallRecord
	pending pendingTable

	frames     []model.BacktraceFrame
	framesLine int               // line of the first buffered frame
	target     *model.CallRecord // record of the last non-backtrace line
	finished   bool
}

func NewAssembler(mode Mode, reporter diag.Reporter) *Assembler {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Assembler{
		mode:     mode,
		reporter: reporter,
		strings:  source.NewInterner(),
		pending:  newPendingTable(),
	}
}

// Mode returns the prefix mode lines are classified under.
func (a *Assembler) Mode() Mode {
	return a.mode
}

// Pending reports how many calls are waiting for their resumed half.
func (a *Assembler) Pending() int {
	return a.pending.len()
}

// Feed consumes one input line. num is the 1-based line number used in
// diagnostics. Blank lines are skipped.
func (a *Assembler) Feed(num int, text string) {
	if a.finished {
		panic("parser: Feed after Finish")
	}
	if isBlank(text) {
		return
	}

	line, err := classify(text, a.mode, false)
	if line.Kind == KindBacktrace {
		a.bufferFrame(num, line.Frame)
		return
	}
	if err != nil && isBacktrace(text) {
		// битый кадр не должен отрывать следующие кадры от их записи
		diag.ReportError(a.reporter, err.Code, num, err.Msg, text)
		return
	}

	a.flushFrames()
	a.target = nil

	if err != nil {
		diag.ReportError(a.reporter, err.Code, num, err.Msg, text)
		return
	}

	rec := line.Record
	rec.Name = a.strings.Canonical(rec.Name)

	switch line.Kind {
	case KindSyscall:
		a.emit(&rec)

	case KindSignal:
		rec.Signal.Name = a.strings.Canonical(rec.Signal.Name)
		a.emit(&rec)

	case KindExit:
		if p, ok := a.pending.take(rec.PID); ok {
			diag.ReportWarning(a.reporter, diag.TrcIncompleteAtExit, p.line,
				fmt.Sprintf("%s of pid %d never resumed before the process exited", p.rec.Name, rec.PID), "")
			a.records = append(a.records, p.rec)
		}
		a.emit(&rec)

	case KindUnfinished:
		if old, had := a.pending.put(rec.PID, &rec, num); had {
			diag.ReportWarning(a.reporter, diag.TrcDuplicateUnfinished, num,
				fmt.Sprintf("pid %d starts %s while %s from line %d is still unfinished; the older call stays incomplete",
					rec.PID, rec.Name, old.rec.Name, old.line), text)
			a.records = append(a.records, old.rec)
		}
		a.target = &rec

	case KindResumed:
		a.resume(num, text, &rec)

	default:
		panic(fmt.Sprintf("parser: unexpected line kind %s", line.Kind))
	}
}

// resume merges a resumed half into its pending call.
func (a *Assembler) resume(num int, text string, rec *model.CallRecord) {
	p, ok := a.pending.take(rec.PID)
	if !ok {
		diag.ReportWarning(a.reporter, diag.TrcOrphanResumed, num,
			fmt.Sprintf("%s resumed with no unfinished call for pid %d", rec.Name, rec.PID), text)
		rec.Arguments = lexer.JoinArgs("", rec.Arguments)
		rec.IsResumed = false
		a.emit(rec)
		return
	}

	call := p.rec
	if call.Name != rec.Name {
		diag.ReportWarning(a.reporter, diag.TrcResumedNameMismatch, num,
			fmt.Sprintf("%s resumed but line %d started %s", rec.Name, p.line, call.Name), text)
		call.Name = rec.Name
	}
	call.Arguments = lexer.JoinArgs(call.Arguments, rec.Arguments)
	call.ReturnValue = rec.ReturnValue
	call.Error = rec.Error
	call.IsUnfinished = false
	call.IsResumed = false
	a.emit(call)
}

func (a *Assembler) emit(rec *model.CallRecord) {
	a.records = append(a.records, rec)
	a.target = rec
}

func (a *Assembler) bufferFrame(num int, frame model.BacktraceFrame) {
	if len(a.frames) == 0 {
		a.framesLine = num
	}
	frame.Binary = a.strings.Canonical(frame.Binary)
	a.frames = append(a.frames, frame)
}

func (a *Assembler) flushFrames() {
	if len(a.frames) == 0 {
		return
	}
	if a.target == nil {
		diag.ReportWarning(a.reporter, diag.TrcOrphanBacktrace, a.framesLine,
			fmt.Sprintf("%d backtrace frame(s) follow no record", len(a.frames)), "")
	} else {
		a.target.Backtrace = append(a.target.Backtrace, a.frames...)
	}
	a.frames = nil
}

// Finish flushes buffered frames, emits calls still unfinished as incomplete
// records (in the order they started) and returns the sequence. The
// Assembler must not be used afterwards.
func (a *Assembler) Finish() []model.CallRecord {
	a.flushFrames()
	a.target = nil
	for _, p := range a.pending.drain() {
		diag.ReportWarning(a.reporter, diag.TrcIncompleteAtEOF, p.line,
			fmt.Sprintf("%s of pid %d never resumed", p.rec.Name, p.rec.PID), "")
		a.records = append(a.records, p.rec)
	}
	a.finished = true

	out := make([]model.CallRecord, len(a.records))
	for i, r := range a.records {
		out[i] = *r
	}
	a.records = nil
	return out
}
