// Package parser rebuilds the record sequence of an strace log.
//
// Parse reads the input once, line by line. The first lines are sampled to
// detect which prefix columns (pid, timestamp) the trace carries; every line
// is then classified, decomposed and handed to an Assembler, which rejoins
// calls split across `<unfinished ...>` / `<... resumed>` lines and attaches
// backtrace frames. Malformed lines become diagnostics and never stop the
// parse. Parsing performs no I/O besides reading the input.
package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"stracetui/internal/diag"
	"stracetui/internal/model"
	"stracetui/internal/source"
	"stracetui/internal/trace"
)

// ctxCheckEvery is how many lines are parsed between context checks.
const ctxCheckEvery = 4096

type Options struct {
	// DetectLines bounds the detection sample; 0 means DefaultDetectLines.
	DetectLines int
	// Hint is the mode the trace was requested with, if known. Detection
	// takes precedence; the hint is used only when nothing matches.
	Hint *Mode
}

type Result struct {
	Records  []model.CallRecord
	Bag      *diag.Bag
	Mode     Mode
	Detected bool // false when Mode is a fallback
	Lines    int
	Flags    source.Flags
}

// Parse reads a whole trace from r.
//
// The returned records are in completion order (see Assembler). The error is
// non-nil only when reading r fails or ctx is cancelled; the records and
// diagnostics gathered up to that point are returned with it.
func Parse(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")

	limit := opts.DetectLines
	if limit <= 0 {
		limit = DefaultDetectLines
	}

	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	lr := source.NewLineReader(r)

	// Сэмпл для детектора буферизуется и затем проигрывается в ассемблер.
	var head []source.Line
	sample := make([]string, 0, limit)
	for len(sample) < limit {
		line, ok := lr.Next()
		if !ok {
			break
		}
		head = append(head, line)
		if !isBlank(line.Text) && !isBacktrace(line.Text) {
			sample = append(sample, line.Text)
		}
	}

	mode, detected := Detect(sample, opts.Hint)
	if detected && opts.Hint != nil && *opts.Hint != mode {
		diag.ReportInfo(reporter, diag.TrcModeHintMismatch, 0,
			fmt.Sprintf("trace was requested as %s but looks like %s", *opts.Hint, mode), "")
	}
	trace.Point(ctx, trace.ScopeFile, "detect", fmt.Sprintf("mode=%s detected=%t", mode, detected))

	asm := NewAssembler(mode, reporter)
	for _, line := range head {
		asm.Feed(line.Num, line.Text)
	}

	var err error
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		asm.Feed(line.Num, line.Text)
		if line.Num%ctxCheckEvery == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
	}
	if rerr := lr.Err(); rerr != nil {
		diag.ReportError(reporter, diag.IOReadError, lr.Lines()+1, rerr.Error(), "")
		err = fmt.Errorf("read trace: %w", rerr)
	}

	res := Result{
		Records:  asm.Finish(),
		Bag:      bag,
		Mode:     mode,
		Detected: detected,
		Lines:    lr.Lines(),
		Flags:    lr.Flags(),
	}
	span.Set("lines", strconv.Itoa(res.Lines)).
		Set("records", strconv.Itoa(len(res.Records))).
		Set("diagnostics", strconv.Itoa(bag.Len())).
		End(mode.String())
	return res, err
}

// ParseFile opens path and parses it. A file that cannot be opened is the one
// fatal condition and is reported before any parsing starts.
func ParseFile(ctx context.Context, path string, opts Options) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer f.Close()
	return Parse(ctx, f, opts)
}
