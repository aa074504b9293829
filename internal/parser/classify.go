package parser

import (
	"fmt"
	"strings"

	"stracetui/internal/diag"
	"stracetui/internal/lexer"
	"stracetui/internal/model"
)

// LineKind is the closed set of shapes a trace line can take.
type LineKind uint8

const (
	KindUnrecognized LineKind = iota
	KindSyscall
	KindUnfinished
	KindResumed
	KindSignal
	KindExit
	KindBacktrace
)

func (k LineKind) String() string {
	switch k {
	case KindSyscall:
		return "syscall"
	case KindUnfinished:
		return "unfinished"
	case KindResumed:
		return "resumed"
	case KindSignal:
		return "signal"
	case KindExit:
		return "exit"
	case KindBacktrace:
		return "backtrace"
	default:
		return "unrecognized"
	}
}

// Line is one classified and decomposed trace line.
//
// For KindBacktrace only Frame is set. For the other kinds Record holds the
// prefix columns and the body: for KindUnfinished Arguments is the text before
// `<unfinished ...>`, for KindResumed it is the text after `resumed>`.
type Line struct {
	Kind   LineKind
	Record model.CallRecord
	Frame  model.BacktraceFrame
}

// SyntaxError describes why a line could not be decomposed.
type SyntaxError struct {
	Code diag.Code
	Msg  string
}

func (e *SyntaxError) Error() string {
	return e.Code.ID() + ": " + e.Msg
}

func syntaxErr(code diag.Code, format string, args ...any) *SyntaxError {
	return &SyntaxError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Classify decides the shape of text under mode and decomposes it. Shapes are
// tried in priority order: backtrace frame, resumed, signal, exit, then a call
// that is either unfinished or complete. A line matching nothing returns a
// KindUnrecognized line and a *SyntaxError.
//
// Under a pid mode a line without a pid is accepted with model.NoPID, as
// strace prints no pid for the initial process when writing to a terminal.
func Classify(text string, mode Mode) (Line, error) {
	line, err := classify(text, mode, false)
	if err != nil {
		return line, err
	}
	return line, nil
}

func classify(text string, mode Mode, strict bool) (Line, *SyntaxError) {
	if isBacktrace(text) {
		frame, err := parseFrame(text)
		if err != nil {
			return Line{Kind: KindUnrecognized}, err
		}
		return Line{Kind: KindBacktrace, Frame: frame}, nil
	}

	c := lexer.NewCursor(text)
	var line Line
	if err := parsePrefix(&c, mode, strict, &line.Record); err != nil {
		return Line{Kind: KindUnrecognized}, err
	}
	kind, err := parseBody(&c, &line.Record)
	if err != nil {
		return Line{Kind: KindUnrecognized}, err
	}
	line.Kind = kind
	return line, nil
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// isBacktrace matches the ` > ` marker strace -k puts before every frame.
// A bare `>` with no following space is not a frame.
func isBacktrace(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t"), "> ")
}
