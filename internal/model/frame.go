package model

import (
	"fmt"
	"strings"
)

// BacktraceFrame is one ` > binary(function+offset) [address]` line
// emitted by `strace -k`.
// Function and Offset are either both set or both nil.
type BacktraceFrame struct {
	Binary   string            `json:"binary"`
	Function *string           `json:"function"`
	Offset   *string           `json:"offset"`
	Address  string            `json:"address"`
	Resolved *ResolvedLocation `json:"resolved"`
}

// ResolvedLocation is a source position produced by the symbolizer.
type ResolvedLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column *int   `json:"column"`
}

// Key identifies the frame for resolution purposes.
func (f *BacktraceFrame) Key() FrameKey {
	return FrameKey{Binary: f.Binary, Address: f.Address}
}

// Symbol renders `function+offset`, or an empty string for unsymbolized frames.
func (f *BacktraceFrame) Symbol() string {
	if f.Function == nil {
		return ""
	}
	if f.Offset == nil {
		return *f.Function
	}
	return *f.Function + "+" + *f.Offset
}

// String reproduces the tracer's rendering of the frame, without the marker.
func (f *BacktraceFrame) String() string {
	var b strings.Builder
	b.WriteString(f.Binary)
	if sym := f.Symbol(); sym != "" {
		b.WriteByte('(')
		b.WriteString(sym)
		b.WriteByte(')')
	}
	b.WriteString(" [")
	b.WriteString(f.Address)
	b.WriteByte(']')
	return b.String()
}

// FrameKey is the (binary, address) pair the resolver caches on.
type FrameKey struct {
	Binary  string
	Address string
}

func (k FrameKey) String() string {
	return k.Binary + ":" + k.Address
}

func (l *ResolvedLocation) String() string {
	if l == nil {
		return "??:0"
	}
	if l.Column != nil {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, *l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
