// Package model holds the records produced by the trace parser and consumed
// by the resolver, the exporters and the viewer.
package model

import "strconv"

// NoPID is the pid given to records of a trace that carries no pid column
// (strace without -f).
const NoPID = 0

// RecordKind tells which of the three record shapes a CallRecord holds.
type RecordKind uint8

const (
	KindCall RecordKind = iota
	KindSignal
	KindExit
)

func (k RecordKind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindSignal:
		return "signal"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// CallRecord is one completed syscall, delivered signal or process exit.
//
// Exactly one of {call fields, Signal, Exit} is populated. IsUnfinished and
// IsResumed are assembly-time flags: a record handed to callers has both
// false, except a call that was never resumed (end of input or process exit),
// which keeps IsUnfinished set.
type CallRecord struct {
	PID          int              `json:"pid"`
	Timestamp    string           `json:"timestamp"`
	Name         string           `json:"name"`
	Arguments    string           `json:"arguments"`
	ReturnValue  *string          `json:"return_value"`
	Error        *Errno           `json:"error"`
	Duration     *float64         `json:"duration"`
	Backtrace    []BacktraceFrame `json:"backtrace"`
	IsUnfinished bool             `json:"is_unfinished"`
	IsResumed    bool             `json:"is_resumed"`
	Signal       *Signal          `json:"signal"`
	Exit         *Exit            `json:"exit"`
}

// Errno is the `-1 ENOENT (No such file or directory)` suffix of a failed call.
type Errno struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Signal is a `--- SIGCHLD {...} ---` line.
type Signal struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// Exit is a `+++ exited with N +++` or `+++ killed by SIG +++` line.
// Code is nil when the process was killed.
type Exit struct {
	Code       *int   `json:"code"`
	Signal     string `json:"signal"`
	CoreDumped bool   `json:"core_dumped"`
}

// Killed reports whether the process was terminated by a signal.
func (e *Exit) Killed() bool {
	return e != nil && e.Signal != ""
}

// Kind reports which shape the record holds.
func (r *CallRecord) Kind() RecordKind {
	switch {
	case r.Signal != nil:
		return KindSignal
	case r.Exit != nil:
		return KindExit
	default:
		return KindCall
	}
}

// Failed reports whether the call carries an errno.
func (r *CallRecord) Failed() bool {
	return r.Error != nil
}

// Incomplete reports whether the call never resumed.
func (r *CallRecord) Incomplete() bool {
	return r.IsUnfinished
}

// Title is a one-line label used by the viewer and the pretty exporter.
func (r *CallRecord) Title() string {
	switch r.Kind() {
	case KindSignal:
		return "--- " + r.Signal.Name + " ---"
	case KindExit:
		if r.Exit.Killed() {
			return "+++ killed by " + r.Exit.Signal + " +++"
		}
		if r.Exit.Code != nil {
			return "+++ exited with " + strconv.Itoa(*r.Exit.Code) + " +++"
		}
		return "+++ exited +++"
	default:
		return r.Name
	}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to a copy of n.
func IntPtr(n int) *int {
	return &n
}
