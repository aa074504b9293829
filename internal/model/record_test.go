package model

import (
	"reflect"
	"testing"
)

func TestCallRecord_Kind(t *testing.T) {
	call := CallRecord{Name: "read"}
	sig := CallRecord{Signal: &Signal{Name: "SIGCHLD"}}
	exit := CallRecord{Exit: &Exit{Code: IntPtr(0)}}

	if call.Kind() != KindCall || sig.Kind() != KindSignal || exit.Kind() != KindExit {
		t.Fatalf("kinds = %s/%s/%s", call.Kind(), sig.Kind(), exit.Kind())
	}
	if got := exit.Title(); got != "+++ exited with 0 +++" {
		t.Errorf("exit title = %q", got)
	}
	killed := CallRecord{Exit: &Exit{Signal: "SIGKILL"}}
	if got := killed.Title(); got != "+++ killed by SIGKILL +++" {
		t.Errorf("killed title = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	records := []CallRecord{
		{PID: 7, Name: "open", Error: &Errno{Code: "ENOENT"}},
		{PID: 3, Name: "read", ReturnValue: StringPtr("4")},
		{PID: 3, Name: "wait4", IsUnfinished: true},
		{PID: 3, Signal: &Signal{Name: "SIGCHLD"}},
		{PID: 7, Exit: &Exit{Code: IntPtr(1)}},
	}
	got := Summarize(records)
	want := Summary{
		TotalSyscalls:  3,
		FailedSyscalls: 1,
		UniquePIDs:     []int{3, 7},
		Signals:        1,
		Exits:          1,
		Incomplete:     1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}

func TestBacktraceFrame_String(t *testing.T) {
	fn, off := "__write", "0x14"
	f := BacktraceFrame{Binary: "/usr/lib/libc.so.6", Function: &fn, Offset: &off, Address: "0x10e53e"}
	if got := f.String(); got != "/usr/lib/libc.so.6(__write+0x14) [0x10e53e]" {
		t.Errorf("String = %q", got)
	}
	bare := BacktraceFrame{Binary: "/bin/true", Address: "0x1a"}
	if got := bare.String(); got != "/bin/true [0x1a]" {
		t.Errorf("String = %q", got)
	}
	if bare.Key().String() != "/bin/true:0x1a" {
		t.Errorf("Key = %q", bare.Key().String())
	}
}
