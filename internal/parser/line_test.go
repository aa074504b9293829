package parser

import (
	"errors"
	"testing"

	"stracetui/internal/diag"
	"stracetui/internal/model"
)

func strp(s string) *string { return &s }

func TestClassifyRecords(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		in   string
		kind LineKind
		want model.CallRecord
	}{
		{
			name: "regular with pid and timestamp",
			mode: ModeFull,
			in:   `12345 10:20:30 write(1, "hello\n", 6) = 6`,
			kind: KindSyscall,
			want: model.CallRecord{PID: 12345, Timestamp: "10:20:30", Name: "write", Arguments: `1, "hello\n", 6`, ReturnValue: strp("6")},
		},
		{
			name: "errno",
			mode: ModeBare,
			in:   `access("/etc/ld.so.preload", R_OK) = -1 ENOENT (No such file or directory)`,
			kind: KindSyscall,
			want: model.CallRecord{Name: "access", Arguments: `"/etc/ld.so.preload", R_OK`, ReturnValue: strp("-1"),
				Error: &model.Errno{Code: "ENOENT", Message: "No such file or directory"}},
		},
		{
			name: "hex return",
			mode: ModeBare,
			in:   `brk(NULL) = 0x5602312ea000`,
			kind: KindSyscall,
			want: model.CallRecord{Name: "brk", Arguments: "NULL", ReturnValue: strp("0x5602312ea000")},
		},
		{
			name: "no return",
			mode: ModeBare,
			in:   `exit_group(0) = ?`,
			kind: KindSyscall,
			want: model.CallRecord{Name: "exit_group", Arguments: "0", ReturnValue: strp("?")},
		},
		{
			name: "errno after question mark",
			mode: ModeBare,
			in:   `pause() = ? ERESTARTNOHAND (To be restarted if no handler)`,
			kind: KindSyscall,
			want: model.CallRecord{Name: "pause", ReturnValue: strp("?"),
				Error: &model.Errno{Code: "ERESTARTNOHAND", Message: "To be restarted if no handler"}},
		},
		{
			name: "terminal pid prefix and duration suffix",
			mode: ModeFull,
			in:   `[pid  4242] 10:00:00.123456 read(3</etc/passwd>, "x", 1) = 1 <0.000012>`,
			kind: KindSyscall,
			want: model.CallRecord{PID: 4242, Timestamp: "10:00:00.123456", Name: "read", Arguments: `3</etc/passwd>, "x", 1`, ReturnValue: strp("1")},
		},
		{
			name: "missing pid tolerated in pid mode",
			mode: ModeFull,
			in:   `10:00:00 getpid() = 7`,
			kind: KindSyscall,
			want: model.CallRecord{PID: model.NoPID, Timestamp: "10:00:00", Name: "getpid", ReturnValue: strp("7")},
		},
		{
			name: "epoch timestamp",
			mode: ModeTimestamp,
			in:   `1700000000.000123 close(3) = 0`,
			kind: KindSyscall,
			want: model.CallRecord{Timestamp: "1700000000.000123", Name: "close", Arguments: "3", ReturnValue: strp("0")},
		},
		{
			name: "unfinished",
			mode: ModeBare,
			in:   `clone3({flags=CLONE_VM|CLONE_VFORK, exit_signal=SIGCHLD, stack_size=0x9000}, 88 <unfinished ...>`,
			kind: KindUnfinished,
			want: model.CallRecord{Name: "clone3", Arguments: `{flags=CLONE_VM|CLONE_VFORK, exit_signal=SIGCHLD, stack_size=0x9000}, 88`, IsUnfinished: true},
		},
		{
			name: "resumed",
			mode: ModePID,
			in:   `12312 <... execve resumed>) = 0`,
			kind: KindResumed,
			want: model.CallRecord{PID: 12312, Name: "execve", ReturnValue: strp("0"), IsResumed: true},
		},
		{
			name: "resumed with arguments",
			mode: ModePID,
			in:   `1 <... read resumed> "buf", 10) = 10`,
			kind: KindResumed,
			want: model.CallRecord{PID: 1, Name: "read", Arguments: ` "buf", 10`, ReturnValue: strp("10"), IsResumed: true},
		},
		{
			name: "signal",
			mode: ModeBare,
			in:   `--- SIGCHLD {si_signo=SIGCHLD, si_code=CLD_EXITED, si_pid=12312} ---`,
			kind: KindSignal,
			want: model.CallRecord{Signal: &model.Signal{Name: "SIGCHLD", Detail: "{si_signo=SIGCHLD, si_code=CLD_EXITED, si_pid=12312}"}},
		},
		{
			name: "stop signal",
			mode: ModeBare,
			in:   `--- stopped by SIGTSTP ---`,
			kind: KindSignal,
			want: model.CallRecord{Signal: &model.Signal{Name: "SIGTSTP", Detail: "stopped by SIGTSTP"}},
		},
		{
			name: "exit",
			mode: ModeFull,
			in:   `12312 12:59:24 +++ exited with 3 +++`,
			kind: KindExit,
			want: model.CallRecord{PID: 12312, Timestamp: "12:59:24", Exit: &model.Exit{Code: model.IntPtr(3)}},
		},
		{
			name: "killed",
			mode: ModeBare,
			in:   `+++ killed by SIGSEGV (core dumped) +++`,
			kind: KindExit,
			want: model.CallRecord{Exit: &model.Exit{Signal: "SIGSEGV", CoreDumped: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Classify(tt.in, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if line.Kind != tt.kind {
				t.Fatalf("Expected kind %s, got %s", tt.kind, line.Kind)
			}
			assertRecord(t, line.Record, tt.want)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		mode Mode
		in   string
		code diag.Code
	}{
		{ModeBare, `garbage text not a syscall`, diag.TrcUnrecognizedLine},
		{ModeBare, `write(1, "abc`, diag.TrcUnterminatedString},
		{ModeBare, `write(1, (2`, diag.TrcUnterminatedArgs},
		{ModeBare, `close(3)`, diag.TrcMalformedReturn},
		{ModeBare, `close(3) = bogus`, diag.TrcMalformedReturn},
		{ModeBare, `+++ vanished +++`, diag.TrcMalformedExit},
		{ModeBare, `+++ exited with x +++`, diag.TrcMalformedExit},
		{ModeBare, `--- ---`, diag.TrcMalformedSignal},
		{ModeBare, `--- nothing here ---`, diag.TrcMalformedSignal},
		{ModeBare, `<... resumed> = 0`, diag.TrcMalformedResumed},
		{ModeBare, `<... read resumed> <unfinished ...>`, diag.TrcMalformedResumed},
		{ModeTimestamp, `write(1, "x", 1) = 1`, diag.TrcMalformedPrefix},
		{ModePID, `99999999999 read() = 0`, diag.TrcMalformedPrefix},
		{ModeBare, ` > /bin/true(main) [0x10]`, diag.BtMissingOffset},
		{ModeBare, `>/bin/true(main+0x1) [0x10]`, diag.TrcUnrecognizedLine},
		{ModeBare, ` >> redirected`, diag.TrcUnrecognizedLine},
	}
	for _, tt := range tests {
		line, err := Classify(tt.in, tt.mode)
		if err == nil {
			t.Errorf("%q: expected error %s, got kind %s", tt.in, tt.code.ID(), line.Kind)
			continue
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected *SyntaxError, got %T", tt.in, err)
		}
		if se.Code != tt.code {
			t.Errorf("%q: expected code %s, got %s (%s)", tt.in, tt.code.ID(), se.Code.ID(), se.Msg)
		}
		if line.Kind != KindUnrecognized {
			t.Errorf("%q: expected unrecognized kind, got %s", tt.in, line.Kind)
		}
	}
}

func assertRecord(t *testing.T, got, want model.CallRecord) {
	t.Helper()
	if got.PID != want.PID || got.Timestamp != want.Timestamp || got.Name != want.Name || got.Arguments != want.Arguments {
		t.Errorf("Expected pid=%d ts=%q name=%q args=%q, got pid=%d ts=%q name=%q args=%q",
			want.PID, want.Timestamp, want.Name, want.Arguments, got.PID, got.Timestamp, got.Name, got.Arguments)
	}
	if !eqStr(got.ReturnValue, want.ReturnValue) {
		t.Errorf("Expected return %v, got %v", deref(want.ReturnValue), deref(got.ReturnValue))
	}
	if (got.Error == nil) != (want.Error == nil) || got.Error != nil && *got.Error != *want.Error {
		t.Errorf("Expected errno %+v, got %+v", want.Error, got.Error)
	}
	if (got.Signal == nil) != (want.Signal == nil) || got.Signal != nil && *got.Signal != *want.Signal {
		t.Errorf("Expected signal %+v, got %+v", want.Signal, got.Signal)
	}
	if (got.Exit == nil) != (want.Exit == nil) {
		t.Errorf("Expected exit %+v, got %+v", want.Exit, got.Exit)
	} else if got.Exit != nil {
		if got.Exit.Signal != want.Exit.Signal || got.Exit.CoreDumped != want.Exit.CoreDumped ||
			(got.Exit.Code == nil) != (want.Exit.Code == nil) ||
			got.Exit.Code != nil && *got.Exit.Code != *want.Exit.Code {
			t.Errorf("Expected exit %+v, got %+v", *want.Exit, *got.Exit)
		}
	}
	if got.IsUnfinished != want.IsUnfinished || got.IsResumed != want.IsResumed {
		t.Errorf("Expected unfinished=%v resumed=%v, got %v/%v", want.IsUnfinished, want.IsResumed, got.IsUnfinished, got.IsResumed)
	}
	if got.Duration != nil {
		t.Errorf("Expected no duration, got %v", *got.Duration)
	}
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
