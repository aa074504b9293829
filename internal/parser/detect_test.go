package parser

import "testing"

func TestDetect(t *testing.T) {
	pid := ModePID
	tests := []struct {
		name     string
		lines    []string
		hint     *Mode
		want     Mode
		detected bool
	}{
		{
			name:     "pid and timestamp",
			lines:    []string{`1 10:00:01 read(3, <unfinished ...>`, `2 10:00:02 write(1, "x", 1) = 1`},
			want:     ModeFull,
			detected: true,
		},
		{
			name:     "pid only",
			lines:    []string{`123 read(3, "", 0) = 0`, `123 +++ exited with 0 +++`},
			want:     ModePID,
			detected: true,
		},
		{
			name:     "timestamp only",
			lines:    []string{`10:00:00.000001 getpid() = 7`, `1700000000.5 getpid() = 7`},
			want:     ModeTimestamp,
			detected: true,
		},
		{
			name:     "bare",
			lines:    []string{`execve("/bin/true", ["true"], 0x7ffc /* 20 vars */) = 0`, `--- SIGCHLD {si_signo=SIGCHLD} ---`},
			want:     ModeBare,
			detected: true,
		},
		{
			name:     "majority wins over first line",
			lines:    []string{`5 10:00:00 read() = 0`, `read() = 0`, `write() = 1`, `close(3) = 0`},
			want:     ModeBare,
			detected: true,
		},
		{
			name:     "tie goes to the first matching line",
			lines:    []string{`10:00:00 read() = 0`, `5 read() = 0`},
			want:     ModeTimestamp,
			detected: true,
		},
		{
			name:     "backtraces and blanks are skipped",
			lines:    []string{` > /bin/x [0x1]`, ``, `5 read() = 0`},
			want:     ModePID,
			detected: true,
		},
		{
			name:  "fails open to bare",
			lines: []string{`garbage`, `more garbage`},
			want:  ModeBare,
		},
		{
			name:  "fails open to hint",
			lines: []string{`garbage`},
			hint:  &pid,
			want:  ModePID,
		},
		{
			name:     "hint does not override detection",
			lines:    []string{`10:00:00 read() = 0`},
			hint:     &pid,
			want:     ModeTimestamp,
			detected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detected := Detect(tt.lines, tt.hint)
			if got != tt.want || detected != tt.detected {
				t.Errorf("Detect = %s/%v, want %s/%v", got, detected, tt.want, tt.detected)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "auto", "AUTO"} {
		if _, ok, err := ParseMode(s); ok || err != nil {
			t.Errorf("ParseMode(%q) should mean no hint", s)
		}
	}
	for want, s := range map[Mode]string{ModeBare: "bare", ModePID: "pid", ModeTimestamp: "ts", ModeFull: "pid+ts"} {
		got, ok, err := ParseMode(s)
		if err != nil || !ok || got != want {
			t.Errorf("ParseMode(%q) = %s, %v, %v", s, got, ok, err)
		}
		if got.String() != s {
			t.Errorf("String() = %q, want %q", got.String(), s)
		}
	}
	if _, _, err := ParseMode("sometimes"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
