package source

import (
	"errors"
	"strings"
	"testing"
)

func collect(lr *LineReader) []Line {
	var out []Line
	for {
		l, ok := lr.Next()
		if !ok {
			return out
		}
		out = append(out, l)
	}
}

func TestLineReaderBasic(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\nb\n\nc"))
	lines := collect(lr)
	want := []string{"a", "b", "", "c"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(lines))
	}
	for i, l := range lines {
		if l.Text != want[i] || l.Num != i+1 {
			t.Errorf("line %d: expected %q, got #%d %q", i+1, want[i], l.Num, l.Text)
		}
	}
	if lr.Err() != nil {
		t.Errorf("unexpected error: %v", lr.Err())
	}
	if lr.Lines() != 4 {
		t.Errorf("Expected 4 lines counted, got %d", lr.Lines())
	}
}

func TestLineReaderCRLFAndBOM(t *testing.T) {
	lr := NewLineReader(strings.NewReader("\xEF\xBB\xBFx\r\ny\rz\r\n"))
	lines := collect(lr)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "x" {
		t.Errorf("Expected BOM stripped, got %q", lines[0].Text)
	}
	if lines[1].Text != "y\rz" {
		t.Errorf("Expected lone \\r kept, got %q", lines[1].Text)
	}
	if lr.Flags()&HadBOM == 0 || lr.Flags()&NormalizedCRLF == 0 {
		t.Errorf("Expected both flags, got %b", lr.Flags())
	}
}

func TestLineReaderEmpty(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	if _, ok := lr.Next(); ok {
		t.Error("Expected no lines from empty input")
	}
}

type failingReader struct{ n int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.n == 0 {
		f.n++
		return copy(p, "first\nsec"), nil
	}
	return 0, errors.New("disk on fire")
}

func TestLineReaderError(t *testing.T) {
	lr := NewLineReader(&failingReader{})
	lines := collect(lr)
	if len(lines) != 1 || lines[0].Text != "first" {
		t.Fatalf("Expected the complete first line only, got %+v", lines)
	}
	if lr.Err() == nil || lr.Err().Error() != "disk on fire" {
		t.Errorf("Expected read error, got %v", lr.Err())
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	buf := "/usr/lib/libc.so.6(write+0x10)"
	a := in.Canonical(buf[:18])
	b := in.Canonical("/usr/lib/libc.so.6")
	if a != b {
		t.Fatalf("Expected equal strings, got %q and %q", a, b)
	}
	if in.Intern(a) != in.Intern(b) {
		t.Error("Expected the same ID")
	}
	if in.Len() != 2 {
		t.Errorf("Expected 2 entries including empty, got %d", in.Len())
	}
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("Expected empty string for NoStringID, got %q", s)
	}
	if _, ok := in.Lookup(99); ok {
		t.Error("Expected lookup of unknown ID to fail")
	}
}

func TestFormatPath(t *testing.T) {
	long := "/usr/lib/x86_64-linux-gnu/some/deep/path/libfoo.so.1"
	if got := FormatPath(long, "auto"); got != "libfoo.so.1" {
		t.Errorf("auto: got %q", got)
	}
	if got := FormatPath("/bin/ls", "auto"); got != "/bin/ls" {
		t.Errorf("auto short: got %q", got)
	}
	if got := FormatPath(long, "basename"); got != "libfoo.so.1" {
		t.Errorf("basename: got %q", got)
	}
	if got := FormatPath("x", "bogus"); got != "x" {
		t.Errorf("default: got %q", got)
	}
}
