package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"stracetui/internal/export"
	"stracetui/internal/trace"
)

func newTestRoot(t *testing.T, sub *cobra.Command, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := &cobra.Command{Use: "stracetui", SilenceUsage: true, SilenceErrors: true}
	registerRootFlags(root)
	root.AddCommand(sub)
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{sub.Name(), "--color", "off"}, args...))
	err = root.Execute()
	return stdout, stderr, err
}

func settingsProbe(got **settings) *cobra.Command {
	cmd := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			*got = s
			return err
		},
	}
	addParseFlags(cmd)
	addResolverFlags(cmd)
	cmd.Flags().String("ui", "auto", "")
	return cmd
}

func TestLoadSettingsFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "stracetui.toml")
	body := "[parse]\nmode = \"pid\"\ndetect_lines = 5\n\n[resolver]\njobs = 2\n\n[ui]\nmode = \"off\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var s *settings
	if _, _, err := newTestRoot(t, settingsProbe(&s), "--config", cfgPath, "--detect-lines", "7", "--no-cache", "--quiet"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if s.cfg.Parse.DetectLines != 7 {
		t.Errorf("detect lines = %d, want flag value 7", s.cfg.Parse.DetectLines)
	}
	if s.cfg.Parse.Mode != "pid" || s.cfg.Resolver.Jobs != 2 {
		t.Errorf("config values lost: %+v", s.cfg)
	}
	if s.cfg.Cache.Persistent {
		t.Error("--no-cache did not disable the persistent cache")
	}
	if !s.quiet || s.maxDiagnostics != 100 {
		t.Errorf("root flags: quiet=%v max=%d", s.quiet, s.maxDiagnostics)
	}
	if mode, err := s.uiMode(); err != nil || mode != uiModeOff {
		t.Errorf("ui mode = %q, %v", mode, err)
	}
	opts, err := s.parseOptions()
	if err != nil || opts.Hint == nil || opts.Hint.String() != "pid" {
		t.Errorf("parse options = %+v, %v", opts, err)
	}
}

func TestLoadSettingsRejectsBadFlag(t *testing.T) {
	var s *settings
	_, _, err := newTestRoot(t, settingsProbe(&s), "--mode", "sideways")
	if err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("err = %v, want invalid mode", err)
	}
}

func TestParseCommandExportsJSON(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "run.trace")
	trace := "openat(AT_FDCWD, \"/nope\", O_RDONLY) = -1 ENOENT (No such file or directory)\n" +
		"this is not strace\n" +
		"close(3) = 0\n"
	if err := os.WriteFile(tracePath, []byte(trace), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "run.json")

	_, stderr, err := newTestRoot(t, parseCmd, "-o", outPath, tracePath)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, stderr)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := export.Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Entries) != 2 || doc.Summary.FailedSyscalls != 1 {
		t.Errorf("entries=%d failed=%d", len(doc.Entries), doc.Summary.FailedSyscalls)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Line != 2 {
		t.Errorf("errors = %+v", doc.Errors)
	}
	if !strings.Contains(stderr.String(), "run.trace:2: ERROR") {
		t.Errorf("stderr missing diagnostic:\n%s", stderr)
	}
}

func TestParseCommandUnreadableInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.trace")
	_, stderr, err := newTestRoot(t, parseCmd, "--diagnostics", "none", "-o", filepath.Join(t.TempDir(), "x.json"), missing)
	if err == nil || !strings.Contains(err.Error(), "could not be read") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr.String(), missing) {
		t.Errorf("stderr does not name the input:\n%s", stderr)
	}
}

func TestResolveCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	tool := filepath.Join(t.TempDir(), "fake-addr2line")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\necho main\necho /src/app.c:42\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := newTestRoot(t, resolveCmd, "--addr2line", tool, "--no-cache", "/bin/app", "0x10", "0x20")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := "0x10 /src/app.c:42\n0x20 /src/app.c:42\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Error("explicit ui modes ignored")
	}
}

func TestExportName(t *testing.T) {
	tests := []struct {
		path   string
		format export.Format
		want   string
	}{
		{"/tmp/run.trace", export.FormatJSON, "run.json"},
		{"logs/app.log", export.FormatMsgpack, "app.msgpack"},
		{"-", export.FormatText, "stdin.txt"},
	}
	for _, tt := range tests {
		if got := exportName(tt.path, tt.format); got != tt.want {
			t.Errorf("exportName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadDiagFormat(t *testing.T) {
	for _, ok := range []string{"", "pretty", "json", "none"} {
		if _, err := readDiagFormat(ok); err != nil {
			t.Errorf("readDiagFormat(%q): %v", ok, err)
		}
	}
	if _, err := readDiagFormat("sarif"); err == nil {
		t.Error("sarif accepted")
	}
}

func TestVersionJSONListsTools(t *testing.T) {
	stdout, _, err := newTestRoot(t, versionCmd, "--format", "json", "--tools")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{`"tool": "stracetui"`, `"name": "strace"`, `"name": "addr2line"`, `"go": "go`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}

	if _, _, err := newTestRoot(t, versionCmd, "--format", "yaml"); err == nil {
		t.Error("expected error for yaml format")
	}
}

// traceProbe records the tracer config its root's flags produce. Each root
// needs its own probe: cobra keeps the flag set merged from the first parent.
func traceProbe(got *trace.Config) *cobra.Command {
	return &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			*got, err = traceConfig(cmd)
			return err
		},
	}
}

func TestTraceConfigFromFlags(t *testing.T) {
	var cfg trace.Config
	out := filepath.Join(t.TempDir(), "run.ndjson")
	if _, _, err := newTestRoot(t, traceProbe(&cfg), "--trace", out, "--trace-mode", "ring"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if cfg.Level != trace.LevelPhase || cfg.Mode != trace.ModeRing || cfg.Format != trace.FormatNDJSON {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, _, err := newTestRoot(t, traceProbe(&cfg), "--trace-level", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
