package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindWalksUp(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "[parse]\ndetect_lines = 5\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %q, %v, %v", path, ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("Find = %q", path)
	}
}

func TestFindFallsBackToXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	want := filepath.Join(xdg, "stracetui", "config.toml")
	writeFile(t, want, "[ui]\nmode = \"off\"\n")

	path, ok, err := Find(t.TempDir())
	if err != nil || !ok || path != want {
		t.Fatalf("Find = %q, %v, %v; want %q", path, ok, err, want)
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Parse.DetectLines != 20 || cfg.Resolver.Tool != "addr2line" || !cfg.Cache.Persistent {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, `
[parse]
detect_lines = 50
mode = "pid+ts"

[resolver]
tool = "llvm-addr2line"
timeout = "250ms"
jobs = 3

[cache]
persistent = false
dir = "cache"

[ui]
mode = "off"

[trace]
strace = "/usr/local/bin/strace"
args = ["-s", "256"]
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parse.DetectLines != 50 || cfg.Parse.Mode != "pid+ts" {
		t.Errorf("parse = %+v", cfg.Parse)
	}
	if cfg.Resolver.Tool != "llvm-addr2line" || cfg.Resolver.Timeout != 250*time.Millisecond || cfg.Resolver.Jobs != 3 {
		t.Errorf("resolver = %+v", cfg.Resolver)
	}
	if cfg.Cache.Persistent || cfg.Cache.Dir != filepath.Join(dir, "cache") {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.UI.Mode != "off" || cfg.Trace.Strace != "/usr/local/bin/strace" || len(cfg.Trace.Args) != 2 {
		t.Errorf("ui/trace = %+v %+v", cfg.UI, cfg.Trace)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: "[parse\n", want: "failed to parse TOML"},
		{name: "unknown key", content: "[parse]\ncolour = 1\n", want: "unknown keys: parse.colour"},
		{name: "bad mode", content: "[parse]\nmode = \"weird\"\n", want: "unknown mode"},
		{name: "zero detect", content: "[parse]\ndetect_lines = 0\n", want: "detect_lines must be positive"},
		{name: "empty tool", content: "[resolver]\ntool = \"\"\n", want: "[resolver].tool must not be empty"},
		{name: "bad ui", content: "[ui]\nmode = \"maybe\"\n", want: "[ui].mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadFile error = %v, want %q", err, tt.want)
			}
		})
	}
}
