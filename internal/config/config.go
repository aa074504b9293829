// Package config loads stracetui.toml. Values set on the command line take
// precedence; the CLI applies them on top of what Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is looked up from the working directory towards the root.
const FileName = "stracetui.toml"

type Config struct {
	Path     string         `toml:"-"` // file the values came from; empty for defaults
	Parse    ParseConfig    `toml:"parse"`
	Resolver ResolverConfig `toml:"resolver"`
	Cache    CacheConfig    `toml:"cache"`
	UI       UIConfig       `toml:"ui"`
	Trace    TraceConfig    `toml:"trace"`
}

type ParseConfig struct {
	DetectLines int    `toml:"detect_lines"`
	Mode        string `toml:"mode"` // auto|bare|pid|ts|pid+ts
}

type ResolverConfig struct {
	Tool    string        `toml:"tool"`
	Timeout time.Duration `toml:"timeout"`
	Jobs    int           `toml:"jobs"`
}

type CacheConfig struct {
	Persistent bool   `toml:"persistent"`
	Dir        string `toml:"dir"`
}

type UIConfig struct {
	Mode string `toml:"mode"` // auto|on|off
}

type TraceConfig struct {
	Strace string   `toml:"strace"`
	Args   []string `toml:"args"` // extra strace flags, after the built-in -f -tt -k
}

// Default returns the values used when no file is found.
func Default() Config {
	return Config{
		Parse:    ParseConfig{DetectLines: 20, Mode: "auto"},
		Resolver: ResolverConfig{Tool: "addr2line", Timeout: 5 * time.Second},
		Cache:    CacheConfig{Persistent: true},
		UI:       UIConfig{Mode: "auto"},
		Trace:    TraceConfig{Strace: "strace"},
	}
}

// Find walks up from startDir looking for FileName, then falls back to
// $XDG_CONFIG_HOME/stracetui/config.toml (~/.config when unset).
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if ok, err := exists(candidate); err != nil || ok {
			return candidate, ok, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, nil
		}
		base = filepath.Join(home, ".config")
	}
	candidate := filepath.Join(base, "stracetui", "config.toml")
	ok, err := exists(candidate)
	if err != nil || !ok {
		return "", false, err
	}
	return candidate, true, nil
}

func exists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return false, nil
}

// Load reads path, or searches from startDir when path is empty. A missing
// file is not an error: the defaults are returned.
func Load(path, startDir string) (Config, error) {
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile decodes path over the defaults. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("resolver", "tool") && strings.TrimSpace(cfg.Resolver.Tool) == "" {
		return Config{}, fmt.Errorf("%s: [resolver].tool must not be empty", path)
	}
	if meta.IsDefined("trace", "strace") && strings.TrimSpace(cfg.Trace.Strace) == "" {
		return Config{}, fmt.Errorf("%s: [trace].strace must not be empty", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Parse.DetectLines < 1 {
		return fmt.Errorf("[parse].detect_lines must be positive, got %d", c.Parse.DetectLines)
	}
	switch strings.ToLower(c.Parse.Mode) {
	case "", "auto", "bare", "pid", "ts", "pid+ts":
	default:
		return fmt.Errorf("[parse].mode: unknown mode %q (expected auto|bare|pid|ts|pid+ts)", c.Parse.Mode)
	}
	if c.Resolver.Timeout < 0 {
		return fmt.Errorf("[resolver].timeout must not be negative")
	}
	if c.Resolver.Jobs < 0 {
		return fmt.Errorf("[resolver].jobs must not be negative")
	}
	switch strings.ToLower(c.UI.Mode) {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("[ui].mode: unknown mode %q (expected auto|on|off)", c.UI.Mode)
	}
	return nil
}
