package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stracetui/internal/config"
	"stracetui/internal/parser"
	"stracetui/internal/symbolize"
)

const appName = "stracetui"

// settings is the effective configuration of one command: the config file
// with the command-line flags applied on top.
type settings struct {
	cfg            config.Config
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	root := cmd.Root().PersistentFlags()
	path, err := root.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path, ".")
	if err != nil {
		return nil, err
	}
	s := &settings{cfg: cfg}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	flags := cmd.Flags()
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		s.cfg.Parse.Mode, _ = flags.GetString("mode")
	}
	if flags.Lookup("detect-lines") != nil && flags.Changed("detect-lines") {
		s.cfg.Parse.DetectLines, _ = flags.GetInt("detect-lines")
	}
	if flags.Lookup("addr2line") != nil && flags.Changed("addr2line") {
		s.cfg.Resolver.Tool, _ = flags.GetString("addr2line")
	}
	if flags.Lookup("resolve-timeout") != nil && flags.Changed("resolve-timeout") {
		s.cfg.Resolver.Timeout, _ = flags.GetDuration("resolve-timeout")
	}
	if flags.Lookup("resolve-jobs") != nil && flags.Changed("resolve-jobs") {
		s.cfg.Resolver.Jobs, _ = flags.GetInt("resolve-jobs")
	}
	if flags.Lookup("no-cache") != nil {
		if noCache, _ := flags.GetBool("no-cache"); noCache {
			s.cfg.Cache.Persistent = false
		}
	}
	if flags.Lookup("ui") != nil && flags.Changed("ui") {
		s.cfg.UI.Mode, _ = flags.GetString("ui")
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "auto", "trace prefix layout (auto|bare|pid|ts|pid+ts)")
	cmd.Flags().Int("detect-lines", parser.DefaultDetectLines, "lines sampled for format detection")
}

func addResolverFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr2line", symbolize.DefaultTool, "symbolizer tool")
	cmd.Flags().Duration("resolve-timeout", symbolize.DefaultTimeout, "timeout per symbolizer call")
	cmd.Flags().Int("resolve-jobs", 0, "parallel symbolizer calls (0=auto)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the persistent resolution cache")
}

func (s *settings) parseOptions() (parser.Options, error) {
	opts := parser.Options{DetectLines: s.cfg.Parse.DetectLines}
	mode, ok, err := parser.ParseMode(s.cfg.Parse.Mode)
	if err != nil {
		return opts, err
	}
	if ok {
		opts.Hint = &mode
	}
	return opts, nil
}

// newResolver builds the resolver. An unusable cache directory is not
// fatal: resolution continues with the in-memory cache only.
func (s *settings) newResolver(cmd *cobra.Command) *symbolize.Resolver {
	sym := &symbolize.Addr2Line{Tool: s.cfg.Resolver.Tool, Timeout: s.cfg.Resolver.Timeout}
	var disk *symbolize.DiskCache
	if s.cfg.Cache.Persistent {
		var err error
		disk, err = symbolize.OpenDiskCache(appName, s.cfg.Cache.Dir)
		if err != nil {
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: resolution cache disabled: %v\n", err)
			}
			disk = nil
		}
	}
	return symbolize.NewResolver(sym, disk)
}

func (s *settings) uiMode() (uiMode, error) {
	return readUIMode(s.cfg.UI.Mode)
}

func openOutput(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}
