package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stracetui/internal/driver"
	"stracetui/internal/symbolize"
)

var viewCmd = &cobra.Command{
	Use:   "view [flags] [trace]",
	Short: "Browse a strace log interactively",
	Long: `Open a strace log (standard input when omitted) in the terminal viewer.
Expanding a backtrace resolves its frames in the background; press r to
resolve the current entry, R for all of them and ? for the key list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	addParseFlags(viewCmd)
	addResolverFlags(viewCmd)
	viewCmd.Flags().Bool("no-resolve", false, "never run the symbolizer")
}

func runView(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := driver.StdinPath
	if len(args) == 1 {
		path = args[0]
	}
	noResolve, err := cmd.Flags().GetBool("no-resolve")
	if err != nil {
		return fmt.Errorf("failed to get no-resolve flag: %w", err)
	}
	return viewTrace(cmd, s, path, !noResolve)
}

// viewTrace parses path and hands the records to the viewer. Diagnostics are
// printed once the viewer has closed.
func viewTrace(cmd *cobra.Command, s *settings, path string, resolve bool) error {
	results, err := parseTraces(cmd, s, []string{path}, 1, false)
	if err != nil {
		return err
	}
	res := results[0]
	if res.Err != nil && len(res.Result.Records) == 0 {
		return fmt.Errorf("%s: %w", displayName(path), res.Err)
	}

	var resolver *symbolize.Resolver
	if resolve {
		resolver = s.newResolver(cmd)
	}
	title := displayName(path)
	if path != driver.StdinPath {
		title = filepath.Base(path)
	}
	if err := runViewer(cmd.Context(), title, res.Result.Records, resolver, path == driver.StdinPath); err != nil {
		return err
	}
	if resolver != nil {
		if err := resolver.Flush(); err != nil && !s.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not persist resolution cache: %v\n", err)
		}
		if s.timings {
			printResolverStats(cmd.ErrOrStderr(), resolver)
		}
	}
	if err := reportDiagnostics(cmd, s, diagPretty, results); err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("%s: %w", displayName(path), res.Err)
	}
	return nil
}
