package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stracetui/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] [trace...]",
	Short: "Parse strace logs and export the records",
	Long: `Parse one or more strace logs (standard input when none or "-" is given)
and export records, a summary and the parse diagnostics. Inputs are parsed in
parallel. With --resolve every backtrace frame is symbolized before export.`,
	Args: cobra.ArbitraryArgs,
	RunE: runParse,
}

func init() {
	addExportFlags(parseCmd)
	addParseFlags(parseCmd)
	addResolverFlags(parseCmd)
	parseCmd.Flags().Bool("resolve", false, "resolve backtrace frames to source locations")
	parseCmd.Flags().Int("jobs", 0, "max parallel inputs (0=auto)")
	parseCmd.Flags().String("ui", "auto", "progress UI while resolving (auto|on|off)")
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	opts, diags, err := readExportOptions(cmd)
	if err != nil {
		return err
	}
	resolve, err := cmd.Flags().GetBool("resolve")
	if err != nil {
		return fmt.Errorf("failed to get resolve flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{driver.StdinPath}
	}
	results, err := parseTraces(cmd, s, paths, jobs, resolve)
	if err != nil {
		return err
	}
	return finishExport(cmd, s, results, opts, diags)
}

// parseTraces runs the pipeline over paths, with the progress UI when
// resolving on a terminal.
func parseTraces(cmd *cobra.Command, s *settings, paths []string, jobs int, resolve bool) ([]driver.FileResult, error) {
	parseOpts, err := s.parseOptions()
	if err != nil {
		return nil, err
	}
	req := driver.Request{
		Paths: paths,
		Stdin: cmd.InOrStdin(),
		Parse: parseOpts,
		Jobs:  jobs,
	}
	if resolve {
		req.Resolver = s.newResolver(cmd)
		req.ResolveJobs = s.cfg.Resolver.Jobs
	}

	mode, err := s.uiMode()
	if err != nil {
		return nil, err
	}
	if resolve && !s.quiet && shouldUseTUI(mode) {
		return runPipelineWithUI(cmd.Context(), "stracetui parse", &req)
	}
	return driver.Run(cmd.Context(), &req)
}

// finishExport prints diagnostics and timings, writes the exports and
// fails when an input could not be read.
func finishExport(cmd *cobra.Command, s *settings, results []driver.FileResult, opts exportOptions, diags diagFormat) error {
	if err := reportDiagnostics(cmd, s, diags, results); err != nil {
		return err
	}
	if err := writeExports(cmd, s, results, opts); err != nil {
		return err
	}
	if s.timings {
		printStageTimings(os.Stderr, results)
	}
	if !s.quiet {
		for _, r := range results {
			if st := r.Resolve; st.Keys > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d frames, %d addresses: %d resolved, %d unknown, %d failed\n",
					displayName(r.Path), st.Frames, st.Keys, st.Resolved, st.Unresolved, st.Failed)
			}
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", displayName(r.Path), r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d input(s) could not be read", failed, len(results))
	}
	return nil
}
