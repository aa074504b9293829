package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stracetui/internal/spawn"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] -- command [args...]",
	Short: "Run a command under strace and export or view the result",
	Long: `Run the command under strace -f -tt -k and then export the records like
"parse" does, or open them in the viewer with --view. The trace file is
removed afterwards unless --save is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().SetInterspersed(false)
	addExportFlags(traceCmd)
	addParseFlags(traceCmd)
	addResolverFlags(traceCmd)
	traceCmd.Flags().String("strace", spawn.DefaultStrace, "strace binary")
	traceCmd.Flags().StringArray("strace-arg", nil, "extra strace argument (repeatable)")
	traceCmd.Flags().String("save", "", "keep the raw trace in this file")
	traceCmd.Flags().Bool("view", false, "open the viewer instead of exporting")
	traceCmd.Flags().Bool("resolve", false, "resolve backtrace frames before export")
	traceCmd.Flags().String("ui", "auto", "progress UI while resolving (auto|on|off)")
}

func runTrace(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	exportOpts, diags, err := readExportOptions(cmd)
	if err != nil {
		return err
	}

	opts := spawn.Options{
		Strace:    s.cfg.Trace.Strace,
		ExtraArgs: append([]string(nil), s.cfg.Trace.Args...),
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	}
	if cmd.Flags().Changed("strace") {
		if opts.Strace, err = cmd.Flags().GetString("strace"); err != nil {
			return fmt.Errorf("failed to get strace flag: %w", err)
		}
	}
	extra, err := cmd.Flags().GetStringArray("strace-arg")
	if err != nil {
		return fmt.Errorf("failed to get strace-arg flag: %w", err)
	}
	opts.ExtraArgs = append(opts.ExtraArgs, extra...)
	if opts.Output, err = cmd.Flags().GetString("save"); err != nil {
		return fmt.Errorf("failed to get save flag: %w", err)
	}
	view, err := cmd.Flags().GetBool("view")
	if err != nil {
		return fmt.Errorf("failed to get view flag: %w", err)
	}
	resolve, err := cmd.Flags().GetBool("resolve")
	if err != nil {
		return fmt.Errorf("failed to get resolve flag: %w", err)
	}
	// вывод программы не должен смешиваться с экспортом в stdout
	if !view && (exportOpts.output == "" || exportOpts.output == "-") {
		opts.Stdout = cmd.ErrOrStderr()
	}

	res, err := spawn.Run(cmd.Context(), opts, args)
	if err != nil {
		return err
	}
	if res.Temporary {
		defer os.Remove(res.TracePath)
	}
	if res.ExitCode != 0 && !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s exited with status %d\n", args[0], res.ExitCode)
	}

	if view {
		return viewTrace(cmd, s, res.TracePath, true)
	}
	results, err := parseTraces(cmd, s, []string{res.TracePath}, 1, resolve)
	if err != nil {
		return err
	}
	return finishExport(cmd, s, results, exportOpts, diags)
}
