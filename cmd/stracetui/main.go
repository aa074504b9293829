package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stracetui/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "stracetui",
	Short: "Parse, symbolize and browse strace logs",
	Long: `stracetui reads strace output (with or without -f, -tt and -k), rebuilds
the call sequence, resolves backtrace frames to source lines and exports
the result as JSON, MessagePack or text, or opens it in a terminal viewer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopProfiling)
		stopTracing, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopTracing)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runCleanups()
	},
}

// cleanups stop the tracer and profilers started for the running command.
var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// main registers subcommands and persistent flags and executes the root
// command. Any command error exits with status 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	registerRootFlags(rootCmd)

	err := rootCmd.Execute()
	// PersistentPostRun is skipped when RunE fails
	runCleanups()
	if err != nil {
		os.Exit(1)
	}
}

// registerRootFlags adds the persistent flags every subcommand reads.
func registerRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().Bool("timings", false, "show timing information")
	cmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	cmd.PersistentFlags().String("config", "", "config file (default: nearest stracetui.toml)")

	cmd.PersistentFlags().String("trace", "", "write internal trace events to file (- for stderr)")
	cmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	cmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	cmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	cmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
	cmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")

	cmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	cmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor applies --color to output written to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}
