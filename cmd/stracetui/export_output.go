package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stracetui/internal/driver"
	"stracetui/internal/export"
)

type exportOptions struct {
	output     string
	format     export.Format
	compact    bool
	backtraces bool
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "write the export here (a directory when several inputs are given)")
	cmd.Flags().String("format", "json", "export format (json|msgpack|text)")
	cmd.Flags().Bool("compact", false, "single-line JSON")
	cmd.Flags().Bool("backtraces", true, "include backtrace frames in text output")
	cmd.Flags().String("diagnostics", "pretty", "diagnostics on stderr (pretty|json|none)")
}

func readExportOptions(cmd *cobra.Command) (exportOptions, diagFormat, error) {
	var opts exportOptions
	var err error
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, "", fmt.Errorf("failed to get output flag: %w", err)
	}
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, "", fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format, err = export.ParseFormat(formatStr); err != nil {
		return opts, "", err
	}
	if opts.compact, err = cmd.Flags().GetBool("compact"); err != nil {
		return opts, "", fmt.Errorf("failed to get compact flag: %w", err)
	}
	if opts.backtraces, err = cmd.Flags().GetBool("backtraces"); err != nil {
		return opts, "", fmt.Errorf("failed to get backtraces flag: %w", err)
	}
	diagStr, err := cmd.Flags().GetString("diagnostics")
	if err != nil {
		return opts, "", fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	diags, err := readDiagFormat(diagStr)
	if err != nil {
		return opts, "", err
	}
	return opts, diags, nil
}

// writeExports writes one document per readable result. With several inputs
// and an --output, the output is a directory holding <input>.<ext> files.
func writeExports(cmd *cobra.Command, s *settings, results []driver.FileResult, opts exportOptions) error {
	multi := len(results) > 1
	if multi && opts.output != "" && opts.output != "-" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for _, r := range results {
		if r.Err != nil && len(r.Result.Records) == 0 {
			continue
		}
		target := opts.output
		if multi && target != "" && target != "-" {
			target = filepath.Join(opts.output, exportName(r.Path, opts.format))
		}
		if err := writeOne(cmd, s, r, target, multi, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(cmd *cobra.Command, s *settings, r driver.FileResult, target string, multi bool, opts exportOptions) error {
	f, closeFn, err := openOutput(target)
	if err != nil {
		return err
	}
	doc := export.Build(r.Result.Records, r.Result.Bag)

	var werr error
	switch opts.format {
	case export.FormatJSON:
		werr = export.WriteJSON(f, &doc, !opts.compact)
	case export.FormatText:
		colorOn, cerr := useColor(cmd, f)
		if cerr != nil {
			closeFn()
			return cerr
		}
		if multi && f == os.Stdout && !s.quiet {
			fmt.Fprintf(f, "== %s ==\n", displayName(r.Path))
		}
		werr = export.WriteText(f, &doc, export.TextOpts{
			Color:      colorOn,
			Backtraces: opts.backtraces,
			Summary:    !s.quiet,
		})
	default:
		werr = export.Write(f, &doc, opts.format, export.TextOpts{})
	}
	if cerr := closeFn(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("%s: export failed: %w", displayName(r.Path), werr)
	}
	return nil
}

func exportName(path string, format export.Format) string {
	base := "stdin"
	if path != driver.StdinPath {
		base = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	switch format {
	case export.FormatMsgpack:
		return base + ".msgpack"
	case export.FormatText:
		return base + ".txt"
	default:
		return base + ".json"
	}
}
