package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stracetui/internal/diagfmt"
	"stracetui/internal/driver"
)

type diagFormat string

const (
	diagPretty diagFormat = "pretty"
	diagJSON   diagFormat = "json"
	diagNone   diagFormat = "none"
)

func readDiagFormat(value string) (diagFormat, error) {
	switch diagFormat(value) {
	case diagPretty, diagJSON, diagNone:
		return diagFormat(value), nil
	case "":
		return diagPretty, nil
	}
	return "", fmt.Errorf("invalid --diagnostics value %q (expected pretty|json|none)", value)
}

// reportDiagnostics prints the diagnostics of every result to stderr.
func reportDiagnostics(cmd *cobra.Command, s *settings, format diagFormat, results []driver.FileResult) error {
	if format == diagNone {
		return nil
	}
	useColorOut, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	for _, r := range results {
		bag := r.Result.Bag
		if bag == nil || bag.Len() == 0 {
			continue
		}
		bag.Sort()
		path := ""
		if r.Path != driver.StdinPath {
			path = r.Path
		}
		switch format {
		case diagJSON:
			if err := diagfmt.JSON(out, bag, path, diagfmt.JSONOpts{Max: s.maxDiagnostics}); err != nil {
				return err
			}
		default:
			if s.quiet && !bag.HasErrors() {
				continue
			}
			diagfmt.Pretty(out, bag, path, diagfmt.PrettyOpts{
				Color:   useColorOut,
				ShowRaw: true,
				Max:     s.maxDiagnostics,
			})
			if !s.quiet {
				fmt.Fprintf(out, "%s: ", displayName(r.Path))
				diagfmt.Summary(out, bag)
			}
		}
	}
	return nil
}
