package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"stracetui/internal/model"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] BINARY ADDRESS...",
	Short: "Resolve addresses of a binary to source locations",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runResolve,
}

func init() {
	addResolverFlags(resolveCmd)
	resolveCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type resolvedAddress struct {
	Address  string                  `json:"address"`
	Location *model.ResolvedLocation `json:"location"`
	Error    string                  `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	binary := args[0]
	resolver := s.newResolver(cmd)
	out := make([]resolvedAddress, 0, len(args)-1)
	failed := 0
	for _, addr := range args[1:] {
		loc, err := resolver.Resolve(cmd.Context(), binary, addr)
		item := resolvedAddress{Address: addr, Location: loc}
		if err != nil {
			item.Error = err.Error()
			failed++
		}
		out = append(out, item)
	}
	if err := resolver.Flush(); err != nil && !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not persist resolution cache: %v\n", err)
	}
	if s.timings {
		printResolverStats(cmd.ErrOrStderr(), resolver)
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, item := range out {
			if item.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", item.Address, item.Error)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", item.Address, item.Location.String())
		}
	}
	if failed == len(out) {
		return fmt.Errorf("no address of %s could be resolved", binary)
	}
	return nil
}
