package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stracetui/internal/spawn"
	"stracetui/internal/symbolize"
	"stracetui/internal/version"
)

// toolStatus is where an external program the CLI shells out to was found.
type toolStatus struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

type buildReport struct {
	Tool      string       `json:"tool"`
	Version   string       `json:"version"`
	GitCommit string       `json:"git_commit,omitempty"`
	BuildDate string       `json:"build_date,omitempty"`
	Go        string       `json:"go"`
	Tools     []toolStatus `json:"tools,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show stracetui build information",
	Long: `Show the stracetui version. With --tools, also report where strace and the
backtrace symbolizer were found in $PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		withTools, _ := cmd.Flags().GetBool("tools")

		rep := buildReport{
			Tool:      "stracetui",
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildDate: version.BuildDate,
			Go:        runtime.Version(),
		}
		if withTools {
			rep.Tools = lookupTools(spawn.DefaultStrace, symbolize.DefaultTool)
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		case "pretty":
			writeBuildReport(cmd.OutOrStdout(), &rep)
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("tools", false, "report strace and addr2line locations")
}

func lookupTools(names ...string) []toolStatus {
	out := make([]toolStatus, 0, len(names))
	for _, name := range names {
		st := toolStatus{Name: name}
		if path, err := exec.LookPath(name); err == nil {
			st.Path = path
		}
		out = append(out, st)
	}
	return out
}

func writeBuildReport(w io.Writer, rep *buildReport) {
	fmt.Fprintf(w, "stracetui %s\n", version.Colored())
	if rep.GitCommit != "" || rep.BuildDate != "" {
		fmt.Fprintln(w, version.Full())
	}
	fmt.Fprintf(w, "go:       %s\n", rep.Go)
	missing := color.New(color.FgRed)
	for _, t := range rep.Tools {
		if t.Path == "" {
			fmt.Fprintf(w, "%-9s %s\n", t.Name+":", missing.Sprint("not found"))
			continue
		}
		fmt.Fprintf(w, "%-9s %s\n", t.Name+":", t.Path)
	}
}
