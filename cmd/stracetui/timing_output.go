package main

import (
	"fmt"
	"io"

	"stracetui/internal/driver"
	"stracetui/internal/observ"
	"stracetui/internal/symbolize"
)

func printStageTimings(out io.Writer, results []driver.FileResult) {
	if out == nil {
		return
	}
	if len(results) > 1 {
		run := observ.NewTimer()
		for _, r := range results {
			run.Merge(displayName(r.Path)+"/", r.Timing)
		}
		if err := run.Report().WriteTable(out); err != nil {
			panic(err)
		}
		return
	}
	for _, r := range results {
		for _, phase := range r.Timing.Phases {
			if _, err := fmt.Fprintf(out, "%s %s %.1f ms\n", displayName(r.Path), phaseVerb(phase.Name), phase.DurationMS); err != nil {
				panic(err)
			}
		}
	}
}

func phaseVerb(name string) string {
	switch name {
	case "parse":
		return "parsed"
	case "resolve":
		return "resolved"
	default:
		return name
	}
}

func displayName(path string) string {
	if path == driver.StdinPath {
		return "<stdin>"
	}
	return path
}

func printResolverStats(out io.Writer, r *symbolize.Resolver) {
	hits, misses := r.Cache().Stats()
	fmt.Fprintf(out, "resolver: %d cached, %d looked up, %d symbolizer calls\n", hits, misses, r.Invocations())
}
