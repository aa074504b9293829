// Package trace is the event tracer used to follow what stracetui is doing:
// which inputs are parsed, how the prefix mode was detected, which frames go
// to the symbolizer and how long each step takes.
//
// Tracing is enabled from the command line:
//
//	stracetui parse --trace=- --trace-level=detail run.trace
//	stracetui view --trace=resolve.ndjson --trace-mode=ring run.trace
//
// The tracer travels in the context. Spans nest through the context too, and
// every event records the input file the work belongs to:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithFile(ctx, "run.trace")
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
//	trace.Point(ctx, trace.ScopeFile, "detect", "mode=pid+ts")
//
// Levels select scopes: phase shows driver and pass spans, detail adds
// per-file events, debug adds every symbolizer lookup. A heartbeat reports
// the oldest span still open, which is how a hung addr2line shows up.
package trace
