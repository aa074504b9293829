// Package diag defines the diagnostic model shared by the parser, the
// resolver and the CLI.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for everything that went
//     wrong while reading a trace: unrecognised lines, protocol violations of
//     the unfinished/resumed encoding, malformed backtrace frames and failed
//     symbolizer invocations.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting or IO. Rendering lives in
// internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string ID (TRC1001, RES4001, ...).
//   - Line – 1-based input line, 0 when the finding is not tied to a line.
//   - Message – short human oriented text.
//   - Raw – the offending input line, verbatim.
//
// Line-level parse errors are SevError, protocol violations of the
// unfinished/resumed encoding are SevWarning, notices are SevInfo. None of
// them abort a parse; the Bag used by the parser is unbounded and
// append-only.
package diag
