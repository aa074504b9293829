package diag

type dedupKey struct {
	code Code
	sev  Severity
	line int
	msg  string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, line and message. The resolver uses it so a
// broken symbolizer is reported once per binary rather than once per frame.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, line int, msg, raw string) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, sev: sev, line: line, msg: msg}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, line, msg, raw)
	}
}
