package diag

// Reporter: минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), NopReporter, DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, line int, msg, raw string)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, line int, msg, raw string) {
	if r != nil {
		r.Report(code, SevError, line, msg, raw)
	}
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, line int, msg, raw string) {
	if r != nil {
		r.Report(code, SevWarning, line, msg, raw)
	}
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, line int, msg, raw string) {
	if r != nil {
		r.Report(code, SevInfo, line, msg, raw)
	}
}

// ReportDiagnostic forwards an already built diagnostic.
func ReportDiagnostic(r Reporter, d Diagnostic) {
	if r != nil {
		r.Report(d.Code, d.Severity, d.Line, d.Message, d.Raw)
	}
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, line int, msg, raw string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Line: line,
		Message: msg, Raw: raw,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, int, string, string) {}
