package diag

import "fmt"

// Diagnostic is one finding tied to a line of the trace input.
// Line is 1-based; 0 means the diagnostic is not tied to an input line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Line     int
	Message  string
	Raw      string
}

func New(sev Severity, code Code, line int, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Message:  msg,
	}
}

func NewError(code Code, line int, msg string) Diagnostic {
	return New(SevError, code, line, msg)
}

// WithRaw attaches the offending input line.
func (d Diagnostic) WithRaw(raw string) Diagnostic {
	d.Raw = raw
	return d
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s %s: %s", d.Line, d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
}
