package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for notices that need no action (e.g. format hint overridden).
	SevInfo Severity = iota
	// SevWarning marks protocol violations the parser recovered from.
	SevWarning
	// SevError marks lines that produced no record.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
