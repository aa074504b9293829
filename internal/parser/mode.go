package parser

import (
	"fmt"
	"strings"
)

// Mode tells which prefix columns precede the record body on every line.
type Mode struct {
	HasPID       bool
	HasTimestamp bool
}

var (
	ModeBare      = Mode{}
	ModePID       = Mode{HasPID: true}
	ModeTimestamp = Mode{HasTimestamp: true}
	ModeFull      = Mode{HasPID: true, HasTimestamp: true}
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "pid+ts"
	case ModePID:
		return "pid"
	case ModeTimestamp:
		return "ts"
	default:
		return "bare"
	}
}

// ParseMode converts a --mode value. "auto" (or "") yields ok=false: no hint.
func ParseMode(s string) (mode Mode, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Mode{}, false, nil
	case "bare", "none":
		return ModeBare, true, nil
	case "pid":
		return ModePID, true, nil
	case "ts", "timestamp":
		return ModeTimestamp, true, nil
	case "pid+ts", "full":
		return ModeFull, true, nil
	}
	return Mode{}, false, fmt.Errorf("invalid mode %q (expected auto|bare|pid|ts|pid+ts)", s)
}
