package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Построчные ошибки разбора
	TrcInfo                Code = 1000
	TrcUnrecognizedLine    Code = 1001
	TrcUnterminatedArgs    Code = 1002
	TrcUnterminatedString  Code = 1003
	TrcMalformedReturn     Code = 1004
	TrcMalformedResumed    Code = 1005
	TrcMalformedSignal     Code = 1006
	TrcMalformedExit       Code = 1007
	TrcMalformedPrefix     Code = 1008
	TrcModeHintMismatch    Code = 1009
	TrcOrphanResumed       Code = 2001
	TrcResumedNameMismatch Code = 2002
	TrcDuplicateUnfinished Code = 2003
	TrcIncompleteAtEOF     Code = 2004
	TrcIncompleteAtExit    Code = 2005
	TrcOrphanBacktrace     Code = 2006

	// Кадры стека
	BtInfo            Code = 3000
	BtMalformedFrame  Code = 3001
	BtMissingOffset   Code = 3002
	BtMissingFunction Code = 3003
	BtBadAddress      Code = 3004

	// Символизация
	ResInfo             Code = 4000
	ResToolMissing      Code = 4001
	ResToolFailed       Code = 4002
	ResMalformedOutput  Code = 4003
	ResTimeout          Code = 4004
	ResCacheUnavailable Code = 4005

	IOReadError Code = 5001
	IOOpenError Code = 5002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		TrcInfo:                "Trace information",
		TrcUnrecognizedLine:    "Unrecognized trace line",
		TrcUnterminatedArgs:    "Unterminated argument list",
		TrcUnterminatedString:  "Unterminated string in arguments",
		TrcMalformedReturn:     "Malformed return value",
		TrcMalformedResumed:    "Malformed resumed line",
		TrcMalformedSignal:     "Malformed signal line",
		TrcMalformedExit:       "Malformed exit line",
		TrcMalformedPrefix:     "Malformed pid/timestamp prefix",
		TrcModeHintMismatch:    "Detected format differs from requested format",
		TrcOrphanResumed:       "Resumed call without unfinished call",
		TrcResumedNameMismatch: "Resumed call name differs from unfinished call",
		TrcDuplicateUnfinished: "Second unfinished call for the same pid",
		TrcIncompleteAtEOF:     "Unfinished call never resumed",
		TrcIncompleteAtExit:    "Unfinished call interrupted by process exit",
		TrcOrphanBacktrace:     "Backtrace frame without preceding call",
		BtInfo:                 "Backtrace information",
		BtMalformedFrame:       "Malformed backtrace frame",
		BtMissingOffset:        "Backtrace function without offset",
		BtMissingFunction:      "Backtrace offset without function",
		BtBadAddress:           "Malformed backtrace address",
		ResInfo:                "Resolution information",
		ResToolMissing:         "Symbolizer not found",
		ResToolFailed:          "Symbolizer failed",
		ResMalformedOutput:     "Malformed symbolizer output",
		ResTimeout:             "Symbolizer timed out",
		ResCacheUnavailable:    "Resolution cache unavailable",
		IOReadError:            "I/O read error",
		IOOpenError:            "I/O open error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return fmt.Sprintf("TRC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
