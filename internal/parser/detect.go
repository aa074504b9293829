package parser

// DefaultDetectLines is how many record lines the detector looks at.
const DefaultDetectLines = 20

// detectOrder lists the modes strictest first: a line that carries both
// columns also parses (badly) under the looser modes, never the reverse.
var detectOrder = [...]Mode{ModeFull, ModePID, ModeTimestamp, ModeBare}

// Detect decides the prefix mode from a sample of lines. Each non-blank,
// non-backtrace line votes for the strictest mode under which it parses as a
// record; the mode with most votes wins and ties go to the mode of the first
// line that matched anything.
//
// Detection fails open: when no line matches, the hint (if any) or ModeBare
// is returned with detected=false and per-line errors surface later. The hint
// never overrides a successful detection.
func Detect(lines []string, hint *Mode) (mode Mode, detected bool) {
	var votes [len(detectOrder)]int
	first := -1
	for _, text := range lines {
		if isBlank(text) || isBacktrace(text) {
			continue
		}
		for i, m := range detectOrder {
			if matchesMode(text, m) {
				votes[i]++
				if first < 0 {
					first = i
				}
				break
			}
		}
	}
	if first < 0 {
		if hint != nil {
			return *hint, false
		}
		return ModeBare, false
	}

	best := first
	for i := range votes {
		if votes[i] > votes[best] {
			best = i
		}
	}
	return detectOrder[best], true
}

func matchesMode(text string, m Mode) bool {
	line, err := classify(text, m, true)
	return err == nil && line.Kind != KindUnrecognized && line.Kind != KindBacktrace
}
