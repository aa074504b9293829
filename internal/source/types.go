package source

// Flags records normalizations applied while reading an input.
type Flags uint8

const (
	// HadBOM is set when the first line started with a UTF-8 byte order mark.
	HadBOM Flags = 1 << iota
	// NormalizedCRLF is set when at least one line ended with \r\n.
	NormalizedCRLF
)

// Line is one input line without its terminator.
type Line struct {
	Num  int // 1-based
	Text string
}
