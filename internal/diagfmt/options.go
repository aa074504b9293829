package diagfmt

// PathMode specifies how the input path is displayed.
type PathMode uint8

const (
	// PathModeAuto shortens long absolute paths to their basename.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	Width    uint8 // максимальная ширина строки, 0 - не ограничено
	ShowRaw  bool  // печатать исходную строку трассы под сообщением
	Max      int   // обрезка вывода, не Bag
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	Max      int // обрезка вывода, не Bag
}
