package lexer

// ScanDigits consumes a run of decimal digits.
func ScanDigits(c *Cursor) string {
	m := c.Mark()
	for !c.EOF() && isDec(c.Peek()) {
		c.Bump()
	}
	return c.SliceFrom(m)
}

// ScanReturn consumes a syscall return value: `0x` hex, signed decimal,
// `NULL`, or `?` (no return, e.g. exit_group or an interrupted call).
// Anything after the value (`-y` path decorations, `<0.000012>`, flag
// annotations) is left unread.
func ScanReturn(c *Cursor) (string, bool) {
	m := c.Mark()
	switch {
	case c.EatString("0x"):
		if !isHex(c.Peek()) {
			c.Reset(m)
			return "", false
		}
		for !c.EOF() && isHex(c.Peek()) {
			c.Bump()
		}
		return c.SliceFrom(m), true

	case c.EatString("NULL"):
		return c.SliceFrom(m), true

	case c.Eat('?'):
		return c.SliceFrom(m), true
	}

	c.Eat('-')
	if ScanDigits(c) == "" {
		c.Reset(m)
		return "", false
	}
	return c.SliceFrom(m), true
}

// ScanTimestamp consumes a timestamp in one of the forms strace prints:
// `HH:MM:SS` (-t), `HH:MM:SS.ffffff` (-tt), `SECONDS.ffffff` (-ttt, -r).
// A bare integer is not a timestamp: it would be indistinguishable from a pid.
func ScanTimestamp(c *Cursor) (string, bool) {
	m := c.Mark()
	if ScanDigits(c) == "" {
		return "", false
	}
	if c.Eat(':') {
		if len(ScanDigits(c)) == 0 || !c.Eat(':') || len(ScanDigits(c)) == 0 {
			c.Reset(m)
			return "", false
		}
		if c.Eat('.') && ScanDigits(c) == "" {
			c.Reset(m)
			return "", false
		}
		return c.SliceFrom(m), true
	}
	if !c.Eat('.') || ScanDigits(c) == "" {
		c.Reset(m)
		return "", false
	}
	return c.SliceFrom(m), true
}

// ScanPID consumes a pid prefix, either a bare number or `[pid N]` as printed
// on a terminal for every process but the first. It returns the digits.
func ScanPID(c *Cursor) (string, bool) {
	m := c.Mark()
	if c.EatString("[pid") {
		c.SkipSpaces()
		digits := ScanDigits(c)
		if digits == "" || !c.Eat(']') {
			c.Reset(m)
			return "", false
		}
		return digits, true
	}
	digits := ScanDigits(c)
	if digits == "" {
		return "", false
	}
	return digits, true
}
