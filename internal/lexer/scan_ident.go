package lexer

// ScanIdent consumes a syscall name. It returns "" and leaves the cursor in
// place when the unread text does not start with an identifier byte.
func ScanIdent(c *Cursor) string {
	m := c.Mark()
	for !c.EOF() && isIdentByte(c.Peek()) {
		c.Bump()
	}
	return c.SliceFrom(m)
}

// ScanErrno consumes a symbolic errno name such as ENOENT.
func ScanErrno(c *Cursor) string {
	if !isUpper(c.Peek()) {
		return ""
	}
	m := c.Mark()
	for !c.EOF() && isErrnoByte(c.Peek()) {
		c.Bump()
	}
	return c.SliceFrom(m)
}

// ScanWord consumes bytes up to the next blank.
func ScanWord(c *Cursor) string {
	m := c.Mark()
	for !c.EOF() && !isSpace(c.Peek()) {
		c.Bump()
	}
	return c.SliceFrom(m)
}
