package lexer

// SkipQuoted consumes a "..." string starting at the cursor, honouring
// backslash escapes. It returns false when the line ends before the closing
// quote; the cursor is then at EOF.
func (c *Cursor) SkipQuoted() bool {
	if !c.Eat('"') {
		return false
	}
	for !c.EOF() {
		switch c.Bump() {
		case '\\':
			// экранированный символ (включая \") пропускаем целиком
			c.Bump()
		case '"':
			return true
		}
	}
	return false
}
