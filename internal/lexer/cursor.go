// Package lexer holds the byte-level scanners used to take apart one line of
// tracer output: a cursor over the line, quoted strings, balanced argument
// lists, identifiers, numbers and timestamps.
package lexer

import "strings"

// Cursor представляет собой позицию в строке
type Cursor struct {
	Text string
	Off  int
}

// NewCursor creates a cursor at the start of text.
func NewCursor(text string) Cursor {
	return Cursor{Text: text}
}

// EOF проверяет, достигнут ли конец строки
func (c *Cursor) EOF() bool {
	return c.Off >= len(c.Text)
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Text[c.Off]
}

// Peek2 читает текущий и следующий байт, если есть, иначе возвращает 0, 0, false
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= len(c.Text) {
		return 0, 0, false
	}
	return c.Text[c.Off], c.Text[c.Off+1], true
}

// Bump перемещает курсор на один байт вперед и возвращает прочитанный байт
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.Text[c.Off]
	c.Off++
	return b
}

// Mark это метка, что бы быстро получать срез читаемого фрагмента
type Mark int

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SliceFrom возвращает текст от метки до текущей позиции
func (c *Cursor) SliceFrom(m Mark) string {
	return c.Text[m:c.Off]
}

// Reset возвращает курсор назад к метке
func (c *Cursor) Reset(m Mark) {
	c.Off = int(m)
}

// Eat consumes the next byte if it matches the provided byte.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.Text[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// HasPrefix reports whether the unread text starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	return strings.HasPrefix(c.Text[c.Off:], s)
}

// EatString consumes s if the unread text starts with it.
func (c *Cursor) EatString(s string) bool {
	if c.HasPrefix(s) {
		c.Off += len(s)
		return true
	}
	return false
}

// SkipSpaces consumes blanks and tabs and returns how many were skipped.
func (c *Cursor) SkipSpaces() int {
	start := c.Off
	for !c.EOF() && isSpace(c.Text[c.Off]) {
		c.Off++
	}
	return c.Off - start
}

// Rest returns the unread text without consuming it.
func (c *Cursor) Rest() string {
	return c.Text[c.Off:]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
