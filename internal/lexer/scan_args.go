package lexer

import "strings"

// UnfinishedMarker ends the first half of a call split across two lines.
const UnfinishedMarker = "<unfinished ...>"

// ArgsStop tells why ScanArgs stopped.
type ArgsStop uint8

const (
	// ArgsClosed: the matching ')' was found and consumed.
	ArgsClosed ArgsStop = iota
	// ArgsUnfinished: `<unfinished` was found outside a string; the cursor is
	// left on it.
	ArgsUnfinished
	// ArgsUnterminated: the line ended with parentheses still open.
	ArgsUnterminated
	// ArgsUnterminatedString: the line ended inside a quoted string.
	ArgsUnterminatedString
)

func (s ArgsStop) String() string {
	switch s {
	case ArgsClosed:
		return "closed"
	case ArgsUnfinished:
		return "unfinished"
	case ArgsUnterminated:
		return "unterminated"
	case ArgsUnterminatedString:
		return "unterminated string"
	}
	return "unknown"
}

// ScanArgs consumes argument text up to the parenthesis that closes an
// already opened list. Nested parentheses are balanced and anything inside
// "..." is skipped, so `"a)b"` or `{st_mode=S_IFREG|0644, ...}` do not end
// the list. The returned text excludes the closing parenthesis.
func ScanArgs(c *Cursor) (string, ArgsStop) {
	start := c.Mark()
	depth := 1
	for !c.EOF() {
		switch c.Peek() {
		case '"':
			if !c.SkipQuoted() {
				return c.SliceFrom(start), ArgsUnterminatedString
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				text := c.SliceFrom(start)
				c.Bump()
				return text, ArgsClosed
			}
		case '<':
			if c.HasPrefix("<unfinished") {
				return c.SliceFrom(start), ArgsUnfinished
			}
		}
		c.Bump()
	}
	return c.SliceFrom(start), ArgsUnterminated
}

// ScanGroup consumes a parenthesised group such as the errno message
// `(No such file or directory)` and returns its inner text.
func ScanGroup(c *Cursor) (string, bool) {
	m := c.Mark()
	if !c.Eat('(') {
		return "", false
	}
	text, stop := ScanArgs(c)
	if stop != ArgsClosed {
		c.Reset(m)
		return "", false
	}
	return text, true
}

// JoinArgs glues the argument text printed before `<unfinished ...>` to the
// text printed after `<... name resumed>`. Trailing blanks of the first half
// are dropped; a single space separates the halves when the second one does
// not start with its own.
func JoinArgs(pre, post string) string {
	pre = strings.TrimRight(pre, " \t")
	switch {
	case pre == "":
		return strings.TrimLeft(post, " \t")
	case post == "":
		return pre
	case isSpace(post[0]):
		return pre + post
	}
	return pre + " " + post
}
