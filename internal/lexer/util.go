package lexer

func isDec(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return isDec(b) || (b|0x20) >= 'a' && (b|0x20) <= 'f'
}
func isLetter(b byte) bool { return (b|0x20) >= 'a' && (b|0x20) <= 'z' }
func isUpper(b byte) bool  { return b >= 'A' && b <= 'Z' }

// isIdentByte covers syscall names as strace prints them, including
// `_llseek`, `syscall_0x1c3` and `$` in some architecture aliases.
func isIdentByte(b byte) bool { return isLetter(b) || isDec(b) || b == '_' || b == '$' }

// isErrnoByte covers symbolic errno names (ENOENT, ERESTART_RESTARTBLOCK).
func isErrnoByte(b byte) bool { return isUpper(b) || isDec(b) || b == '_' }
