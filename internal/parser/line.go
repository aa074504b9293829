package parser

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"stracetui/internal/diag"
	"stracetui/internal/lexer"
	"stracetui/internal/model"
)

// parsePrefix reads the pid and timestamp columns required by mode.
func parsePrefix(c *lexer.Cursor, mode Mode, strict bool, rec *model.CallRecord) *SyntaxError {
	// strace -r выравнивает относительное время пробелами слева
	c.SkipSpaces()

	if mode.HasPID {
		m := c.Mark()
		digits, ok := lexer.ScanPID(c)
		if ok && c.SkipSpaces() > 0 {
			pid, err := parsePID(digits)
			if err != nil {
				return syntaxErr(diag.TrcMalformedPrefix, "pid %q out of range", digits)
			}
			rec.PID = pid
		} else {
			c.Reset(m)
			if strict {
				return syntaxErr(diag.TrcMalformedPrefix, "expected pid column")
			}
			rec.PID = model.NoPID
		}
	}

	if mode.HasTimestamp {
		ts, ok := lexer.ScanTimestamp(c)
		if !ok || c.SkipSpaces() == 0 {
			return syntaxErr(diag.TrcMalformedPrefix, "expected timestamp column")
		}
		rec.Timestamp = ts
	}
	return nil
}

// parsePID narrows to pid_t, which is 32 bits on every Linux ABI.
func parsePID(digits string) (int, error) {
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	pid, err := safecast.Conv[int32](n)
	if err != nil {
		return 0, err
	}
	return int(pid), nil
}

func parseBody(c *lexer.Cursor, rec *model.CallRecord) (LineKind, *SyntaxError) {
	switch {
	case c.HasPrefix("<..."):
		return parseResumed(c, rec)
	case c.HasPrefix("--- "):
		return parseSignal(c, rec)
	case c.HasPrefix("+++ "):
		return parseExit(c, rec)
	}
	return parseCall(c, rec)
}

// parseCall handles `name(args) = value` and `name(args <unfinished ...>`.
func parseCall(c *lexer.Cursor, rec *model.CallRecord) (LineKind, *SyntaxError) {
	name := lexer.ScanIdent(c)
	if name == "" || !c.Eat('(') {
		return KindUnrecognized, syntaxErr(diag.TrcUnrecognizedLine, "line matches no known record shape")
	}
	rec.Name = name

	args, stop := lexer.ScanArgs(c)
	switch stop {
	case lexer.ArgsUnfinished:
		c.EatString(lexer.UnfinishedMarker)
		rec.Arguments = strings.TrimRight(args, " \t")
		rec.IsUnfinished = true
		return KindUnfinished, nil
	case lexer.ArgsUnterminated:
		return KindUnrecognized, syntaxErr(diag.TrcUnterminatedArgs, "argument list of %s is not closed", name)
	case lexer.ArgsUnterminatedString:
		return KindUnrecognized, syntaxErr(diag.TrcUnterminatedString, "string in arguments of %s is not closed", name)
	}
	rec.Arguments = args
	if err := parseResult(c, rec); err != nil {
		return KindUnrecognized, err
	}
	return KindSyscall, nil
}

// parseResumed handles `<... name resumed>args) = value`.
func parseResumed(c *lexer.Cursor, rec *model.CallRecord) (LineKind, *SyntaxError) {
	c.EatString("<...")
	c.SkipSpaces()
	name := lexer.ScanIdent(c)
	if name == "" {
		return KindUnrecognized, syntaxErr(diag.TrcMalformedResumed, "resumed line without a syscall name")
	}
	c.SkipSpaces()
	if !c.EatString("resumed>") {
		return KindUnrecognized, syntaxErr(diag.TrcMalformedResumed, "expected 'resumed>' after %s", name)
	}
	rec.Name = name
	rec.IsResumed = true

	args, stop := lexer.ScanArgs(c)
	switch stop {
	case lexer.ArgsUnfinished:
		return KindUnrecognized, syntaxErr(diag.TrcMalformedResumed, "resumed %s is unfinished again", name)
	case lexer.ArgsUnterminated:
		return KindUnrecognized, syntaxErr(diag.TrcUnterminatedArgs, "argument list of resumed %s is not closed", name)
	case lexer.ArgsUnterminatedString:
		return KindUnrecognized, syntaxErr(diag.TrcUnterminatedString, "string in arguments of resumed %s is not closed", name)
	}
	rec.Arguments = args
	if err := parseResult(c, rec); err != nil {
		return KindUnrecognized, err
	}
	return KindResumed, nil
}

// parseResult reads ` = value[ ERRNO (message)]`. Whatever follows (duration,
// path decorations, flag annotations) is ignored.
func parseResult(c *lexer.Cursor, rec *model.CallRecord) *SyntaxError {
	c.SkipSpaces()
	if !c.Eat('=') {
		return syntaxErr(diag.TrcMalformedReturn, "expected '=' after argument list of %s", rec.Name)
	}
	c.SkipSpaces()
	value, ok := lexer.ScanReturn(c)
	if !ok {
		return syntaxErr(diag.TrcMalformedReturn, "unrecognized return value %q", lexer.ScanWord(c))
	}
	rec.ReturnValue = &value

	if value[0] == '-' || value == "?" {
		c.SkipSpaces()
		if code := lexer.ScanErrno(c); code != "" {
			c.SkipSpaces()
			msg, _ := lexer.ScanGroup(c)
			rec.Error = &model.Errno{Code: code, Message: msg}
		}
	}
	return nil
}

// enclosed returns the text between `open ` and ` close` markers that wrap
// the rest of the line.
func enclosed(rest, marker string) (string, bool) {
	rest = strings.TrimRight(rest, " \t")
	if len(rest) < 2*len(marker)+1 || !strings.HasSuffix(rest, " "+marker) {
		return "", false
	}
	inner := strings.TrimSpace(rest[len(marker) : len(rest)-len(marker)])
	return inner, inner != ""
}

// parseSignal handles `--- SIGCHLD {si_signo=SIGCHLD, ...} ---` and
// `--- stopped by SIGTSTP ---`.
func parseSignal(c *lexer.Cursor, rec *model.CallRecord) (LineKind, *SyntaxError) {
	inner, ok := enclosed(c.Rest(), "---")
	if !ok {
		return KindUnrecognized, syntaxErr(diag.TrcMalformedSignal, "signal line is not enclosed in '---'")
	}
	fields := strings.Fields(inner)
	if strings.HasPrefix(fields[0], "SIG") {
		detail := strings.TrimSpace(strings.TrimPrefix(inner, fields[0]))
		rec.Signal = &model.Signal{Name: fields[0], Detail: detail}
		return KindSignal, nil
	}
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "SIG") {
			rec.Signal = &model.Signal{Name: f, Detail: inner}
			return KindSignal, nil
		}
	}
	return KindUnrecognized, syntaxErr(diag.TrcMalformedSignal, "no signal name in %q", inner)
}

// parseExit handles `+++ exited with N +++` and
// `+++ killed by SIGSEGV (core dumped) +++`.
func parseExit(c *lexer.Cursor, rec *model.CallRecord) (LineKind, *SyntaxError) {
	inner, ok := enclosed(c.Rest(), "+++")
	if !ok {
		return KindUnrecognized, syntaxErr(diag.TrcMalformedExit, "exit line is not enclosed in '+++'")
	}

	if rest, ok := strings.CutPrefix(inner, "exited with "); ok {
		code, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return KindUnrecognized, syntaxErr(diag.TrcMalformedExit, "bad exit status %q", rest)
		}
		rec.Exit = &model.Exit{Code: &code}
		return KindExit, nil
	}

	if rest, ok := strings.CutPrefix(inner, "killed by "); ok {
		body, core := strings.CutSuffix(strings.TrimSpace(rest), "(core dumped)")
		sig := strings.TrimSpace(body)
		if !strings.HasPrefix(sig, "SIG") || strings.ContainsAny(sig, " \t") {
			return KindUnrecognized, syntaxErr(diag.TrcMalformedExit, "bad signal name %q", sig)
		}
		rec.Exit = &model.Exit{Signal: sig, CoreDumped: core}
		return KindExit, nil
	}

	return KindUnrecognized, syntaxErr(diag.TrcMalformedExit, "unknown exit form %q", inner)
}
