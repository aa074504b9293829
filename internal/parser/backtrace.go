package parser

import (
	"strings"

	"stracetui/internal/diag"
	"stracetui/internal/model"
)

// ParseFrame decomposes one `strace -k` frame line:
//
//	> /usr/lib/libc.so.6(__write+0x14) [0x10e53e]
//	> /usr/bin/true [0x1a2b]
//
// Function and offset come together or not at all; `binary() [addr]` is read
// as a frame without a symbol.
func ParseFrame(text string) (model.BacktraceFrame, error) {
	frame, err := parseFrame(text)
	if err != nil {
		return frame, err
	}
	return frame, nil
}

func parseFrame(text string) (model.BacktraceFrame, *SyntaxError) {
	var frame model.BacktraceFrame

	body := strings.TrimLeft(text, " \t")
	if !strings.HasPrefix(body, ">") {
		return frame, syntaxErr(diag.BtMalformedFrame, "frame line must start with '>'")
	}
	body = strings.TrimSpace(body[1:])

	open := strings.LastIndexByte(body, '[')
	if open < 0 || !strings.HasSuffix(body, "]") {
		return frame, syntaxErr(diag.BtMalformedFrame, "frame has no [address]")
	}
	addr := body[open+1 : len(body)-1]
	if !isHexAddress(addr) {
		return frame, syntaxErr(diag.BtBadAddress, "bad frame address %q", addr)
	}
	frame.Address = addr

	head := strings.TrimRight(body[:open], " \t")
	if strings.HasSuffix(head, ")") {
		lp := strings.IndexByte(head, '(')
		if lp < 0 {
			return frame, syntaxErr(diag.BtMalformedFrame, "unbalanced parenthesis in %q", head)
		}
		if sym := head[lp+1 : len(head)-1]; sym != "" {
			plus := strings.LastIndexByte(sym, '+')
			switch {
			case plus < 0 || plus == len(sym)-1:
				return frame, syntaxErr(diag.BtMissingOffset, "function %q has no offset", strings.TrimSuffix(sym, "+"))
			case plus == 0:
				return frame, syntaxErr(diag.BtMissingFunction, "offset %q has no function", sym[1:])
			}
			fn, off := sym[:plus], sym[plus+1:]
			frame.Function = &fn
			frame.Offset = &off
		}
		head = strings.TrimRight(head[:lp], " \t")
	}
	if head == "" {
		return frame, syntaxErr(diag.BtMalformedFrame, "frame has no binary path")
	}
	frame.Binary = head
	return frame, nil
}

func isHexAddress(s string) bool {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok || digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		b := digits[i] | 0x20
		if !(b >= '0' && b <= '9') && !(b >= 'a' && b <= 'f') {
			return false
		}
	}
	return true
}
