package symbolize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"stracetui/internal/diag"
	"stracetui/internal/model"
)

const (
	DefaultTool    = "addr2line"
	DefaultTimeout = 5 * time.Second
)

// Symbolizer maps one address of a binary to a source location. A nil
// location with a nil error means the tool answered but knows nothing (`??`).
type Symbolizer interface {
	Symbolize(ctx context.Context, binary, address string) (*model.ResolvedLocation, error)
}

// Addr2Line runs `addr2line -f -C -e BINARY ADDRESS` once per address.
type Addr2Line struct {
	Tool    string        // path or name looked up in $PATH; DefaultTool when empty
	Timeout time.Duration // per invocation; 0 means no limit
}

func (a *Addr2Line) tool() string {
	if a.Tool == "" {
		return DefaultTool
	}
	return a.Tool
}

func (a *Addr2Line) Symbolize(ctx context.Context, binary, address string) (*model.ResolvedLocation, error) {
	key := model.FrameKey{Binary: binary, Address: address}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.tool(), "-f", "-C", "-e", binary, address)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return nil, &Error{Code: diag.ResToolMissing, Key: key, Err: err}
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, &Error{Code: diag.ResTimeout, Key: key, Err: ctx.Err()}
		case errors.As(err, &exitErr):
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return nil, &Error{Code: diag.ResToolFailed, Key: key, Err: errors.New(msg)}
		default:
			return nil, &Error{Code: diag.ResToolFailed, Key: key, Err: err}
		}
	}

	loc, err := parseAddr2Line(string(out))
	if err != nil {
		return nil, &Error{Code: diag.ResMalformedOutput, Key: key, Err: err}
	}
	return loc, nil
}

// parseAddr2Line reads the two lines printed for one address:
//
//	function
//	/path/to/file.c:123[:col][ (discriminator N)]
//
// `??:0`, `??:?` and `file:?` mean the location is unknown.
func parseAddr2Line(out string) (*model.ResolvedLocation, error) {
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("expected function and location lines, got %q", out)
	}
	ln := strings.TrimRight(lines[1], "\r")
	if i := strings.Index(ln, " ("); i >= 0 {
		ln = ln[:i]
	}

	colon1 := strings.LastIndexByte(ln, ':')
	if colon1 < 0 {
		return nil, fmt.Errorf("no file:line in %q", ln)
	}
	file, tail := ln[:colon1], ln[colon1+1:]
	if tail == "?" || file == "??" {
		return nil, nil
	}

	lineNum, err := parseNum(tail)
	if err != nil {
		return nil, fmt.Errorf("bad line number in %q: %w", ln, err)
	}

	var col *int
	// llvm-addr2line печатает file:line:col
	if colon2 := strings.LastIndexByte(file, ':'); colon2 >= 0 {
		if n, err := parseNum(file[colon2+1:]); err == nil {
			c := lineNum
			col = &c
			lineNum = n
			file = file[:colon2]
		}
	}
	if lineNum == 0 {
		return nil, nil
	}
	return &model.ResolvedLocation{File: file, Line: lineNum, Column: col}, nil
}

func parseNum(s string) (int, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](u)
}
