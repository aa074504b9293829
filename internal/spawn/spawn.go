// Package spawn runs a command under strace and leaves the trace in a file.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"stracetui/internal/trace"
)

// DefaultStrace is looked up in $PATH.
const DefaultStrace = "strace"

// BaseArgs follow forks, print microsecond timestamps and capture a kernel
// backtrace for every call: the layout the parser detects as pid+ts with
// frames.
var BaseArgs = []string{"-f", "-tt", "-k"}

type Options struct {
	Strace    string   // strace binary; DefaultStrace when empty
	Output    string   // trace file; a temporary file when empty
	ExtraArgs []string // inserted after BaseArgs

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result describes a finished traced run.
type Result struct {
	TracePath string
	Temporary bool // TracePath was created by Run; the caller removes it
	ExitCode  int  // exit status of strace, which mirrors the traced command
}

// Args builds the strace argument vector for argv.
func Args(opts *Options, output string, argv []string) []string {
	args := make([]string, 0, len(BaseArgs)+len(opts.ExtraArgs)+3+len(argv))
	args = append(args, BaseArgs...)
	args = append(args, opts.ExtraArgs...)
	args = append(args, "-o", output, "--")
	return append(args, argv...)
}

// Run traces argv to completion. A non-zero exit of the traced command is
// not an error: it is reported in Result.ExitCode and the trace is still
// usable. Errors mean strace could not be started or the output file could
// not be created.
func Run(ctx context.Context, opts Options, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("no command to trace")
	}
	strace := opts.Strace
	if strace == "" {
		strace = DefaultStrace
	}

	res := Result{TracePath: opts.Output}
	if res.TracePath == "" {
		f, err := os.CreateTemp("", "stracetui-*.trace")
		if err != nil {
			return Result{}, fmt.Errorf("create trace file: %w", err)
		}
		res.TracePath = f.Name()
		res.Temporary = true
		if err := f.Close(); err != nil {
			os.Remove(res.TracePath)
			return Result{}, err
		}
	}

	_, span := trace.Start(ctx, trace.ScopeDriver, "spawn")
	span.Set("cmd", strings.Join(argv, " "))

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, strace, Args(&opts, res.TracePath, argv)...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	if opts.Stderr != nil {
		cmd.Stderr = io.MultiWriter(opts.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
	default:
		span.End("failed")
		if res.Temporary {
			os.Remove(res.TracePath)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("%s not found: install strace or set [trace].strace: %w", strace, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("%s: %s: %w", strace, msg, err)
		}
		return Result{}, fmt.Errorf("%s: %w", strace, err)
	}
	span.End(fmt.Sprintf("exit %d", res.ExitCode))
	return res, nil
}
