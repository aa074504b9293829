// Package driver runs the parse and resolve phases over one or more traces.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"stracetui/internal/diag"
	"stracetui/internal/observ"
	"stracetui/internal/parser"
	"stracetui/internal/symbolize"
	"stracetui/internal/trace"
)

// StdinPath names standard input in Request.Paths.
const StdinPath = "-"

// Request describes one pipeline run.
type Request struct {
	Paths []string
	Stdin io.Reader // read for StdinPath

	Parse parser.Options
	Jobs  int // параллельных файлов; 0 - GOMAXPROCS

	// Resolver, when set, resolves every backtrace frame after parsing.
	Resolver    *symbolize.Resolver
	ResolveJobs int

	Progress ProgressSink
}

// FileResult is the outcome for one input.
type FileResult struct {
	Path    string
	Result  parser.Result
	Err     error // open or read failure; Result holds what was parsed before it
	Resolve symbolize.BatchStats
	Timing  observ.Report
}

// Run parses every path concurrently, one Assembler per file, then resolves
// frames when the request carries a Resolver. Per-file failures are stored
// in the FileResult; the returned error is only ctx's.
func Run(ctx context.Context, req *Request) ([]FileResult, error) {
	if req == nil || len(req.Paths) == 0 {
		return nil, nil
	}
	sink := req.Progress
	if sink == nil {
		sink = nopSink{}
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "pipeline")
	defer span.End("")

	for _, p := range req.Paths {
		sink.OnEvent(Event{File: p, Stage: StageParse, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(req.Paths))
	timers := make([]*observ.Timer, len(req.Paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Paths)))

	for i, path := range req.Paths {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			timer := observ.NewTimer()
			timers[i] = timer
			start := time.Now()
			sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusWorking})

			fileCtx := trace.WithFile(gctx, path)
			stop := timer.Track("parse")
			res, err := parseOne(fileCtx, path, req)
			stop(fmt.Sprintf("%d lines", res.Lines))

			results[i] = FileResult{Path: path, Result: res, Err: err}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return ctxErr
				}
				sink.OnEvent(Event{File: path, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			status := StatusDone
			if req.Resolver != nil {
				status = StatusWorking
			}
			sink.OnEvent(Event{File: path, Stage: StageParse, Status: status, Elapsed: time.Since(start), Records: len(res.Records)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if req.Resolver != nil {
		for i := range results {
			if err := resolveOne(ctx, req, &results[i], timers[i], sink); err != nil {
				return results, err
			}
		}
		if err := req.Resolver.Flush(); err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: firstBag(results)}, diag.ResCacheUnavailable, 0,
				"could not persist resolution cache: "+err.Error(), "")
		}
	}

	for i := range results {
		if timers[i] != nil {
			results[i].Timing = timers[i].Report()
		}
	}
	return results, nil
}

func parseOne(ctx context.Context, path string, req *Request) (parser.Result, error) {
	if path == StdinPath {
		if req.Stdin == nil {
			return parser.Result{Bag: diag.NewBag(0)}, errors.New("no standard input")
		}
		return parser.Parse(ctx, req.Stdin, req.Parse)
	}
	res, err := parser.ParseFile(ctx, path, req.Parse)
	if err != nil && res.Bag == nil {
		res.Bag = diag.NewBag(0)
		res.Bag.Add(diag.NewError(diag.IOOpenError, 0, err.Error()))
	}
	return res, err
}

func resolveOne(ctx context.Context, req *Request, fr *FileResult, timer *observ.Timer, sink ProgressSink) error {
	if fr.Result.Bag == nil || len(fr.Result.Records) == 0 {
		if fr.Err == nil {
			sink.OnEvent(Event{File: fr.Path, Stage: StageResolve, Status: StatusDone})
		}
		return nil
	}

	events := make(chan symbolize.Progress, 64)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		failed := 0
		for p := range events {
			if p.Err != nil {
				failed++
			}
			sink.OnEvent(Event{File: fr.Path, Stage: StageResolve, Status: StatusWorking,
				Records: len(fr.Result.Records), Done: p.Done, Total: p.Total, Failed: failed})
		}
	}()

	start := time.Now()
	stop := timer.Track("resolve")
	stats, frameErrs, err := symbolize.ResolveRecords(trace.WithFile(ctx, fr.Path), req.Resolver, fr.Result.Records, req.ResolveJobs, events)
	close(events)
	<-forwarded
	stop(fmt.Sprintf("%d keys", stats.Keys))
	fr.Resolve = stats

	// один сломанный ключ даёт одну диагностику, а не по одной на кадр
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: fr.Result.Bag})
	for _, fe := range frameErrs {
		var resErr *symbolize.Error
		if errors.As(fe.Err, &resErr) {
			diag.ReportDiagnostic(rep, resErr.Diagnostic())
		}
	}
	if err != nil {
		return err
	}
	status := StatusDone
	if fr.Err != nil {
		status = StatusError
	}
	sink.OnEvent(Event{File: fr.Path, Stage: StageResolve, Status: status, Elapsed: time.Since(start),
		Records: len(fr.Result.Records), Done: stats.Keys, Total: stats.Keys, Failed: stats.Failed})
	return nil
}

func firstBag(results []FileResult) *diag.Bag {
	for i := range results {
		if results[i].Result.Bag != nil {
			return results[i].Result.Bag
		}
	}
	return nil
}
