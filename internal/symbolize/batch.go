package symbolize

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"stracetui/internal/model"
	"stracetui/internal/trace"
)

// Progress is sent after each unique frame key is resolved.
type Progress struct {
	Done  int
	Total int
	Key   model.FrameKey
	Err   error
}

// BatchStats summarizes one ResolveRecords pass.
type BatchStats struct {
	Frames     int // frames over all records
	Keys       int // distinct (binary, address) pairs
	Resolved   int // keys with a source location
	Unresolved int // keys the symbolizer answered `??` for
	Failed     int // keys that produced an error
}

// FrameError ties a resolution failure to the frame it belongs to.
type FrameError struct {
	Record int
	Frame  int
	Err    error
}

// ResolveRecords resolves every backtrace frame of records in place. Distinct
// keys are resolved concurrently, at most jobs at a time (GOMAXPROCS when
// jobs <= 0); frames sharing a key share the answer. events, when non-nil,
// receives one Progress per key and is not closed.
//
// The returned error is non-nil only when ctx was cancelled; per-frame
// failures are reported in the FrameError list.
func ResolveRecords(ctx context.Context, r *Resolver, records []model.CallRecord, jobs int, events chan<- Progress) (BatchStats, []FrameError, error) {
	var stats BatchStats

	// Уникальные ключи в порядке первого появления
	index := make(map[model.FrameKey]int)
	var keys []model.FrameKey
	for i := range records {
		for j := range records[i].Backtrace {
			stats.Frames++
			k := records[i].Backtrace[j].Key()
			if _, ok := index[k]; !ok {
				index[k] = len(keys)
				keys = append(keys, k)
			}
		}
	}
	stats.Keys = len(keys)
	if len(keys) == 0 {
		return stats, nil, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopePass, "resolve")
	defer span.End("")

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	type result struct {
		loc *model.ResolvedLocation
		err error
		ran bool
	}
	results := make([]result, len(keys))
	done := make(chan int, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(keys)))

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		n := 0
		for i := range done {
			n++
			if events == nil {
				continue
			}
			select {
			case events <- Progress{Done: n, Total: len(keys), Key: keys[i], Err: results[i].err}:
			case <-ctx.Done():
			}
		}
	}()

	for i, k := range keys {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			loc, err := r.Resolve(gctx, k.Binary, k.Address)
			results[i] = result{loc: loc, err: err, ran: true}
			done <- i
			return nil
		})
	}
	waitErr := g.Wait()
	close(done)
	<-progressDone

	var frameErrs []FrameError
	for i := range records {
		for j := range records[i].Backtrace {
			f := &records[i].Backtrace[j]
			res := results[index[f.Key()]]
			if !res.ran {
				continue
			}
			if res.err != nil {
				frameErrs = append(frameErrs, FrameError{Record: i, Frame: j, Err: res.err})
				continue
			}
			if f.Resolved == nil {
				f.Resolved = res.loc
			}
		}
	}
	for _, res := range results {
		switch {
		case !res.ran:
		case res.err != nil:
			stats.Failed++
		case res.loc == nil:
			stats.Unresolved++
		default:
			stats.Resolved++
		}
	}
	span.Set("keys", strconv.Itoa(stats.Keys)).
		Set("failed", strconv.Itoa(stats.Failed))

	if waitErr != nil {
		return stats, frameErrs, waitErr
	}
	if err := ctx.Err(); err != nil {
		return stats, frameErrs, err
	}
	return stats, frameErrs, nil
}
