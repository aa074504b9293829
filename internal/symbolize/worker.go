package symbolize

import (
	"context"
	"sync"

	"stracetui/internal/model"
)

// Request asks the worker to resolve one frame. Record and Frame are opaque
// to the worker and come back in the Response.
type Request struct {
	Record int
	Frame  int
	Key    model.FrameKey
}

// Response carries the answer for a Request.
type Response struct {
	Request
	Location *model.ResolvedLocation
	Err      error
}

// Worker owns resolution for an interactive consumer: requests go in through
// Submit, answers come back on Responses in submission order. A single
// goroutine does the work, so a slow symbolizer never blocks the caller.
type Worker struct {
	r        *Resolver
	requests chan Request
	out      chan Response

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// StartWorker launches the worker goroutine. buffer bounds the number of
// queued requests. The worker stops when ctx is done or Close is called;
// Responses is closed afterwards.
func StartWorker(ctx context.Context, r *Resolver, buffer int) *Worker {
	if buffer <= 0 {
		buffer = 64
	}
	w := &Worker{
		r:        r,
		requests: make(chan Request, buffer),
		out:      make(chan Response, buffer),
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.out)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.requests:
			if !ok {
				return
			}
			loc, err := w.r.Resolve(ctx, req.Key.Binary, req.Key.Address)
			select {
			case w.out <- Response{Request: req, Location: loc, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit queues req without blocking. It reports false when the queue is
// full or the worker is closed.
func (w *Worker) Submit(req Request) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.requests <- req:
		return true
	default:
		return false
	}
}

// Responses delivers answers until the worker stops.
func (w *Worker) Responses() <-chan Response {
	return w.out
}

// Close stops accepting requests. Queued requests are still answered unless
// the worker's context is cancelled.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.requests)
	}
	w.mu.Unlock()
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
