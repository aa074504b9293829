package symbolize

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"stracetui/internal/diag"
	"stracetui/internal/model"
	"stracetui/internal/trace"
)

// Resolver memoizes a Symbolizer. The external tool runs at most once per
// (binary, address): positive answers, `??` and failures are all cached, and
// concurrent misses for one key share a single invocation.
//
// A Resolver is safe for concurrent use.
type Resolver struct {
	sym   Symbolizer
	cache *Cache
	disk  *DiskCache
	group singleflight.Group

	// binaries whose persisted entries were already merged into cache
	loadedMu sync.Mutex
	loaded   map[string]struct{}
	dirty    map[string]struct{}

	// выставляется после первого ResToolMissing: дальше не пытаемся
	toolMissing atomic.Pointer[Error]
	calls       atomic.Int64
}

// NewResolver wraps sym. disk may be nil to keep the cache in memory only.
func NewResolver(sym Symbolizer, disk *DiskCache) *Resolver {
	if sym == nil {
		sym = &Addr2Line{Tool: DefaultTool, Timeout: DefaultTimeout}
	}
	return &Resolver{
		sym:    sym,
		cache:  NewCache(),
		disk:   disk,
		loaded: make(map[string]struct{}),
		dirty:  make(map[string]struct{}),
	}
}

// Cache exposes the in-memory cache for statistics.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Invocations counts calls made to the underlying Symbolizer.
func (r *Resolver) Invocations() int64 {
	return r.calls.Load()
}

// Resolve returns the source location of address in binary. A nil location
// with a nil error means the symbolizer had no answer. Errors are *Error and
// never fatal: the frame simply stays unresolved.
func (r *Resolver) Resolve(ctx context.Context, binary, address string) (*model.ResolvedLocation, error) {
	key := model.FrameKey{Binary: binary, Address: address}
	r.warm(binary)

	if e, ok := r.cache.get(key); ok {
		return e.loc, e.err
	}
	if missing := r.toolMissing.Load(); missing != nil {
		err := &Error{Code: diag.ResToolMissing, Key: key, Err: missing.Err}
		r.cache.put(key, entry{err: err})
		return nil, err
	}

	e, aborted := r.lookup(ctx, key)
	// a shared lookup cut short by another caller's cancellation is retried
	for tries := 1; aborted && ctx.Err() == nil && tries < maxLookupTries; tries++ {
		e, aborted = r.lookup(ctx, key)
	}

	if trace.Enabled(ctx, trace.ScopeFrame) {
		detail := e.loc.String()
		if e.err != nil {
			detail = e.err.Error()
		}
		trace.Point(ctx, trace.ScopeFrame, "resolve "+key.String(), detail)
	}
	return e.loc, e.err
}

const maxLookupTries = 3

// lookup runs the symbolizer once per key across concurrent callers. aborted
// reports that the run failed because the ctx it ran under was cancelled; such
// results are not cached.
func (r *Resolver) lookup(ctx context.Context, key model.FrameKey) (entry, bool) {
	type shared struct {
		e       entry
		aborted bool
	}
	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		if e, ok := r.cache.peek(key); ok {
			return shared{e: e}, nil
		}
		r.calls.Add(1)
		loc, err := r.sym.Symbolize(ctx, key.Binary, key.Address)
		e := entry{loc: loc, err: err}
		var resErr *Error
		if errors.As(err, &resErr) && resErr.Code == diag.ResToolMissing {
			r.toolMissing.CompareAndSwap(nil, resErr)
		}
		if err != nil && ctx.Err() != nil {
			// отмена вызывающего не должна застревать в кэше
			return shared{e: e, aborted: true}, nil
		}
		r.cache.putIfAbsent(key, e)
		if err == nil {
			r.markDirty(key.Binary)
		}
		return shared{e: e}, nil
	})
	res := v.(shared)
	return res.e, res.aborted
}

// ResolveFrame fills f.Resolved. f is left untouched on failure.
func (r *Resolver) ResolveFrame(ctx context.Context, f *model.BacktraceFrame) error {
	if f.Resolved != nil {
		return nil
	}
	loc, err := r.Resolve(ctx, f.Binary, f.Address)
	if err != nil {
		return err
	}
	f.Resolved = loc
	return nil
}

// ResolveAll resolves frames in place, one at a time, and returns the
// per-frame errors (nil entries for successes). Cancellation stops early;
// the remaining slots then hold ctx.Err().
func (r *Resolver) ResolveAll(ctx context.Context, frames []model.BacktraceFrame) []error {
	errs := make([]error, len(frames))
	for i := range frames {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(frames); j++ {
				errs[j] = err
			}
			break
		}
		errs[i] = r.ResolveFrame(ctx, &frames[i])
	}
	return errs
}

func (r *Resolver) warm(binary string) {
	if r.disk == nil {
		return
	}
	r.loadedMu.Lock()
	defer r.loadedMu.Unlock()
	if _, ok := r.loaded[binary]; ok {
		return
	}
	r.loaded[binary] = struct{}{}
	entries, err := r.disk.load(binary)
	if err != nil {
		// битый файл кэша просто игнорируем, он будет перезаписан
		r.dirty[binary] = struct{}{}
		return
	}
	for addr, e := range entries {
		r.cache.putIfAbsent(model.FrameKey{Binary: binary, Address: addr}, e)
	}
}

func (r *Resolver) markDirty(binary string) {
	if r.disk == nil {
		return
	}
	r.loadedMu.Lock()
	r.dirty[binary] = struct{}{}
	r.loadedMu.Unlock()
}

// Flush persists the answers learned since the last flush. Without a disk
// cache it does nothing.
func (r *Resolver) Flush() error {
	if r.disk == nil {
		return nil
	}
	r.loadedMu.Lock()
	binaries := make([]string, 0, len(r.dirty))
	for b := range r.dirty {
		binaries = append(binaries, b)
	}
	r.dirty = make(map[string]struct{})
	r.loadedMu.Unlock()

	var errs []error
	for _, b := range binaries {
		if err := r.disk.store(b, r.cache.forBinary(b)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
