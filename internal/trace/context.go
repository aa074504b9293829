package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
	fileKey   struct{}
)

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// Enabled reports whether an event of scope would be recorded. Callers use it
// to skip building expensive details.
func Enabled(ctx context.Context, scope Scope) bool {
	t := FromContext(ctx)
	return t.Enabled() && t.Level().ShouldEmit(scope)
}

// WithFile tags events emitted under ctx with the input path.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileKey{}, path)
}

// FileOf returns the input path set by WithFile.
func FileOf(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(fileKey{}).(string)
	return s
}

// spanID returns the innermost span started under ctx.
func spanID(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}
