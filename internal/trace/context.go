package trace

import "context"

// binding is what a context carries: the tracer and the innermost open
// span. Spans started on different goroutines from the same parent each
// get their own context, so no locking is needed.
type binding struct {
	tracer Tracer
	span   uint64
}

type ctxKey struct{}

func bindingOf(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingOf(ctx).tracer
}

// WithTracer attaches t to ctx. The span chain starts over.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: t})
}

// SpanFromContext returns the ID of the innermost span opened with Start,
// 0 at the root.
func SpanFromContext(ctx context.Context) uint64 {
	return bindingOf(ctx).span
}

func withSpan(ctx context.Context, id uint64) context.Context {
	b := bindingOf(ctx)
	b.span = id
	return context.WithValue(ctx, ctxKey{}, b)
}
