// Package trace records compilation spans for the rial compiler.
//
// Enable tracing from the command line:
//
//	rialc build --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event as soon as it is emitted
//   - RingTracer: keeps the last N events for crash dumps
//   - MultiTracer: fans events out to several tracers
//
// # Levels and scopes
//
// A level admits every scope at or above its granularity: phase emits
// driver and pass spans, detail adds per-unit spans, debug adds
// per-function spans.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "lower")
//	defer span.End("")
package trace
