// Package trace records what the lowering pipeline did: driver and pass spans,
// one span per signature and a point event for every argument rewrite, so a
// surprising lowering can be followed back to the rule that produced it.
//
// Tracing is configured from the CLI:
//
//	abilower --trace=- --trace-level=debug lower sigs.toml
//
// Events go to a StreamTracer (text or NDJSON), a RingTracer (bounded, dumped
// on exit and inspected by tests) or both. The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", 0)
//	defer span.End("")
package trace
