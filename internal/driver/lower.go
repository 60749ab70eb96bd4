package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"abilower/internal/abi"
	"abilower/internal/manifest"
	"abilower/internal/observ"
	"abilower/internal/trace"
)

// Options configures Run.
type Options struct {
	// Triple overrides the manifest's target when set.
	Triple string
	// Jobs bounds the number of signatures lowered at once; <= 0 means GOMAXPROCS.
	Jobs     int
	Timer    *observ.Timer
	Observer PhaseObserver
	// Progress receives per-signature events while lowering.
	Progress ProgressSink
}

// Output is everything a run produced.
type Output struct {
	Program *manifest.Program
	ABI     abi.TargetABI
	Batch   *Batch
}

// Run loads the manifest at path, lowers every declared signature and
// collects the results.
func Run(ctx context.Context, path string, opts Options) (*Output, error) {
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "run", 0)
	defer root.End(path)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: root.ID()})

	prog, err := Load(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return lowerProgram(ctx, prog, opts)
}

// Load reads and builds the manifest at path without lowering anything.
func Load(ctx context.Context, path string, opts Options) (*manifest.Program, error) {
	tracer := trace.FromContext(ctx)
	load := opts.begin("load")
	span := trace.Begin(tracer, trace.ScopePass, "load", trace.CurrentSpan(ctx).SpanID)
	m, err := manifest.Load(path)
	if err != nil {
		span.End("error")
		load.end("error")
		return nil, err
	}
	prog, err := m.Build(opts.Triple)
	if err != nil {
		span.End("error")
		load.end("error")
		return nil, err
	}
	span.End(prog.Target.Triple)
	load.end(fmt.Sprintf("%d signatures", len(prog.Signatures)))
	return prog, nil
}

// RunProgram lowers an already built program.
func RunProgram(ctx context.Context, prog *manifest.Program, opts Options) (*Output, error) {
	return lowerProgram(ctx, prog, opts)
}

func lowerProgram(ctx context.Context, prog *manifest.Program, opts Options) (*Output, error) {
	target, err := abi.ForTarget(prog.Layout)
	if err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	lower := opts.begin("lower")
	span := trace.Begin(tracer, trace.ScopePass, "lower", parent)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	err = LowerAll(ctx, target, prog.Signatures, opts.Jobs, opts.Progress)
	span.End(target.Name())
	if err != nil {
		lower.end("canceled")
		return nil, err
	}
	lower.end(fmt.Sprintf("%d signatures", len(prog.Signatures)))

	collect := opts.begin("collect")
	batch := NewBatch(prog, target)
	collect.end("")

	return &Output{Program: prog, ABI: target, Batch: batch}, nil
}

// LowerAll lowers sigs in parallel. Every signature is owned by exactly one
// worker; the shared interner and layout engine are only read. sink may be nil.
func LowerAll(ctx context.Context, target abi.TargetABI, sigs []*abi.Signature, jobs int, sink ProgressSink) error {
	if len(sigs) == 0 {
		return nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for i, sig := range sigs {
		report(sink, ProgressEvent{Index: i, Name: sig.Name, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sigs)))
	for i, sig := range sigs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				report(sink, ProgressEvent{Index: i, Name: sig.Name, Status: StatusCanceled})
				return gctx.Err()
			default:
			}
			report(sink, ProgressEvent{Index: i, Name: sig.Name, Status: StatusWorking})
			abi.Lower(gctx, target, sig)
			report(sink, ProgressEvent{Index: i, Name: sig.Name, Status: StatusDone})
			return nil
		})
	}
	return g.Wait()
}
