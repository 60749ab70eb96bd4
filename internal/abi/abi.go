package abi

import (
	"context"
	"fmt"

	"abilower/internal/layout"
	"abilower/internal/trace"
	"abilower/internal/types"
)

// TargetABI is implemented by every calling convention the engine can lower to.
type TargetABI interface {
	// Name identifies the convention, e.g. "win64".
	Name() string
	// ReturnInArg reports whether the return value goes through a hidden
	// struct return pointer.
	ReturnInArg(sig *Signature) bool
	// PassByVal reports whether t gets the LLVM byval attribute. Declarations
	// built by this package have no byval form, so Lower panics when a
	// convention asks for it.
	PassByVal(t types.TypeID) bool
	// PassThisBeforeSret reports whether the receiver precedes the hidden
	// struct return pointer.
	PassThisBeforeSret(sig *Signature) bool
	// RewriteFunctionType rewrites the return slot and the explicit
	// parameters and takes the parameter order decision.
	RewriteFunctionType(sig *Signature)
	// RewriteArgument rewrites one slot.
	RewriteArgument(sig *Signature, arg *Arg)
}

// ForTarget selects the calling convention for target.
func ForTarget(le *layout.LayoutEngine) (TargetABI, error) {
	if le == nil {
		return nil, fmt.Errorf("missing layout engine")
	}
	t := le.Target
	if t.Arch == "x86_64" && t.OS == "windows" {
		return NewWin64(le), nil
	}
	return nil, fmt.Errorf("no ABI for target %q", t.Triple)
}

// Lower runs one lowering pass over sig: the struct return and receiver
// decisions first, then the per-slot rewrites and the parameter order.
// Events go to the tracer found in ctx.
//
// It panics when target wants a by-value parameter passed with byval.
func Lower(ctx context.Context, target TargetABI, sig *Signature) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeSignature, "sig:"+sig.Name, trace.CurrentSpan(ctx).SpanID)
	sig.tracer = tracer
	sig.span = span.ID()
	defer func() {
		sig.tracer = nil
		sig.span = 0
	}()

	sig.SRet = target.ReturnInArg(sig)
	sig.ThisBeforeSRet = target.PassThisBeforeSret(sig)
	target.RewriteFunctionType(sig)
	for _, arg := range sig.Args {
		if !arg.ByRef && target.PassByVal(arg.Type) {
			panic(fmt.Sprintf("abi: %s: %s wants byval for slot %q", sig.Name, target.Name(), arg.Name))
		}
	}
	sig.ReturnInRegister = !sig.SRet && !sig.isVoid()

	span.WithExtra("sret", fmt.Sprint(sig.SRet)).
		WithExtra("reverse", fmt.Sprint(sig.ReverseParams)).
		End(target.Name())
}
