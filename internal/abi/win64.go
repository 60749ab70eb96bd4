package abi

import (
	"fmt"

	"abilower/internal/layout"
	"abilower/internal/types"
)

// Win64 implements the x86-64 Windows calling convention, see
// https://learn.microsoft.com/en-us/cpp/build/x64-calling-convention
type Win64 struct {
	types    *types.Interner
	classify Classifier

	byval      ByvalRewrite
	integer    IntegerRewrite
	longDouble LongDoubleRewrite
}

// NewWin64 builds the convention for the engine's target. The real width is
// read once here and never changes afterwards.
func NewWin64(le *layout.LayoutEngine) *Win64 {
	return &Win64{
		types:      le.Types,
		classify:   NewClassifier(le),
		byval:      ByvalRewrite{Layout: le},
		integer:    IntegerRewrite{Layout: le},
		longDouble: LongDoubleRewrite{Types: le.Types},
	}
}

func (*Win64) Name() string { return "win64" }

// Classifier exposes the type predicates the convention is built from.
func (w *Win64) Classifier() Classifier { return w.classify }

func (w *Win64) ReturnInArg(sig *Signature) bool {
	if sig.Ret == nil || sig.Ret.ByRef {
		return false
	}
	rt := w.types.Resolve(sig.Ret.Type)

	// 80-bit real/ireal are returned on the x87 stack
	if w.classify.RealIs80Bits() && w.classify.IsExtendedReal(rt) {
		return false
	}

	// * all POD types <= 64 bits and of a size that is a power of 2
	//   (incl. 2x32-bit cfloat) are returned in a register (RAX, or
	//   XMM0 for single float/ifloat/double/idouble)
	// * all other types are returned via struct-return (sret)
	tt := w.types.MustLookup(rt)
	return (tt.Kind == types.KindStruct && !w.types.IsPOD(rt)) ||
		w.classify.PassedWithByvalSemantics(rt)
}

// PassByVal is always false: the caller makes the copy itself and passes a
// plain pointer, LLVM's byval is never used.
func (*Win64) PassByVal(types.TypeID) bool { return false }

func (*Win64) PassThisBeforeSret(sig *Signature) bool {
	return sig.Linkage == LinkageCpp
}

func (w *Win64) RewriteFunctionType(sig *Signature) {
	// return value; a struct return carries no value to rewrite and x87
	// reals come back in ST0 untouched
	if sig.Ret != nil && !sig.Ret.ByRef && !sig.IsVoidReturn(w.types) &&
		!w.ReturnInArg(sig) && !w.x87Return(sig) {
		w.RewriteArgument(sig, sig.Ret)
	}

	// explicit parameters
	for _, arg := range sig.Args {
		if !arg.ByRef {
			w.RewriteArgument(sig, arg)
		}
	}

	// native linkage: reverse parameter order for non-variadics
	sig.ReverseParams = sig.Linkage == LinkageD && sig.Variadic != VariadicC && len(sig.Args) > 1
}

func (w *Win64) x87Return(sig *Signature) bool {
	return w.classify.RealIs80Bits() && w.classify.IsExtendedReal(w.types.Resolve(sig.Ret.Type))
}

func (w *Win64) RewriteArgument(sig *Signature, arg *Arg) {
	if arg.ByRef {
		panic(fmt.Sprintf("abi: %s: slot %q is already passed by reference", sig.Name, arg.Name))
	}
	t := w.types.Resolve(arg.Type)
	if arg.origLType == nil {
		arg.origLType = arg.LType
	}

	var rewrite ABIRewrite
	switch {
	case w.classify.PassedWithByvalSemantics(t):
		// the caller allocates a copy and passes a pointer to it; the copy
		// is a local of the callee
		rewrite = &w.byval
		arg.Attrs.Clear().
			Add(AttrNoAlias).
			Add(AttrNoCapture).
			AddAlignment(w.byval.Alignment(t))
	case w.types.IsCLongDouble(t):
		rewrite = &w.longDouble
	case w.classify.IsAggregate(t) && w.classify.CanRewriteAsInt(t) &&
		!w.integer.IsObsoleteFor(arg.LType):
		rewrite = &w.integer
	}
	if rewrite == nil {
		return
	}

	arg.Rewrite = rewrite
	arg.LType = rewrite.Type(t, arg.origLType)
	sig.emitRewrite(w.types, arg, arg.origLType)
}
