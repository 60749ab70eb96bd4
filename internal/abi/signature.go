package abi

import (
	"fmt"
	"strings"

	lltypes "github.com/llir/llvm/ir/types"

	"abilower/internal/layout"
	"abilower/internal/trace"
	"abilower/internal/types"
)

// Linkage is the language linkage of a function.
type Linkage uint8

const (
	// LinkageD is the native linkage of the source language.
	LinkageD Linkage = iota + 1
	LinkageC
	LinkageCpp
	LinkageWindows
	LinkageSystem
)

func (l Linkage) String() string {
	switch l {
	case LinkageD:
		return "D"
	case LinkageC:
		return "C"
	case LinkageCpp:
		return "C++"
	case LinkageWindows:
		return "Windows"
	case LinkageSystem:
		return "System"
	default:
		return fmt.Sprintf("Linkage(%d)", l)
	}
}

// ParseLinkage accepts the spellings used in extern(...) declarations.
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "native", "":
		return LinkageD, nil
	case "c":
		return LinkageC, nil
	case "c++", "cpp":
		return LinkageCpp, nil
	case "windows":
		return LinkageWindows, nil
	case "system":
		return LinkageSystem, nil
	default:
		return 0, fmt.Errorf("unknown linkage %q (expected D|C|C++|Windows|System)", s)
	}
}

// Variadic is the variadic style of a function.
type Variadic uint8

const (
	VariadicNone Variadic = iota
	// VariadicC is a C-style ... parameter list.
	VariadicC
	// VariadicTypesafe passes the extra arguments with their type information.
	VariadicTypesafe
)

func (v Variadic) String() string {
	switch v {
	case VariadicNone:
		return "none"
	case VariadicC:
		return "c"
	case VariadicTypesafe:
		return "typesafe"
	default:
		return fmt.Sprintf("Variadic(%d)", v)
	}
}

// Arg is one parameter or the return slot of a signature.
type Arg struct {
	Name string
	Type types.TypeID
	// LType is the low-level type; rewritten in place by the lowering pass.
	LType lltypes.Type
	// ByRef is set when the slot already is an address (ref/out).
	ByRef   bool
	Rewrite ABIRewrite
	Attrs   Attrs

	// origLType is LType before the first rewrite, so a second pass rewrites
	// from the same base.
	origLType lltypes.Type
}

// NewArg builds an unrewritten slot for t.
func NewArg(le *layout.LayoutEngine, name string, t types.TypeID, byRef bool) *Arg {
	ltype := LowerType(le, t)
	if byRef {
		ltype = lltypes.NewPointer(ltype)
	}
	return &Arg{Name: name, Type: t, LType: ltype, ByRef: byRef}
}

// Strategy reports the rewrite decision taken for the slot.
func (a *Arg) Strategy() Strategy {
	if a == nil || a.Rewrite == nil {
		return Strategy{Kind: StrategyNone}
	}
	s := Strategy{Kind: a.Rewrite.Kind()}
	switch s.Kind {
	case StrategyIndirectCopy:
		s.Align = a.Attrs.Align()
	case StrategyIntegerBitcast:
		if it, ok := a.LType.(*lltypes.IntType); ok {
			s.Width = int(it.BitSize)
		}
	}
	return s
}

// Signature is a function type being lowered. The frontend fills in the
// declaration fields; Lower fills in the decisions.
type Signature struct {
	Name     string
	Linkage  Linkage
	Variadic Variadic
	// HasThis is set for member functions taking an implicit receiver.
	HasThis bool
	Ret     *Arg
	Args    []*Arg

	// SRet is set when the return value is written through a hidden pointer.
	SRet bool
	// ReturnInRegister is set when a value is returned in RAX, XMM0 or ST0.
	ReturnInRegister bool
	// ThisBeforeSRet places the receiver ahead of the hidden struct return pointer.
	ThisBeforeSRet bool
	// ReverseParams asks code generation to emit the explicit parameters in reverse order.
	ReverseParams bool

	tracer trace.Tracer
	span   uint64
}

// IsVoidReturn reports whether the signature returns nothing.
func (s *Signature) IsVoidReturn(typesIn *types.Interner) bool {
	if s.Ret == nil {
		return true
	}
	tt, ok := typesIn.Lookup(typesIn.Resolve(s.Ret.Type))
	return !ok || tt.Kind == types.KindVoid
}

func (s *Signature) isVoid() bool {
	if s.Ret == nil {
		return true
	}
	_, ok := s.Ret.LType.(*lltypes.VoidType)
	return ok
}

func (s *Signature) emitRewrite(typesIn *types.Interner, arg *Arg, from lltypes.Type) {
	if s.tracer == nil || !s.tracer.Enabled() {
		return
	}
	trace.Point(s.tracer, trace.ScopeArg, "rewrite", types.Label(typesIn, arg.Type), s.span, map[string]string{
		"sig":      s.Name,
		"arg":      arg.Name,
		"strategy": arg.Strategy().String(),
		"from":     from.String(),
		"to":       arg.LType.String(),
	})
}
