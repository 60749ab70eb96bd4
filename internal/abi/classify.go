package abi

import (
	"abilower/internal/layout"
	"abilower/internal/types"
)

// Classifier answers the type questions the Win64 rules are built from.
// All predicates are pure; the only configuration is the target's real width.
type Classifier struct {
	Layout *layout.LayoutEngine
	real80 bool
}

// NewClassifier fixes the real width from the engine's target.
func NewClassifier(le *layout.LayoutEngine) Classifier {
	return Classifier{Layout: le, real80: le.Target.RealIs80Bits()}
}

// IsAggregate reports whether t is a struct, a fixed array, a delegate or a
// complex number. Slices are not aggregates here: they are lowered before
// reaching the ABI as a length/pointer pair.
func (c Classifier) IsAggregate(t types.TypeID) bool {
	tt := c.lookup(t)
	switch tt.Kind {
	case types.KindStruct, types.KindDelegate, types.KindComplex:
		return true
	case types.KindArray:
		return tt.IsFixedArray()
	default:
		return false
	}
}

// CanRewriteAsInt reports whether t can be bit-cast to an integer of the same size.
func (c Classifier) CanRewriteAsInt(t types.TypeID) bool {
	switch c.Layout.MustSizeOf(t) {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// RealIs80Bits reports whether real is the x87 type on this target.
func (c Classifier) RealIs80Bits() bool {
	return c.real80
}

// IsExtendedReal reports whether t is real or ireal.
func (c Classifier) IsExtendedReal(t types.TypeID) bool {
	return c.lookup(t).IsExtended()
}

// PassedWithByvalSemantics reports whether the callee receives a pointer to a
// dedicated hidden copy of t:
//   - aggregates that cannot be rewritten as integers (over 64 bits or not a
//     power of 2)
//   - 80-bit real and ireal
func (c Classifier) PassedWithByvalSemantics(t types.TypeID) bool {
	return (c.IsAggregate(t) && !c.CanRewriteAsInt(t)) ||
		(c.real80 && c.IsExtendedReal(t))
}

func (c Classifier) lookup(t types.TypeID) types.Type {
	typesIn := c.Layout.Types
	return typesIn.MustLookup(typesIn.Resolve(t))
}
