package abi

import (
	"fmt"

	"fortio.org/safecast"
	lltypes "github.com/llir/llvm/ir/types"

	"abilower/internal/layout"
	"abilower/internal/types"
)

// ABIRewrite transforms the low-level type of a slot.
type ABIRewrite interface {
	Kind() StrategyKind
	// Type returns the rewritten low-level type for the semantic type t whose
	// unrewritten low-level type is ltype.
	Type(t types.TypeID, ltype lltypes.Type) lltypes.Type
}

// ByvalRewrite passes the address of a caller-allocated copy.
type ByvalRewrite struct {
	Layout *layout.LayoutEngine
}

func (*ByvalRewrite) Kind() StrategyKind { return StrategyIndirectCopy }

func (*ByvalRewrite) Type(_ types.TypeID, ltype lltypes.Type) lltypes.Type {
	return lltypes.NewPointer(ltype)
}

// Alignment is the alignment of the hidden copy: the one the type requires.
func (r *ByvalRewrite) Alignment(t types.TypeID) int {
	return r.Layout.MustAlignOf(t)
}

// IntegerRewrite reinterprets a small aggregate as an integer of its size.
type IntegerRewrite struct {
	Layout *layout.LayoutEngine
}

func (*IntegerRewrite) Kind() StrategyKind { return StrategyIntegerBitcast }

func (r *IntegerRewrite) Type(t types.TypeID, _ lltypes.Type) lltypes.Type {
	bits, err := safecast.Conv[uint64](r.Layout.MustSizeOf(t) * 8)
	if err != nil {
		panic(fmt.Errorf("abi: integer rewrite of type#%d: %w", t, err))
	}
	return lltypes.NewInt(bits)
}

// IsObsoleteFor reports whether ltype already is the integer type of its own
// store size, in which case rewriting it again would change nothing.
func (*IntegerRewrite) IsObsoleteFor(ltype lltypes.Type) bool {
	it, ok := ltype.(*lltypes.IntType)
	return ok && it.BitSize >= 8 && it.BitSize%8 == 0
}

// LongDoubleRewrite passes the MSVC long double wrapper as a double.
type LongDoubleRewrite struct {
	Types *types.Interner
}

func (*LongDoubleRewrite) Kind() StrategyKind { return StrategyLongDouble }

func (r *LongDoubleRewrite) Type(t types.TypeID, _ lltypes.Type) lltypes.Type {
	if !r.Types.IsCLongDouble(t) {
		panic(fmt.Sprintf("abi: long double rewrite applied to %s", types.Label(r.Types, t)))
	}
	return lltypes.Double
}
