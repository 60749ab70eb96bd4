package abi

import (
	"fmt"
	"slices"

	lltypes "github.com/llir/llvm/ir/types"
)

// SlotKind tells hidden slots apart from declared parameters.
type SlotKind uint8

const (
	SlotParam SlotKind = iota
	SlotThis
	SlotSRet
)

func (k SlotKind) String() string {
	switch k {
	case SlotThis:
		return "this"
	case SlotSRet:
		return "sret"
	default:
		return "param"
	}
}

// Windows x64 register and stack layout of a call.
const (
	ShadowSpace  = 32
	StackSlot    = 8
	RegisterArgs = 4
)

var (
	win64IntArgRegs   = [RegisterArgs]string{"rcx", "rdx", "r8", "r9"}
	win64FloatArgRegs = [RegisterArgs]string{"xmm0", "xmm1", "xmm2", "xmm3"}
)

// Location is where a physical slot lives at the call boundary.
type Location struct {
	Reg         string // empty for stack slots
	StackOffset int    // offset from RSP at the call, valid when Reg is empty
}

func (l Location) String() string {
	if l.Reg != "" {
		return l.Reg
	}
	return fmt.Sprintf("[rsp+%d]", l.StackOffset)
}

// PhysicalSlot is one entry of the final argument list.
type PhysicalSlot struct {
	Kind  SlotKind
	Index int // index into Signature.Args for SlotParam, -1 otherwise
	Name  string
	LType lltypes.Type
	Attrs Attrs
	Loc   Location
}

// PhysicalParams returns the lowered argument list in the order code
// generation emits it: the hidden struct return pointer and the receiver
// (swapped for C++ linkage), then the declared parameters, reversed when the
// signature asks for it. Each slot is assigned its Windows x64 location:
// the first four slots by position in RCX/RDX/R8/R9, or XMM0-3 for float and
// double values, the rest on the stack above the shadow space.
func PhysicalParams(sig *Signature) []PhysicalSlot {
	slots := make([]PhysicalSlot, 0, len(sig.Args)+2)

	var this, sret *PhysicalSlot
	if sig.HasThis {
		this = &PhysicalSlot{Kind: SlotThis, Index: -1, Name: "this", LType: lltypes.I8Ptr}
	}
	if sig.SRet && sig.Ret != nil {
		sret = &PhysicalSlot{Kind: SlotSRet, Index: -1, Name: ".sret_arg", LType: lltypes.NewPointer(sig.Ret.LType)}
		sret.Attrs.Add(AttrSRet).Add(AttrNoAlias)
	}
	switch {
	case this != nil && sret != nil && sig.ThisBeforeSRet:
		slots = append(slots, *this, *sret)
	default:
		if sret != nil {
			slots = append(slots, *sret)
		}
		if this != nil {
			slots = append(slots, *this)
		}
	}

	params := make([]PhysicalSlot, len(sig.Args))
	for i, arg := range sig.Args {
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("_param_%d", i)
		}
		params[i] = PhysicalSlot{Kind: SlotParam, Index: i, Name: name, LType: arg.LType, Attrs: arg.Attrs}
	}
	if sig.ReverseParams {
		slices.Reverse(params)
	}
	slots = append(slots, params...)

	for i := range slots {
		slots[i].Loc = win64Location(i, slots[i].LType)
	}
	return slots
}

// Position returns the index of the first slot of the given kind, or -1.
func Position(slots []PhysicalSlot, kind SlotKind) int {
	return slices.IndexFunc(slots, func(s PhysicalSlot) bool { return s.Kind == kind })
}

func win64Location(pos int, ltype lltypes.Type) Location {
	if pos < RegisterArgs {
		if isSSEScalar(ltype) {
			return Location{Reg: win64FloatArgRegs[pos]}
		}
		return Location{Reg: win64IntArgRegs[pos]}
	}
	return Location{StackOffset: ShadowSpace + (pos-RegisterArgs)*StackSlot}
}

// ReturnLocation names the register holding the result: RAX for integers,
// pointers and the struct return address, XMM0 for float and double, ST0
// for x87 reals. It is empty for void.
func ReturnLocation(sig *Signature) string {
	switch {
	case sig.SRet:
		return "rax"
	case sig.isVoid():
		return ""
	case isX87(sig.Ret.LType):
		return "st0"
	case isSSEScalar(sig.Ret.LType):
		return "xmm0"
	default:
		return "rax"
	}
}

// CallStackSize is the stack space a caller reserves for sig: the shadow
// space plus the stack slots, rounded up to 16 bytes.
func CallStackSize(sig *Signature) int {
	n := len(PhysicalParams(sig))
	size := ShadowSpace
	if n > RegisterArgs {
		size += (n - RegisterArgs) * StackSlot
	}
	return (size + 15) &^ 15
}

func isSSEScalar(t lltypes.Type) bool {
	ft, ok := t.(*lltypes.FloatType)
	return ok && (ft.Kind == lltypes.FloatKindFloat || ft.Kind == lltypes.FloatKindDouble)
}

func isX87(t lltypes.Type) bool {
	ft, ok := t.(*lltypes.FloatType)
	return ok && ft.Kind == lltypes.FloatKindX86_FP80
}
