package abi

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
)

// Declare adds the lowered declaration of sig to m: win64cc, the physical
// parameters with their attributes, and a void result under struct return.
// The struct return pointer carries sret so the callee hands it back in RAX.
func Declare(m *ir.Module, sig *Signature) *ir.Func {
	retType := lltypes.Type(lltypes.Void)
	if !sig.SRet && sig.Ret != nil {
		retType = sig.Ret.LType
	}

	slots := PhysicalParams(sig)
	params := make([]*ir.Param, len(slots))
	for i, slot := range slots {
		p := ir.NewParam(slot.Name, slot.LType)
		p.Attrs = slot.Attrs.LLAttrs()
		if slot.Attrs.Has(AttrSRet) {
			p.Attrs = append([]ir.ParamAttribute{ir.SRet{Typ: sig.Ret.LType}}, p.Attrs...)
		}
		params[i] = p
	}

	f := m.NewFunc(sig.Name, retType, params...)
	f.CallingConv = enum.CallingConvWin64
	if sig.Variadic == VariadicC {
		f.Sig.Variadic = true
	}
	return f
}
