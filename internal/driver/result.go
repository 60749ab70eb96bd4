package driver

import (
	"abilower/internal/abi"
	"abilower/internal/manifest"
	"abilower/internal/types"
)

// Current schema version - increment when the Batch format changes
const batchSchemaVersion uint16 = 1

// Batch is the lowered form of a whole manifest, ready to be handed to code
// generation or printed.
type Batch struct {
	Schema     uint16            `json:"schema" msgpack:"schema"`
	Triple     string            `json:"triple" msgpack:"triple"`
	Env        string            `json:"env" msgpack:"env"`
	ABI        string            `json:"abi" msgpack:"abi"`
	Signatures []SignatureResult `json:"signatures" msgpack:"signatures"`
}

// SignatureResult records every decision taken for one signature.
type SignatureResult struct {
	Name     string `json:"name" msgpack:"name"`
	Linkage  string `json:"linkage" msgpack:"linkage"`
	Variadic string `json:"variadic" msgpack:"variadic"`
	HasThis  bool   `json:"this,omitempty" msgpack:"this,omitempty"`

	SRet             bool `json:"sret" msgpack:"sret"`
	ReturnInRegister bool `json:"return_in_register" msgpack:"return_in_register"`
	ThisBeforeSRet   bool `json:"this_before_sret" msgpack:"this_before_sret"`
	ReverseParams    bool `json:"reverse_params" msgpack:"reverse_params"`

	ReturnLocation string `json:"return_location,omitempty" msgpack:"return_location,omitempty"`
	StackSize      int    `json:"stack_size" msgpack:"stack_size"`

	Ret      SlotResult       `json:"ret" msgpack:"ret"`
	Params   []SlotResult     `json:"params" msgpack:"params"`
	Physical []PhysicalResult `json:"physical" msgpack:"physical"`
}

// SlotResult is one declared slot after lowering.
type SlotResult struct {
	Name     string `json:"name,omitempty" msgpack:"name,omitempty"`
	Type     string `json:"type" msgpack:"type"`
	ByRef    bool   `json:"ref,omitempty" msgpack:"ref,omitempty"`
	LType    string `json:"ltype" msgpack:"ltype"`
	Strategy string `json:"strategy" msgpack:"strategy"`
	Align    int    `json:"align,omitempty" msgpack:"align,omitempty"`
	Width    int    `json:"width,omitempty" msgpack:"width,omitempty"`
	Attrs    string `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
}

// PhysicalResult is one entry of the final argument list.
type PhysicalResult struct {
	Kind     string `json:"kind" msgpack:"kind"`
	Index    int    `json:"index" msgpack:"index"`
	Name     string `json:"name" msgpack:"name"`
	LType    string `json:"ltype" msgpack:"ltype"`
	Attrs    string `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location string `json:"location" msgpack:"location"`
}

// NewBatch snapshots the lowered signatures of prog.
func NewBatch(prog *manifest.Program, target abi.TargetABI) *Batch {
	b := &Batch{
		Schema:     batchSchemaVersion,
		Triple:     prog.Target.Triple,
		Env:        prog.Target.Env.String(),
		ABI:        target.Name(),
		Signatures: make([]SignatureResult, len(prog.Signatures)),
	}
	for i, sig := range prog.Signatures {
		b.Signatures[i] = describe(prog.Types, sig)
	}
	return b
}

func describe(in *types.Interner, sig *abi.Signature) SignatureResult {
	r := SignatureResult{
		Name:             sig.Name,
		Linkage:          sig.Linkage.String(),
		Variadic:         sig.Variadic.String(),
		HasThis:          sig.HasThis,
		SRet:             sig.SRet,
		ReturnInRegister: sig.ReturnInRegister,
		ThisBeforeSRet:   sig.ThisBeforeSRet,
		ReverseParams:    sig.ReverseParams,
		ReturnLocation:   abi.ReturnLocation(sig),
		StackSize:        abi.CallStackSize(sig),
		Params:           make([]SlotResult, len(sig.Args)),
	}
	if sig.Ret != nil {
		r.Ret = describeSlot(in, sig.Ret)
	}
	for i, arg := range sig.Args {
		r.Params[i] = describeSlot(in, arg)
	}
	slots := abi.PhysicalParams(sig)
	r.Physical = make([]PhysicalResult, len(slots))
	for i, s := range slots {
		r.Physical[i] = PhysicalResult{
			Kind:     s.Kind.String(),
			Index:    s.Index,
			Name:     s.Name,
			LType:    s.LType.String(),
			Attrs:    s.Attrs.String(),
			Location: s.Loc.String(),
		}
	}
	return r
}

func describeSlot(in *types.Interner, arg *abi.Arg) SlotResult {
	st := arg.Strategy()
	return SlotResult{
		Name:     arg.Name,
		Type:     types.Label(in, arg.Type),
		ByRef:    arg.ByRef,
		LType:    arg.LType.String(),
		Strategy: st.Kind.String(),
		Align:    st.Align,
		Width:    st.Width,
		Attrs:    arg.Attrs.String(),
	}
}
