package types

import (
	"fmt"
	"slices"
	"strings"
)

// FnInfo describes a function type: parameter types in order and the result.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// key identifies a function shape inside the interner.
func (f FnInfo) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d(", f.Result)
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", p)
	}
	sb.WriteByte(')')
	return sb.String()
}

// RegisterFn returns the function type with the given shape, creating it on
// first use. Function types are structural: equal shapes share a TypeID.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	info := FnInfo{Params: slices.Clone(params), Result: result}
	k := info.key()
	if id, ok := in.fnIndex[k]; ok {
		return id
	}
	in.fns = append(in.fns, info)
	id := in.internRaw(Type{Kind: KindFn, Payload: lastSlot(in.fns)})
	in.fnIndex[k] = id
	return id
}

// FnInfo returns the shape of function type id.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	i, ok := in.slot(id, KindFn)
	if !ok || i >= len(in.fns) {
		return nil, false
	}
	return &in.fns[i], true
}
