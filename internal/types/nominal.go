package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StructField is one field of a struct declaration.
type StructField struct {
	Name   string
	Type   TypeID
	Layout FieldLayoutAttrs
}

// StructInfo is the declaration behind a struct TypeID. Every registration
// gets its own TypeID, so two structs with identical fields stay distinct.
type StructInfo struct {
	Name   string
	Fields []StructField
	// POD is false for structs with copy constructors, destructors or
	// other non-trivial copy semantics.
	POD   bool
	Attrs LayoutAttrs
}

// AliasInfo is the declaration behind an alias TypeID.
type AliasInfo struct {
	Name   string
	Target TypeID
}

// RegisterStruct declares a struct without fields; see SetStructFields.
func (in *Interner) RegisterStruct(name string, pod bool) TypeID {
	in.structs = append(in.structs, StructInfo{Name: name, POD: pod})
	return in.internRaw(Type{Kind: KindStruct, Payload: lastSlot(in.structs)})
}

// SetStructFields replaces the fields of struct id. Structs are registered
// before their fields are known so that declarations may refer to each other.
func (in *Interner) SetStructFields(id TypeID, fields []StructField) {
	if info := in.structInfo(id); info != nil {
		info.Fields = slices.Clone(fields)
	}
}

// StructInfo returns the declaration of struct id.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	info := in.structInfo(id)
	return info, info != nil
}

// IsPOD reports whether id, after alias resolution, is plain old data. Only
// structs can be non-POD.
func (in *Interner) IsPOD(id TypeID) bool {
	if info := in.structInfo(in.Resolve(id)); info != nil {
		return info.POD
	}
	return true
}

// RegisterAlias declares an alias whose target is set later with SetAliasTarget.
func (in *Interner) RegisterAlias(name string) TypeID {
	in.aliases = append(in.aliases, AliasInfo{Name: name})
	return in.internRaw(Type{Kind: KindAlias, Payload: lastSlot(in.aliases)})
}

func (in *Interner) SetAliasTarget(id, target TypeID) {
	if info := in.aliasInfo(id); info != nil {
		info.Target = target
	}
}

// AliasTarget returns what alias id stands for, one level deep.
func (in *Interner) AliasTarget(id TypeID) (TypeID, bool) {
	info := in.aliasInfo(id)
	if info == nil || info.Target == NoTypeID {
		return NoTypeID, false
	}
	return info.Target, true
}

func (in *Interner) AliasInfo(id TypeID) (*AliasInfo, bool) {
	info := in.aliasInfo(id)
	return info, info != nil
}

// slot returns the side-table index of id when it has the given kind.
// Slot 0 of every side table is reserved, so a zero payload is never valid.
func (in *Interner) slot(id TypeID, kind Kind) (int, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != kind || tt.Payload == 0 {
		return 0, false
	}
	return int(tt.Payload), true
}

func (in *Interner) structInfo(id TypeID) *StructInfo {
	if i, ok := in.slot(id, KindStruct); ok && i < len(in.structs) {
		return &in.structs[i]
	}
	return nil
}

func (in *Interner) aliasInfo(id TypeID) *AliasInfo {
	if i, ok := in.slot(id, KindAlias); ok && i < len(in.aliases) {
		return &in.aliases[i]
	}
	return nil
}

func lastSlot[T any](table []T) uint32 {
	slot, err := safecast.Conv[uint32](len(table) - 1)
	if err != nil {
		panic(fmt.Errorf("types: side table overflow: %w", err))
	}
	return slot
}
