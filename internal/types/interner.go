package types

import (
	"fmt"

	"fortio.org/safecast"
)

// CLongDoubleName is the name of the nominal struct that wraps the C "long double"
// of the MSVC runtime.
const CLongDoubleName = "__c_long_double"

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Byte    TypeID
	Ubyte   TypeID
	Short   TypeID
	Ushort  TypeID
	Int     TypeID
	Uint    TypeID
	Long    TypeID
	Ulong   TypeID
	Char    TypeID
	Wchar   TypeID
	Dchar   TypeID
	Float   TypeID
	Double  TypeID
	Real    TypeID
	Ifloat  TypeID
	Idouble TypeID
	Ireal   TypeID
	Cfloat  TypeID
	Cdouble TypeID
	Creal   TypeID
	VoidPtr TypeID

	// CLongDouble is the one nominal struct lowered by the long double rule.
	CLongDouble TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
	aliases  []AliasInfo
	fns      []FnInfo
	fnIndex  map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[typeKey]TypeID, 64),
		fnIndex: make(map[string]TypeID),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.aliases = append(in.aliases, AliasInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Byte = in.Intern(MakeInt(Width8))
	in.builtins.Ubyte = in.Intern(MakeUint(Width8))
	in.builtins.Short = in.Intern(MakeInt(Width16))
	in.builtins.Ushort = in.Intern(MakeUint(Width16))
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Uint = in.Intern(MakeUint(Width32))
	in.builtins.Long = in.Intern(MakeInt(Width64))
	in.builtins.Ulong = in.Intern(MakeUint(Width64))
	in.builtins.Char = in.Intern(MakeChar(Width8))
	in.builtins.Wchar = in.Intern(MakeChar(Width16))
	in.builtins.Dchar = in.Intern(MakeChar(Width32))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	in.builtins.Real = in.Intern(MakeFloat(Width80))
	in.builtins.Ifloat = in.Intern(MakeImaginary(Width32))
	in.builtins.Idouble = in.Intern(MakeImaginary(Width64))
	in.builtins.Ireal = in.Intern(MakeImaginary(Width80))
	in.builtins.Cfloat = in.Intern(MakeComplex(Width32))
	in.builtins.Cdouble = in.Intern(MakeComplex(Width64))
	in.builtins.Creal = in.Intern(MakeComplex(Width80))
	in.builtins.VoidPtr = in.Intern(MakePointer(in.builtins.Void))

	cld := in.RegisterStruct(CLongDoubleName, true)
	in.SetStructFields(cld, []StructField{{Name: "lngdbl", Type: in.builtins.Double}})
	in.builtins.CLongDouble = cld
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Resolve follows aliases to the underlying type.
func (in *Interner) Resolve(id TypeID) TypeID {
	if in == nil {
		return id
	}
	seen := make(map[TypeID]struct{}, 4)
	for id != NoTypeID {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
		tt, ok := in.Lookup(id)
		if !ok || tt.Kind != KindAlias {
			return id
		}
		target, ok := in.AliasTarget(id)
		if !ok {
			return id
		}
		id = target
	}
	return id
}

// IsCLongDouble reports whether id names the builtin long double wrapper.
// The comparison is nominal: a user struct with the same name and fields does not match.
func (in *Interner) IsCLongDouble(id TypeID) bool {
	if in == nil || id == NoTypeID {
		return false
	}
	return in.Resolve(id) == in.builtins.CLongDouble
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Payload uint32
}
