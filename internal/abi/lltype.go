package abi

import (
	"fmt"

	"fortio.org/safecast"
	lltypes "github.com/llir/llvm/ir/types"

	"abilower/internal/layout"
	"abilower/internal/types"
)

// LowerType maps a semantic type to its low-level representation before any
// ABI rewrite. Booleans are i1 as values and i8 in memory; pointers to a
// struct that is still being lowered become i8*.
func LowerType(le *layout.LayoutEngine, id types.TypeID) lltypes.Type {
	l := typeLowerer{le: le, visiting: make(map[types.TypeID]struct{}, 4)}
	return l.lower(id, false)
}

type typeLowerer struct {
	le       *layout.LayoutEngine
	visiting map[types.TypeID]struct{}
}

func (l *typeLowerer) lower(id types.TypeID, mem bool) lltypes.Type {
	typesIn := l.le.Types
	id = typesIn.Resolve(id)
	tt, ok := typesIn.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("abi: lowering unknown type#%d", id))
	}
	switch tt.Kind {
	case types.KindVoid:
		if mem {
			return lltypes.I8
		}
		return lltypes.Void
	case types.KindBool:
		if mem {
			return lltypes.I8
		}
		return lltypes.I1
	case types.KindInt, types.KindUint, types.KindChar:
		return lltypes.NewInt(uint64(tt.Width))
	case types.KindFloat, types.KindImaginary:
		return l.floatType(tt.Width)
	case types.KindComplex:
		part := l.floatType(tt.Width)
		return lltypes.NewStruct(part, part)
	case types.KindPointer:
		if _, busy := l.visiting[typesIn.Resolve(tt.Elem)]; busy {
			return lltypes.I8Ptr
		}
		return lltypes.NewPointer(l.lower(tt.Elem, true))
	case types.KindFn:
		return lltypes.I8Ptr
	case types.KindDelegate:
		return lltypes.NewStruct(lltypes.I8Ptr, lltypes.I8Ptr)
	case types.KindArray:
		elem := l.lower(tt.Elem, true)
		if tt.Count == types.ArrayDynamicLength {
			return lltypes.NewStruct(lltypes.I64, lltypes.NewPointer(elem))
		}
		n, err := safecast.Conv[uint64](tt.Count)
		if err != nil {
			panic(fmt.Errorf("abi: array length: %w", err))
		}
		return lltypes.NewArray(n, elem)
	case types.KindStruct:
		return l.structType(id)
	default:
		panic(fmt.Sprintf("abi: no low-level type for %s", tt.Kind))
	}
}

func (l *typeLowerer) floatType(width types.Width) lltypes.Type {
	switch width {
	case types.Width32:
		return lltypes.Float
	case types.Width80:
		if l.le.Target.RealIs80Bits() {
			return lltypes.X86_FP80
		}
		return lltypes.Double
	default:
		return lltypes.Double
	}
}

func (l *typeLowerer) structType(id types.TypeID) lltypes.Type {
	l.visiting[id] = struct{}{}
	defer delete(l.visiting, id)

	info, ok := l.le.Types.StructInfo(id)
	if !ok || info == nil || len(info.Fields) == 0 {
		// Empty structs occupy one byte.
		return lltypes.NewStruct(lltypes.I8)
	}
	fields := make([]lltypes.Type, len(info.Fields))
	for i, f := range info.Fields {
		fields[i] = l.lower(f.Type, true)
	}
	st := lltypes.NewStruct(fields...)
	if attrs, ok := l.le.Types.TypeLayoutAttrs(id); ok && attrs.Packed {
		st.Packed = true
	}
	return st
}
