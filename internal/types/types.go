package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindUint
	KindChar
	KindFloat
	KindImaginary
	KindComplex
	KindPointer
	KindArray
	KindStruct
	KindAlias
	KindFn
	KindDelegate
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindChar:
		return "char"
	case KindFloat:
		return "float"
	case KindImaginary:
		return "imaginary"
	case KindComplex:
		return "complex"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindAlias:
		return "alias"
	case KindFn:
		return "fn"
	case KindDelegate:
		return "delegate"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
//
// For complex numbers the width is the width of one component.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	// Width80 is the extended precision "real". Its storage is target dependent.
	Width80 Width = 80
)

// ArrayDynamicLength marks slices with unknown compile-time length.
const ArrayDynamicLength = ^uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for arrays (ArrayDynamicLength means slice)
	Width   Width  // for numeric primitives
	Payload uint32 // index into side tables (structs, aliases, fns)
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeChar describes a character type (char, wchar, dchar).
func MakeChar(width Width) Type {
	return Type{Kind: KindChar, Width: width}
}

// MakeFloat describes a floating-point type. Width80 is "real".
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeImaginary describes an imaginary floating-point type. Width80 is "ireal".
func MakeImaginary(width Width) Type {
	return Type{Kind: KindImaginary, Width: width}
}

// MakeComplex describes a complex number whose components have the given width.
func MakeComplex(width Width) Type {
	return Type{Kind: KindComplex, Width: width}
}

// MakeArray describes an array/slice of element type. Use ArrayDynamicLength
// for open-ended slices (T[]).
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakePointer describes a raw pointer.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeDelegate describes a context pointer paired with a function pointer.
func MakeDelegate(fn TypeID) Type {
	return Type{Kind: KindDelegate, Elem: fn}
}

// IsExtended reports whether the descriptor is the 80-bit real or ireal.
func (t Type) IsExtended() bool {
	return (t.Kind == KindFloat || t.Kind == KindImaginary) && t.Width == Width80
}

// IsFixedArray reports whether the descriptor is an array with a compile-time length.
func (t Type) IsFixedArray() bool {
	return t.Kind == KindArray && t.Count != ArrayDynamicLength
}
