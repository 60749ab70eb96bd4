package layout

import (
	"math"

	"fortio.org/safecast"

	"abilower/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, path []types.TypeID) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok || id == types.NoTypeID {
		return unsized, e.fail(LayoutErrUnknownType, id)
	}

	switch tt.Kind {
	case types.KindVoid:
		return unsized, nil

	case types.KindBool:
		return TypeLayout{Size: 1, Align: 1}, nil

	case types.KindInt, types.KindUint, types.KindChar:
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case types.KindFloat, types.KindImaginary:
		return e.floatLayout(tt.Width), nil

	case types.KindComplex:
		part := e.floatLayout(tt.Width)
		return TypeLayout{Size: 2 * part.Size, Align: part.Align}, nil

	case types.KindPointer, types.KindFn:
		return e.ptrLayout(), nil

	case types.KindDelegate:
		// context pointer + function pointer
		ptr := e.ptrLayout()
		return TypeLayout{Size: 2 * ptr.Size, Align: ptr.Align}, nil

	case types.KindArray:
		if tt.Count == types.ArrayDynamicLength {
			// length + data pointer
			ptr := e.ptrLayout()
			return TypeLayout{Size: 2 * ptr.Size, Align: ptr.Align}, nil
		}
		return e.arrayFixedLayout(id, tt.Elem, tt.Count, path)

	case types.KindStruct:
		return e.structLayout(id, path)

	default:
		return unsized, e.fail(LayoutErrUnsized, id)
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

// floatLayout handles float, double and real. The x87 real occupies 10 bytes
// padded to 16; under MSVC it is a plain double.
func (e *LayoutEngine) floatLayout(width types.Width) TypeLayout {
	if width == types.Width80 {
		if e.Target.RealIs80Bits() {
			return TypeLayout{Size: 16, Align: 16}
		}
		return scalarLayoutBytes(8)
	}
	return scalarLayoutBytes(int(width) / 8)
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return unsized
	}
	return TypeLayout{Size: size, Align: size}
}

// roundUp reports false when the rounded size does not fit in an int.
func roundUp(n, align int) (int, bool) {
	if align <= 1 {
		return n, true
	}
	if n > math.MaxInt-(align-1) {
		return 0, false
	}
	return (n + align - 1) / align * align, true
}

func addSize(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}

func mulSize(a, n int) (int, bool) {
	if n != 0 && a > math.MaxInt/n {
		return 0, false
	}
	return a * n, true
}

// arrayFixedLayout lays out length elements at the element's stride.
func (e *LayoutEngine) arrayFixedLayout(id, elem types.TypeID, length uint32, path []types.TypeID) (TypeLayout, *LayoutError) {
	el, err := e.layoutOf(elem, path)
	if err != nil {
		return unsized, err
	}
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		return unsized, e.fail(LayoutErrTooLarge, id)
	}
	align := max(el.Align, 1)
	stride, ok := roundUp(el.Size, align)
	if !ok {
		return unsized, e.fail(LayoutErrTooLarge, id)
	}
	size, ok := mulSize(stride, n)
	if !ok {
		return unsized, e.fail(LayoutErrTooLarge, id)
	}
	return TypeLayout{Size: size, Align: align}, nil
}

// structLayout places fields in declaration order. Packed structs get no
// padding and alignment 1.
func (e *LayoutEngine) structLayout(id types.TypeID, path []types.TypeID) (TypeLayout, *LayoutError) {
	attrs, _ := e.Types.TypeLayoutAttrs(id)
	if attrs.Packed && attrs.Align > 0 {
		return unsized, e.fail(LayoutErrConflictingAttrs, id)
	}

	info, ok := e.Types.StructInfo(id)
	if !ok || info == nil || len(info.Fields) == 0 {
		// An empty struct still occupies one byte.
		return TypeLayout{Size: 1, Align: 1}, nil
	}
	l := TypeLayout{
		Align:        1,
		FieldOffsets: make([]int, len(info.Fields)),
		FieldAligns:  make([]int, len(info.Fields)),
	}
	for i, f := range info.Fields {
		fl, err := e.layoutOf(f.Type, path)
		if err != nil {
			return unsized, err
		}
		fAlign := 1
		if !attrs.Packed {
			fAlign = max(fl.Align, f.Layout.Align, 1)
		}
		offset, ok := roundUp(l.Size, fAlign)
		if ok {
			l.Size, ok = addSize(offset, fl.Size)
		}
		if !ok {
			return unsized, e.fail(LayoutErrTooLarge, id)
		}
		l.FieldOffsets[i], l.FieldAligns[i] = offset, fAlign
		l.Align = max(l.Align, fAlign)
	}
	l.Align = max(l.Align, attrs.Align)
	size, ok := roundUp(l.Size, l.Align)
	if !ok {
		return unsized, e.fail(LayoutErrTooLarge, id)
	}
	l.Size = size
	return l, nil
}
