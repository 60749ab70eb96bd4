package types

import (
	"fmt"
	"strings"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return formatIntType(tt.Width, true)
	case KindUint:
		return formatIntType(tt.Width, false)
	case KindChar:
		switch tt.Width {
		case Width16:
			return "wchar"
		case Width32:
			return "dchar"
		default:
			return "char"
		}
	case KindFloat:
		return formatFloatType(tt.Width, "")
	case KindImaginary:
		return formatFloatType(tt.Width, "i")
	case KindComplex:
		return formatFloatType(tt.Width, "c")
	case KindPointer:
		return labelDepth(typesIn, tt.Elem, depth+1) + "*"
	case KindArray:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.Count == ArrayDynamicLength {
			return elem + "[]"
		}
		return fmt.Sprintf("%s[%d]", elem, tt.Count)
	case KindStruct:
		info, ok := typesIn.StructInfo(id)
		if !ok || info == nil || info.Name == "" {
			return "struct?"
		}
		return info.Name
	case KindAlias:
		info, ok := typesIn.AliasInfo(id)
		if !ok || info == nil || info.Name == "" {
			return "alias?"
		}
		return info.Name
	case KindFn, KindDelegate:
		fnID := id
		prefix := "function"
		if tt.Kind == KindDelegate {
			fnID = tt.Elem
			prefix = "delegate"
		}
		info, ok := typesIn.FnInfo(fnID)
		if !ok || info == nil {
			return prefix
		}
		params := make([]string, len(info.Params))
		for i, param := range info.Params {
			params[i] = labelDepth(typesIn, param, depth+1)
		}
		ret := labelDepth(typesIn, info.Result, depth+1)
		return ret + " " + prefix + "(" + strings.Join(params, ", ") + ")"
	default:
		return "?"
	}
}

func formatIntType(width Width, signed bool) string {
	var name string
	switch width {
	case Width8:
		name = "byte"
	case Width16:
		name = "short"
	case Width32:
		name = "int"
	case Width64:
		name = "long"
	default:
		name = fmt.Sprintf("int%d", width)
	}
	if !signed {
		return "u" + name
	}
	return name
}

func formatFloatType(width Width, prefix string) string {
	switch width {
	case Width32:
		return prefix + "float"
	case Width64:
		return prefix + "double"
	case Width80:
		return prefix + "real"
	default:
		return fmt.Sprintf("%sfloat%d", prefix, width)
	}
}
