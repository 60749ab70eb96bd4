package layout

import (
	"fmt"
	"strings"

	"abilower/internal/types"
)

// LayoutErrorKind classifies layout failures.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized is a struct that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	LayoutErrUnknownType
	LayoutErrUnsized
	LayoutErrConflictingAttrs
	// LayoutErrTooLarge is a type whose size overflows an int.
	LayoutErrTooLarge
)

// LayoutError reports why a type has no layout. Types are printed with
// their declared names.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Cycle []types.TypeID // LayoutErrRecursiveUnsized only

	types *types.Interner
}

func (e *LayoutError) name(id types.TypeID) string {
	if e.types == nil || id == types.NoTypeID {
		return fmt.Sprintf("type#%d", id)
	}
	return types.Label(e.types, id)
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		names := make([]string, len(e.Cycle))
		for i, id := range e.Cycle {
			names[i] = e.name(id)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(names, " -> "))
	case LayoutErrUnknownType:
		return fmt.Sprintf("unknown type %s", e.name(e.Type))
	case LayoutErrUnsized:
		return fmt.Sprintf("%s has no size", e.name(e.Type))
	case LayoutErrConflictingAttrs:
		return fmt.Sprintf("%s: packed conflicts with explicit alignment", e.name(e.Type))
	case LayoutErrTooLarge:
		return fmt.Sprintf("%s is too large", e.name(e.Type))
	default:
		return fmt.Sprintf("layout error kind=%d for %s", e.Kind, e.name(e.Type))
	}
}
