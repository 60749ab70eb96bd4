package layout

import (
	"slices"

	"abilower/internal/types"
)

// TypeLayout is the size and alignment of a type on one Target. Struct
// layouts also carry per-field offsets and alignments.
type TypeLayout struct {
	Size  int
	Align int

	FieldOffsets []int
	FieldAligns  []int
}

// unsized is returned alongside every error.
var unsized = TypeLayout{Size: 0, Align: 1}

// LayoutEngine answers size and alignment queries for one target. Results
// are cached per canonical TypeID, so struct fields and layout attributes must
// be final before the first query; after that the engine is safe for
// concurrent use.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a LayoutEngine for target over typesIn.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{Target: target, Types: typesIn, cache: newCache()}
}

// LayoutOf computes (or recalls) the layout of t. Recursive value types
// yield a *LayoutError of kind LayoutErrRecursiveUnsized.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	l, err := e.layoutOf(t, nil)
	if err != nil {
		return l, err
	}
	return l, nil
}

// layoutOf threads path, the chain of types currently being laid out, so
// that a type reached again through its own fields is reported as a cycle.
func (e *LayoutEngine) layoutOf(t types.TypeID, path []types.TypeID) (TypeLayout, *LayoutError) {
	id := e.Types.Resolve(t)
	if entry, ok := e.cache.get(id); ok {
		return entry.layout, entry.err
	}
	if i := slices.Index(path, id); i >= 0 {
		cycle := append(slices.Clone(path[i:]), id)
		return unsized, e.fail(LayoutErrRecursiveUnsized, id, cycle...)
	}

	l, err := e.computeLayout(id, append(path, id))
	e.cache.put(id, l, err)
	return l, err
}

func (e *LayoutEngine) fail(kind LayoutErrorKind, id types.TypeID, cycle ...types.TypeID) *LayoutError {
	return &LayoutError{Kind: kind, Type: id, Cycle: cycle, types: e.Types}
}

// SizeOf returns the size of t in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment of t in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// MustSizeOf is SizeOf for types the manifest builder already validated.
func (e *LayoutEngine) MustSizeOf(t types.TypeID) int {
	size, err := e.SizeOf(t)
	if err != nil {
		panic(err)
	}
	return size
}

// MustAlignOf is AlignOf for types the manifest builder already validated.
func (e *LayoutEngine) MustAlignOf(t types.TypeID) int {
	align, err := e.AlignOf(t)
	if err != nil {
		panic(err)
	}
	return align
}
