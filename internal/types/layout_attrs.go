package types

// LayoutAttrs are the layout attributes of a struct declaration. Packed
// removes all padding; Align raises the struct's alignment. Zero values mean
// natural layout. The manifest rejects Packed together with Align.
type LayoutAttrs struct {
	Packed bool
	Align  int
}

// FieldLayoutAttrs raise the alignment of one field; zero means natural.
type FieldLayoutAttrs struct {
	Align int
}

// TypeLayoutAttrs returns the attributes recorded for struct id. ok is false
// for other types and for structs with natural layout.
func (in *Interner) TypeLayoutAttrs(id TypeID) (LayoutAttrs, bool) {
	info := in.structInfo(id)
	if info == nil || info.Attrs == (LayoutAttrs{}) {
		return LayoutAttrs{}, false
	}
	return info.Attrs, true
}

// SetTypeLayoutAttrs records attrs for struct id. Other types are ignored.
func (in *Interner) SetTypeLayoutAttrs(id TypeID, attrs LayoutAttrs) {
	if info := in.structInfo(id); info != nil {
		info.Attrs = attrs
	}
}
