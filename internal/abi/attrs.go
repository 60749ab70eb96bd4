package abi

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
)

// Attr is a pointer attribute attached to a lowered slot.
type Attr uint8

const (
	AttrNoAlias Attr = 1 << iota
	AttrNoCapture
	// AttrSRet marks the hidden struct return pointer. Its llir form needs the
	// pointee type, so Declare attaches it.
	AttrSRet
)

// Attrs is the attribute set of a slot.
type Attrs struct {
	set   Attr
	align int
}

// Clear drops every attribute. It returns the receiver for chaining.
func (a *Attrs) Clear() *Attrs {
	a.set = 0
	a.align = 0
	return a
}

// Add adds one attribute.
func (a *Attrs) Add(attr Attr) *Attrs {
	a.set |= attr
	return a
}

// AddAlignment records the pointee alignment in bytes.
func (a *Attrs) AddAlignment(align int) *Attrs {
	a.align = align
	return a
}

// Has reports whether the attribute is present.
func (a Attrs) Has(attr Attr) bool {
	return a.set&attr != 0
}

// Align returns the recorded alignment, 0 when none.
func (a Attrs) Align() int {
	return a.align
}

// Empty reports whether no attribute is set.
func (a Attrs) Empty() bool {
	return a.set == 0 && a.align == 0
}

// LLAttrs converts the set to llir parameter attributes. AttrSRet is left
// out.
func (a Attrs) LLAttrs() []ir.ParamAttribute {
	var out []ir.ParamAttribute
	if a.Has(AttrNoAlias) {
		out = append(out, enum.ParamAttrNoAlias)
	}
	if a.Has(AttrNoCapture) {
		out = append(out, enum.ParamAttrNoCapture)
	}
	if a.align > 0 {
		n, err := safecast.Conv[uint64](a.align)
		if err != nil {
			panic(fmt.Errorf("abi: alignment %d: %w", a.align, err))
		}
		out = append(out, ir.Align(n))
	}
	return out
}

func (a Attrs) String() string {
	parts := make([]string, 0, 4)
	if a.Has(AttrSRet) {
		parts = append(parts, "sret")
	}
	if a.Has(AttrNoAlias) {
		parts = append(parts, "noalias")
	}
	if a.Has(AttrNoCapture) {
		parts = append(parts, "nocapture")
	}
	if a.align > 0 {
		parts = append(parts, fmt.Sprintf("align %d", a.align))
	}
	return strings.Join(parts, " ")
}
