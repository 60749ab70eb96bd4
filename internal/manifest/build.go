package manifest

import (
	"fmt"
	"strings"

	"abilower/internal/abi"
	"abilower/internal/layout"
	"abilower/internal/types"
)

// Program is a manifest resolved against a target: the interned types, the
// layout engine and one unlowered signature per [[func]], in declaration order.
type Program struct {
	Target     layout.Target
	Types      *types.Interner
	Layout     *layout.LayoutEngine
	Signatures []*abi.Signature
}

// Build resolves m for the given target triple (see Manifest.Triple).
func (m *Manifest) Build(triple string) (*Program, error) {
	target, err := layout.ParseTarget(m.Triple(triple))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	in := types.NewInterner()
	le := layout.New(target, in)
	sc := newScope(in)

	// names first so declarations may refer to each other in any order
	structIDs := make([]types.TypeID, len(m.Struct))
	for i, s := range m.Struct {
		if _, builtin := sc.builtin(s.Name); builtin {
			return nil, fmt.Errorf("%s: struct %q shadows a builtin type", m.Path, s.Name)
		}
		pod := s.POD == nil || *s.POD
		structIDs[i] = in.RegisterStruct(s.Name, pod)
		sc.nominals[s.Name] = structIDs[i]
	}
	aliasIDs := make([]types.TypeID, len(m.Alias))
	for i, a := range m.Alias {
		if _, builtin := sc.builtin(a.Name); builtin {
			return nil, fmt.Errorf("%s: alias %q shadows a builtin type", m.Path, a.Name)
		}
		aliasIDs[i] = in.RegisterAlias(a.Name)
		sc.nominals[a.Name] = aliasIDs[i]
	}

	for i, a := range m.Alias {
		aliased, err := sc.ParseType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: alias %q: %w", m.Path, a.Name, err)
		}
		in.SetAliasTarget(aliasIDs[i], aliased)
	}
	if err := checkAliasCycles(in, m.Alias, aliasIDs); err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}

	for i, s := range m.Struct {
		fields := make([]types.StructField, len(s.Fields))
		for j, f := range s.Fields {
			ft, err := sc.ParseType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: struct %q: field %q: %w", m.Path, s.Name, f.Name, err)
			}
			fields[j] = types.StructField{Name: f.Name, Type: ft, Layout: types.FieldLayoutAttrs{Align: f.Align}}
		}
		in.SetStructFields(structIDs[i], fields)
		in.SetTypeLayoutAttrs(structIDs[i], types.LayoutAttrs{Packed: s.Packed, Align: s.Align})
	}
	for i, s := range m.Struct {
		if _, err := le.LayoutOf(structIDs[i]); err != nil {
			return nil, fmt.Errorf("%s: struct %q: %w", m.Path, s.Name, err)
		}
	}

	prog := &Program{Target: target, Types: in, Layout: le, Signatures: make([]*abi.Signature, 0, len(m.Func))}
	for _, f := range m.Func {
		sig, err := buildSignature(sc, le, f)
		if err != nil {
			return nil, fmt.Errorf("%s: func %q: %w", m.Path, f.Name, err)
		}
		prog.Signatures = append(prog.Signatures, sig)
	}
	return prog, nil
}

func buildSignature(sc *scope, le *layout.LayoutEngine, f FuncDecl) (*abi.Signature, error) {
	linkage, err := abi.ParseLinkage(f.Linkage)
	if err != nil {
		return nil, err
	}
	variadic, err := parseVariadic(f.Variadic)
	if err != nil {
		return nil, err
	}
	retSrc := f.Ret
	if strings.TrimSpace(retSrc) == "" {
		retSrc = "void"
	}
	ret, err := sc.ParseType(retSrc)
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}
	if f.RetRef && ret == sc.in.Builtins().Void {
		return nil, fmt.Errorf("void cannot be returned by ref")
	}
	if err := checkSized(le, ret, f.RetRef); err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}

	sig := &abi.Signature{
		Name:     f.Name,
		Linkage:  linkage,
		Variadic: variadic,
		HasThis:  f.This,
		Ret:      abi.NewArg(le, "", ret, f.RetRef),
		Args:     make([]*abi.Arg, 0, len(f.Params)),
	}
	for i, p := range f.Params {
		pt, err := sc.ParseType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		if pt == sc.in.Builtins().Void {
			return nil, fmt.Errorf("param %d: void parameter", i)
		}
		if err := checkSized(le, pt, p.Ref); err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		sig.Args = append(sig.Args, abi.NewArg(le, p.Name, pt, p.Ref))
	}
	return sig, nil
}

// checkSized makes sure the lowering core only sees types with a layout.
func checkSized(le *layout.LayoutEngine, t types.TypeID, byRef bool) error {
	if byRef {
		return nil
	}
	if tt, ok := le.Types.Lookup(le.Types.Resolve(t)); ok && tt.Kind == types.KindVoid {
		return nil
	}
	if _, err := le.LayoutOf(t); err != nil {
		return err
	}
	return nil
}

func parseVariadic(s string) (abi.Variadic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return abi.VariadicNone, nil
	case "c":
		return abi.VariadicC, nil
	case "typesafe", "d":
		return abi.VariadicTypesafe, nil
	default:
		return 0, fmt.Errorf("unknown variadic style %q (expected none|c|typesafe)", s)
	}
}

func checkAliasCycles(in *types.Interner, decls []AliasDecl, ids []types.TypeID) error {
	for i, id := range ids {
		seen := map[types.TypeID]struct{}{id: {}}
		cur := id
		for {
			next, ok := in.AliasTarget(cur)
			if !ok {
				break
			}
			if _, loop := seen[next]; loop {
				return fmt.Errorf("alias %q refers to itself", decls[i].Name)
			}
			seen[next] = struct{}{}
			cur = next
		}
	}
	return nil
}
