package abi_test

import (
	"abilower/internal/abi"
	"abilower/internal/layout"
	"abilower/internal/types"
)

type testEnv struct {
	in  *types.Interner
	le  *layout.LayoutEngine
	w64 *abi.Win64
}

func newEnv(target layout.Target) *testEnv {
	in := types.NewInterner()
	le := layout.New(target, in)
	return &testEnv{in: in, le: le, w64: abi.NewWin64(le)}
}

func msvc() *testEnv { return newEnv(layout.X86_64WindowsMSVC()) }
func gnu() *testEnv  { return newEnv(layout.X86_64WindowsGNU()) }

func (e *testEnv) b() types.Builtins { return e.in.Builtins() }

func (e *testEnv) structOf(name string, pod bool, fields ...types.TypeID) types.TypeID {
	id := e.in.RegisterStruct(name, pod)
	sf := make([]types.StructField, len(fields))
	for i, f := range fields {
		sf[i] = types.StructField{Name: string(rune('a' + i)), Type: f}
	}
	e.in.SetStructFields(id, sf)
	return id
}

func (e *testEnv) bytes(n uint32) types.TypeID {
	return e.in.Intern(types.MakeArray(e.b().Ubyte, n))
}

func (e *testEnv) arg(name string, t types.TypeID) *abi.Arg {
	return abi.NewArg(e.le, name, t, false)
}

func (e *testEnv) sig(name string, linkage abi.Linkage, ret types.TypeID, params ...types.TypeID) *abi.Signature {
	sig := &abi.Signature{
		Name:    name,
		Linkage: linkage,
		Ret:     e.arg("", ret),
	}
	for i, p := range params {
		sig.Args = append(sig.Args, e.arg(string(rune('a'+i)), p))
	}
	return sig
}
