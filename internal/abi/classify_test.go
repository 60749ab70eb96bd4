package abi_test

import (
	"testing"

	"abilower/internal/abi"
	"abilower/internal/types"
)

func TestCanRewriteAsIntOnlyForRegisterSizes(t *testing.T) {
	env := msvc()
	c := env.w64.Classifier()
	for n := uint32(1); n <= 40; n++ {
		id := env.bytes(n)
		want := n == 1 || n == 2 || n == 4 || n == 8
		if got := c.CanRewriteAsInt(id); got != want {
			t.Fatalf("ubyte[%d]: CanRewriteAsInt = %v, want %v", n, got, want)
		}
		// every fixed array is an aggregate, so the two predicates are complementary
		if got := c.PassedWithByvalSemantics(id); got == want {
			t.Fatalf("ubyte[%d]: PassedWithByvalSemantics = %v", n, got)
		}
	}
}

func TestIsAggregate(t *testing.T) {
	env := msvc()
	b := env.b()
	c := env.w64.Classifier()
	fn := env.in.RegisterFn(nil, b.Void)
	alias := env.in.RegisterAlias("Pair")
	pair := env.structOf("PairImpl", true, b.Int, b.Int)
	env.in.SetAliasTarget(alias, pair)

	cases := []struct {
		name string
		id   types.TypeID
		want bool
	}{
		{"struct", pair, true},
		{"alias of struct", alias, true},
		{"fixed array", env.in.Intern(types.MakeArray(b.Int, 2)), true},
		{"delegate", env.in.Intern(types.MakeDelegate(fn)), true},
		{"cfloat", b.Cfloat, true},
		{"creal", b.Creal, true},
		{"slice", env.in.Intern(types.MakeArray(b.Int, types.ArrayDynamicLength)), false},
		{"int", b.Int, false},
		{"pointer", b.VoidPtr, false},
		{"real", b.Real, false},
		{"function pointer", fn, false},
	}
	for _, tc := range cases {
		if got := c.IsAggregate(tc.id); got != tc.want {
			t.Fatalf("%s: IsAggregate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestByvalSemantics(t *testing.T) {
	cases := []struct {
		name string
		env  func() *testEnv
		pick func(e *testEnv) types.TypeID
		want bool
	}{
		{"3-byte struct", msvc, func(e *testEnv) types.TypeID {
			b := e.b()
			return e.structOf("S3", true, b.Ubyte, b.Ubyte, b.Ubyte)
		}, true},
		{"24-byte struct", msvc, func(e *testEnv) types.TypeID {
			b := e.b()
			return e.structOf("S24", true, b.Long, b.Long, b.Long)
		}, true},
		{"8-byte struct", msvc, func(e *testEnv) types.TypeID {
			b := e.b()
			return e.structOf("S8", true, b.Int, b.Int)
		}, false},
		{"delegate", msvc, func(e *testEnv) types.TypeID {
			return e.in.Intern(types.MakeDelegate(e.in.RegisterFn(nil, e.b().Void)))
		}, true},
		{"cfloat", msvc, func(e *testEnv) types.TypeID { return e.b().Cfloat }, false},
		{"cdouble", msvc, func(e *testEnv) types.TypeID { return e.b().Cdouble }, true},
		{"real/gnu", gnu, func(e *testEnv) types.TypeID { return e.b().Real }, true},
		{"ireal/gnu", gnu, func(e *testEnv) types.TypeID { return e.b().Ireal }, true},
		{"real/msvc", msvc, func(e *testEnv) types.TypeID { return e.b().Real }, false},
		{"ireal/msvc", msvc, func(e *testEnv) types.TypeID { return e.b().Ireal }, false},
		{"double/gnu", gnu, func(e *testEnv) types.TypeID { return e.b().Double }, false},
		{"slice", msvc, func(e *testEnv) types.TypeID {
			return e.in.Intern(types.MakeArray(e.b().Int, types.ArrayDynamicLength))
		}, false},
	}
	for _, tc := range cases {
		env := tc.env()
		id := tc.pick(env)
		if got := env.w64.Classifier().PassedWithByvalSemantics(id); got != tc.want {
			t.Fatalf("%s: PassedWithByvalSemantics = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRealIs80BitsFollowsEnvironment(t *testing.T) {
	if msvc().w64.Classifier().RealIs80Bits() {
		t.Fatalf("real must be a double under msvc")
	}
	if !gnu().w64.Classifier().RealIs80Bits() {
		t.Fatalf("real must be x87 under gnu")
	}
}

func TestPassByValIsNeverUsed(t *testing.T) {
	env := gnu()
	b := env.b()
	var target abi.TargetABI = env.w64
	for _, id := range []types.TypeID{b.Real, env.bytes(24), b.Int} {
		if target.PassByVal(id) {
			t.Fatalf("%s: win64 never uses byval", types.Label(env.in, id))
		}
	}
}

func TestLowerType(t *testing.T) {
	cases := []struct {
		env  *testEnv
		id   func(*testEnv) types.TypeID
		want string
	}{
		{msvc(), func(e *testEnv) types.TypeID { return e.b().Real }, "double"},
		{gnu(), func(e *testEnv) types.TypeID { return e.b().Real }, "x86_fp80"},
		{gnu(), func(e *testEnv) types.TypeID { return e.b().Cfloat }, "{ float, float }"},
		{msvc(), func(e *testEnv) types.TypeID { return e.b().Bool }, "i1"},
		{msvc(), func(e *testEnv) types.TypeID { return e.bytes(3) }, "[3 x i8]"},
		{msvc(), func(e *testEnv) types.TypeID {
			return e.in.Intern(types.MakeArray(e.b().Bool, types.ArrayDynamicLength))
		}, "{ i64, i8* }"},
		{msvc(), func(e *testEnv) types.TypeID { return e.structOf("Empty", true) }, "{ i8 }"},
	}
	for _, tc := range cases {
		id := tc.id(tc.env)
		if got := abi.LowerType(tc.env.le, id).String(); got != tc.want {
			t.Fatalf("LowerType(%s) = %s, want %s", types.Label(tc.env.in, id), got, tc.want)
		}
	}
}

func TestLowerTypeBreaksPointerCycles(t *testing.T) {
	env := msvc()
	node := env.in.RegisterStruct("Node", true)
	next := env.in.Intern(types.MakePointer(node))
	env.in.SetStructFields(node, []types.StructField{
		{Name: "value", Type: env.b().Int},
		{Name: "next", Type: next},
	})
	if got := abi.LowerType(env.le, node).String(); got != "{ i32, i8* }" {
		t.Fatalf("LowerType(Node) = %s", got)
	}
}
