package abi_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"abilower/internal/abi"
)

func TestWin64Locations(t *testing.T) {
	env := msvc()
	b := env.b()
	sig := env.sig("f", abi.LinkageC, b.Double, b.Int, b.Double, b.Float, b.Long, b.Int, b.Double)
	lower(t, env, sig)

	slots := abi.PhysicalParams(sig)
	want := []string{"rcx", "xmm1", "xmm2", "r9", "[rsp+32]", "[rsp+40]"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	for i, slot := range slots {
		if got := slot.Loc.String(); got != want[i] {
			t.Fatalf("slot %d (%s): location %s, want %s", i, slot.Name, got, want[i])
		}
	}
	if got := abi.CallStackSize(sig); got != 48 {
		t.Fatalf("CallStackSize = %d, want 48", got)
	}
	if got := abi.ReturnLocation(sig); got != "xmm0" {
		t.Fatalf("ReturnLocation = %q", got)
	}
}

func TestHiddenSlotsShiftRegisters(t *testing.T) {
	env := msvc()
	b := env.b()
	big := env.structOf("Big", false, b.Long, b.Long, b.Long)
	sig := env.sig("method", abi.LinkageCpp, big, b.Double)
	sig.HasThis = true
	lower(t, env, sig)

	slots := abi.PhysicalParams(sig)
	if len(slots) != 3 {
		t.Fatalf("got %d slots", len(slots))
	}
	if slots[0].Kind != abi.SlotThis || slots[0].Loc.Reg != "rcx" {
		t.Fatalf("slot 0 = %+v", slots[0])
	}
	if slots[1].Kind != abi.SlotSRet || slots[1].Loc.Reg != "rdx" {
		t.Fatalf("slot 1 = %+v", slots[1])
	}
	if _, ok := slots[1].LType.(*lltypes.PointerType); !ok {
		t.Fatalf("sret slot type = %s", slots[1].LType)
	}
	if slots[2].Loc.Reg != "xmm2" {
		t.Fatalf("double after two hidden slots = %s", slots[2].Loc)
	}
	if got := abi.CallStackSize(sig); got != 32 {
		t.Fatalf("CallStackSize = %d, want shadow space only", got)
	}
}

func TestUnnamedParams(t *testing.T) {
	env := msvc()
	b := env.b()
	sig := env.sig("f", abi.LinkageC, b.Void, b.Int)
	sig.Args[0].Name = ""
	lower(t, env, sig)
	if got := abi.PhysicalParams(sig)[0].Name; got != "_param_0" {
		t.Fatalf("name = %q", got)
	}
}

func TestDeclare(t *testing.T) {
	env := msvc()
	b := env.b()
	big := env.structOf("Big", true, b.Long, b.Long, b.Long)
	sig := env.sig("consume", abi.LinkageC, big, big, b.Int)
	lower(t, env, sig)

	m := ir.NewModule()
	f := abi.Declare(m, sig)
	if f.CallingConv != enum.CallingConvWin64 {
		t.Fatalf("calling convention = %v", f.CallingConv)
	}
	if _, ok := f.Sig.RetType.(*lltypes.VoidType); !ok {
		t.Fatalf("sret function must return void, got %s", f.Sig.RetType)
	}
	if len(f.Params) != 3 {
		t.Fatalf("got %d params, want sret + 2", len(f.Params))
	}
	sretAttrs := f.Params[0].Attrs
	if len(sretAttrs) != 2 || !slices.Contains(sretAttrs, ir.ParamAttribute(enum.ParamAttrNoAlias)) {
		t.Fatalf("sret param attrs = %v", sretAttrs)
	}
	if sa, ok := sretAttrs[0].(ir.SRet); !ok || !sa.Typ.Equal(sig.Ret.LType) {
		t.Fatalf("first sret param attr = %v, want sret(%s)", sretAttrs[0], sig.Ret.LType)
	}
	if len(f.Params[1].Attrs) != 3 {
		t.Fatalf("indirect param attrs = %v", f.Params[1].Attrs)
	}
	text := m.String()
	for _, want := range []string{"win64cc", "sret(", "noalias nocapture align 8", "@consume"} {
		if !strings.Contains(text, want) {
			t.Fatalf("module text missing %q:\n%s", want, text)
		}
	}
}

func TestDeclareVariadic(t *testing.T) {
	env := msvc()
	b := env.b()
	sig := env.sig("printf", abi.LinkageC, b.Int, b.VoidPtr)
	sig.Variadic = abi.VariadicC
	lower(t, env, sig)

	f := abi.Declare(ir.NewModule(), sig)
	if !f.Sig.Variadic {
		t.Fatalf("printf must be variadic")
	}
	if it, ok := f.Sig.RetType.(*lltypes.IntType); !ok || it.BitSize != 32 {
		t.Fatalf("return type = %s", f.Sig.RetType)
	}
}
