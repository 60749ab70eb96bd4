package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abilower/internal/abi"
	"abilower/internal/layout"
	"abilower/internal/types"
)

const sample = `
[target]
triple = "x86_64-w64-windows-gnu"

[[struct]]
name = "Pair"
fields = [{ name = "a", type = "int" }, { name = "b", type = "int" }]

[[struct]]
name = "Node"
pod = false
fields = [
  { name = "next", type = "Node*" },
  { name = "vals", type = "Vec[2]" },
]

[[alias]]
name = "Vec"
type = "Pair"

[[func]]
name = "make_pair"
linkage = "C"
ret = "Pair"
params = [{ name = "a", type = "int" }, { name = "b", type = "int" }]

[[func]]
name = "visit"
linkage = "C++"
this = true
ret = "Node"
params = [{ name = "cb", type = "void delegate(Node*)" }, { name = "out", type = "Node", ref = true }]

[[func]]
name = "printf"
linkage = "c"
variadic = "c"
ret = "int"
params = [{ type = "char*" }]
`

func TestParseAndBuild(t *testing.T) {
	m, err := Parse("sample.toml", sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := m.Build("")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prog.Target.Env != layout.EnvGNU {
		t.Fatalf("target = %+v", prog.Target)
	}
	if len(prog.Signatures) != 3 {
		t.Fatalf("got %d signatures", len(prog.Signatures))
	}

	mk := prog.Signatures[0]
	if mk.Name != "make_pair" || mk.Linkage != abi.LinkageC || len(mk.Args) != 2 {
		t.Fatalf("make_pair = %+v", mk)
	}
	if got := types.Label(prog.Types, mk.Ret.Type); got != "Pair" {
		t.Fatalf("return type = %s", got)
	}

	visit := prog.Signatures[1]
	if !visit.HasThis || visit.Linkage != abi.LinkageCpp {
		t.Fatalf("visit = %+v", visit)
	}
	if got := types.Label(prog.Types, visit.Args[0].Type); got != "void delegate(Node*)" {
		t.Fatalf("delegate param = %s", got)
	}
	if !visit.Args[1].ByRef {
		t.Fatalf("ref param lost")
	}
	if prog.Types.IsPOD(visit.Ret.Type) {
		t.Fatalf("Node declared pod = false")
	}

	pf := prog.Signatures[2]
	if pf.Variadic != abi.VariadicC || pf.Args[0].Name != "" {
		t.Fatalf("printf = %+v", pf)
	}

	node, ok := prog.Types.StructInfo(visit.Ret.Type)
	if !ok || len(node.Fields) != 2 {
		t.Fatalf("Node fields = %+v", node)
	}
	if got := prog.Layout.MustSizeOf(visit.Ret.Type); got != 24 {
		t.Fatalf("sizeof(Node) = %d, want 24", got)
	}
}

func TestTripleOverride(t *testing.T) {
	m, err := Parse("sample.toml", sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := m.Build("x86_64-pc-windows-msvc")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prog.Target.Env != layout.EnvMSVC {
		t.Fatalf("override ignored: %+v", prog.Target)
	}

	bare, err := Parse("bare.toml", "[[func]]\nname = \"f\"\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := bare.Triple(""); got != DefaultTriple {
		t.Fatalf("default triple = %q", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Path != path || len(m.Func) != 3 {
		t.Fatalf("manifest = %+v", m)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestTypeExpressions(t *testing.T) {
	in := types.NewInterner()
	sc := newScope(in)
	point := in.RegisterStruct("Point", true)
	sc.nominals["Point"] = point

	cases := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"  ULONG ", "ulong"},
		{"size_t", "ulong"},
		{"ubyte[16]", "ubyte[16]"},
		{"char[]", "char[]"},
		{"void*", "void*"},
		{"Point**", "Point**"},
		{"Point[3]*", "Point[3]*"},
		{"int function()", "int function()"},
		{"void delegate(int, double)", "void delegate(int, double)"},
		{"real delegate(Point[2], char*)[]", "real delegate(Point[2], char*)[]"},
		{"__c_long_double", "__c_long_double"},
		{"creal", "creal"},
	}
	for _, tc := range cases {
		id, err := sc.ParseType(tc.src)
		if err != nil {
			t.Fatalf("%q: %v", tc.src, err)
		}
		if got := types.Label(in, id); got != tc.want {
			t.Fatalf("%q: label %q, want %q", tc.src, got, tc.want)
		}
	}
	if id, _ := sc.ParseType("__c_long_double"); !in.IsCLongDouble(id) {
		t.Fatalf("__c_long_double must resolve to the builtin wrapper")
	}
}

func TestTypeExpressionErrors(t *testing.T) {
	sc := newScope(types.NewInterner())
	for _, src := range []string{
		"",
		"Missing",
		"int[",
		"int[3",
		"int[x]",
		"int[4294967295]",
		"void delegate(int",
		"void delegate int",
		"int )",
		"*int",
	} {
		if _, err := sc.ParseType(src); err == nil {
			t.Fatalf("%q: expected an error", src)
		}
	}
}

func TestNamesAreNFCNormalized(t *testing.T) {
	// "Café" spelled with a combining acute accent
	decomposed := "Cafe\u0301"
	text := `
[[struct]]
name = "` + decomposed + `"
fields = [{ name = "x", type = "int" }]

[[func]]
name = "f"
params = [{ type = "Café" }]
`
	m, err := Parse("nfc.toml", text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Struct[0].Name != "Caf\u00e9" {
		t.Fatalf("struct name not normalized: %q", m.Struct[0].Name)
	}
	if _, err := m.Build(""); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestManifestErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"no funcs", "[target]\ntriple = \"x86_64-pc-windows-msvc\"\n", "no [[func]]"},
		{"unknown key", "[[func]]\nname = \"f\"\nbogus = 1\n", "unknown keys"},
		{"duplicate struct", "[[struct]]\nname = \"S\"\n[[struct]]\nname = \"S\"\n[[func]]\nname = \"f\"\n", "already declared"},
		{"bad align", "[[struct]]\nname = \"S\"\nalign = 3\n[[func]]\nname = \"f\"\n", "power of two"},
		{"packed and align", "[[struct]]\nname = \"S\"\npacked = true\nalign = 8\n[[func]]\nname = \"f\"\n", "packed conflicts"},
		{"duplicate func", "[[func]]\nname = \"f\"\n[[func]]\nname = \"f\"\n", "declared twice"},
		{"unnamed func", "[[func]]\nret = \"int\"\n", "without a name"},
		{"bad toml", "[[func]\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		_, err := Parse(tc.name, tc.text)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"unknown type", "[[func]]\nname = \"f\"\nret = \"Nope\"\n", "unknown type"},
		{"bad linkage", "[[func]]\nname = \"f\"\nlinkage = \"pascal\"\n", "unknown linkage"},
		{"bad variadic", "[[func]]\nname = \"f\"\nvariadic = \"maybe\"\n", "unknown variadic"},
		{"void param", "[[func]]\nname = \"f\"\nparams = [{ type = \"void\" }]\n", "void parameter"},
		{"void ref", "[[func]]\nname = \"f\"\nret_ref = true\n", "by ref"},
		{"shadowing", "[[struct]]\nname = \"int\"\n[[func]]\nname = \"f\"\n", "shadows a builtin"},
		{"oversized array", "[[func]]\nname = \"f\"\nparams = [{ type = \"ulong[2147418113][2147549185]\" }]\n", "too large"},
		{"bad triple", "[target]\ntriple = \"arm-linux\"\n[[func]]\nname = \"f\"\n", "invalid target triple"},
		{
			"recursive struct",
			"[[struct]]\nname = \"A\"\nfields = [{ name = \"b\", type = \"B\" }]\n" +
				"[[struct]]\nname = \"B\"\nfields = [{ name = \"a\", type = \"A[1]\" }]\n" +
				"[[func]]\nname = \"f\"\n",
			"infinite size",
		},
		{
			"alias cycle",
			"[[alias]]\nname = \"X\"\ntype = \"Y\"\n[[alias]]\nname = \"Y\"\ntype = \"X\"\n[[func]]\nname = \"f\"\n",
			"refers to itself",
		},
	}
	for _, tc := range cases {
		m, err := Parse(tc.name, tc.text)
		if err != nil {
			t.Fatalf("%s: Parse: %v", tc.name, err)
		}
		_, err = m.Build("")
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestLinkageSpellings(t *testing.T) {
	for spelling, want := range map[string]abi.Linkage{
		"":        abi.LinkageD,
		"D":       abi.LinkageD,
		"c":       abi.LinkageC,
		"C++":     abi.LinkageCpp,
		"cpp":     abi.LinkageCpp,
		"Windows": abi.LinkageWindows,
		"System":  abi.LinkageSystem,
	} {
		got, err := abi.ParseLinkage(spelling)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", spelling, got, err)
		}
	}
}
