package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abilower/internal/driver"
)

const manifestText = `
[target]
triple = "x86_64-w64-windows-gnu"

[[struct]]
name = "Pair"
fields = [{ name = "a", type = "int" }, { name = "b", type = "int" }]

[[struct]]
name = "Big"
pod = false
fields = [{ name = "x", type = "long" }, { name = "y", type = "long" }, { name = "z", type = "long" }]

[[func]]
name = "mix"
linkage = "C"
ret = "real"
params = [{ name = "p", type = "Pair" }, { name = "big", type = "Big" }, { name = "r", type = "real" }]

[[func]]
name = "printf"
linkage = "C"
variadic = "c"
ret = "int"
params = [{ name = "fmt", type = "char*" }]
`

func writeTestManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sigs.toml")
	if err := os.WriteFile(path, []byte(manifestText), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLowerPretty(t *testing.T) {
	out, _, err := execute(t, "lower", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, want := range []string{
		"target x86_64-w64-windows-gnu (win64)",
		"mix  extern(C) stack=32",
		"bitcast(i64)",
		"indirect(align=8)",
		"indirect(align=16)",
		"printf  extern(C) variadic=c",
		"call: fmt=rcx",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("escape codes with --color off:\n%q", out)
	}
}

func TestLowerJSONWithTargetOverride(t *testing.T) {
	out, _, err := execute(t, "lower", "--format", "json", "--target", "x86_64-pc-windows-msvc", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	var batch driver.Batch
	if err := json.Unmarshal([]byte(out), &batch); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if batch.Env != "msvc" || len(batch.Signatures) != 2 {
		t.Fatalf("batch = %+v", batch)
	}
	mix := batch.Signatures[0]
	// real is a double under msvc
	if mix.Params[2].Strategy != "none" || mix.Params[2].LType != "double" || mix.ReturnLocation != "xmm0" {
		t.Fatalf("mix = %+v", mix)
	}
}

func TestLowerLLVM(t *testing.T) {
	out, _, err := execute(t, "lower", "--format", "llvm", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, want := range []string{"x86_64-w64-windows-gnu", "win64cc", "@mix", "@printf", "noalias nocapture align 8", "..."} {
		if !strings.Contains(out, want) {
			t.Fatalf("llvm output missing %q:\n%s", want, out)
		}
	}
}

func TestLowerMsgpackFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.mp")
	_, stderr, err := execute(t, "--timings", "lower", "--format", "msgpack", "-o", dest, "--jobs", "2", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	batch, err := driver.ReadBatchFile(dest)
	if err != nil {
		t.Fatalf("ReadBatchFile: %v", err)
	}
	if len(batch.Signatures) != 2 || batch.Signatures[1].Name != "printf" {
		t.Fatalf("batch = %+v", batch)
	}
	for _, phase := range []string{"load", "lower", "collect", "emit", "total"} {
		if !strings.Contains(stderr, phase) {
			t.Fatalf("timings missing %q:\n%s", phase, stderr)
		}
	}
}

func TestLowerTraceToFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")
	_, _, err := execute(t, "--trace", tracePath, "--trace-level", "debug", "lower", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"rewrite"`) {
		t.Fatalf("trace has no rewrite events:\n%s", data)
	}
}

func TestLowerWithProgressUI(t *testing.T) {
	out, stderr, err := execute(t, "lower", "--ui", "on", "--format", "json", writeTestManifest(t))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	var batch driver.Batch
	if err := json.Unmarshal([]byte(out), &batch); err != nil {
		t.Fatalf("progress view leaked into stdout: %v\n%s", err, out)
	}
	if len(batch.Signatures) != 2 {
		t.Fatalf("batch = %+v", batch)
	}
	if !strings.Contains(stderr, "lowering sigs.toml") {
		t.Fatalf("progress view missing from stderr:\n%q", stderr)
	}
}

func TestLowerWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	mem := filepath.Join(dir, "mem.pprof")
	rt := filepath.Join(dir, "run.trace")
	if _, _, err := execute(t, "--mem-profile", mem, "--runtime-trace", rt, "lower", writeTestManifest(t)); err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, path := range []string{mem, rt} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn, true) || shouldUseTUI(uiModeOff, false) || shouldUseTUI(uiModeAuto, true) {
		t.Fatalf("shouldUseTUI ignores explicit modes")
	}
}

func TestLowerErrors(t *testing.T) {
	path := writeTestManifest(t)
	cases := [][]string{
		{"lower", "--format", "yaml", path},
		{"lower", "--target", "x86_64-unknown-linux-gnu", path},
		{"lower", filepath.Join(t.TempDir(), "missing.toml")},
		{"lower"},
		{"--trace-level", "loud", "lower", path},
		{"--color", "sometimes", "lower", path},
		{"lower", "--ui", "fancy", path},
		{"--runtime-trace", filepath.Join(t.TempDir(), "no", "such", "dir"), "lower", path},
	}
	for _, args := range cases {
		if _, _, err := execute(t, args...); err == nil {
			t.Fatalf("%v: expected an error", args)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Tool != "abilower" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}

	pretty, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(pretty, "abilower ") {
		t.Fatalf("pretty = %q", pretty)
	}
}
