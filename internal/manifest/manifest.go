// Package manifest reads signature manifests: TOML files that declare a
// target, the nominal types and the function signatures to lower.
package manifest

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

// DefaultTriple is used when neither the manifest nor the caller names a target.
const DefaultTriple = "x86_64-pc-windows-msvc"

// Manifest is the decoded content of a signature manifest.
type Manifest struct {
	Path   string       `toml:"-"`
	Target TargetConfig `toml:"target"`
	Struct []StructDecl `toml:"struct"`
	Alias  []AliasDecl  `toml:"alias"`
	Func   []FuncDecl   `toml:"func"`
}

type TargetConfig struct {
	Triple string `toml:"triple"`
}

// StructDecl declares a nominal struct. POD defaults to true.
type StructDecl struct {
	Name   string      `toml:"name"`
	POD    *bool       `toml:"pod"`
	Packed bool        `toml:"packed"`
	Align  int         `toml:"align"`
	Fields []FieldDecl `toml:"fields"`
}

type FieldDecl struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Align int    `toml:"align"`
}

type AliasDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// FuncDecl declares one function signature.
type FuncDecl struct {
	Name     string      `toml:"name"`
	Linkage  string      `toml:"linkage"`
	Variadic string      `toml:"variadic"`
	This     bool        `toml:"this"`
	Ret      string      `toml:"ret"`
	RetRef   bool        `toml:"ret_ref"`
	Params   []ParamDecl `toml:"params"`
}

type ParamDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Ref  bool   `toml:"ref"`
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	m.Path = path
	if err := m.check(meta); err != nil {
		return nil, err
	}
	return &m, nil
}

// Parse decodes and validates manifest text; name is used in error messages.
func Parse(name, text string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(text, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	m.Path = name
	if err := m.check(meta); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) check(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", m.Path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("func") || len(m.Func) == 0 {
		return fmt.Errorf("%s: no [[func]] declared", m.Path)
	}

	seen := make(map[string]string, len(m.Struct)+len(m.Alias))
	declare := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%s: %s without a name", m.Path, kind)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s: %s %q already declared as %s", m.Path, kind, name, prev)
		}
		seen[name] = kind
		return nil
	}
	for i := range m.Struct {
		s := &m.Struct[i]
		s.Name = normalizeName(s.Name)
		if err := declare("struct", s.Name); err != nil {
			return err
		}
		if s.Align < 0 || (s.Align > 0 && s.Align&(s.Align-1) != 0) {
			return fmt.Errorf("%s: struct %q: align %d is not a power of two", m.Path, s.Name, s.Align)
		}
		if s.Packed && s.Align > 0 {
			return fmt.Errorf("%s: struct %q: packed conflicts with align", m.Path, s.Name)
		}
		for j := range s.Fields {
			f := &s.Fields[j]
			f.Name = normalizeName(f.Name)
			if strings.TrimSpace(f.Type) == "" {
				return fmt.Errorf("%s: struct %q: field %d has no type", m.Path, s.Name, j)
			}
			if f.Align < 0 || (f.Align > 0 && f.Align&(f.Align-1) != 0) {
				return fmt.Errorf("%s: struct %q: field %q: align %d is not a power of two", m.Path, s.Name, f.Name, f.Align)
			}
		}
	}
	for i := range m.Alias {
		a := &m.Alias[i]
		a.Name = normalizeName(a.Name)
		if err := declare("alias", a.Name); err != nil {
			return err
		}
		if strings.TrimSpace(a.Type) == "" {
			return fmt.Errorf("%s: alias %q has no type", m.Path, a.Name)
		}
	}

	funcs := make(map[string]struct{}, len(m.Func))
	for i := range m.Func {
		f := &m.Func[i]
		f.Name = normalizeName(f.Name)
		if f.Name == "" {
			return fmt.Errorf("%s: [[func]] #%d without a name", m.Path, i+1)
		}
		if _, dup := funcs[f.Name]; dup {
			return fmt.Errorf("%s: func %q declared twice", m.Path, f.Name)
		}
		funcs[f.Name] = struct{}{}
		for j := range f.Params {
			f.Params[j].Name = normalizeName(f.Params[j].Name)
			if strings.TrimSpace(f.Params[j].Type) == "" {
				return fmt.Errorf("%s: func %q: param %d has no type", m.Path, f.Name, j)
			}
		}
	}
	return nil
}

// Triple returns the target triple: override when set, then the manifest's
// [target].triple, then DefaultTriple.
func (m *Manifest) Triple(override string) string {
	if t := strings.TrimSpace(override); t != "" {
		return t
	}
	if t := strings.TrimSpace(m.Target.Triple); t != "" {
		return t
	}
	return DefaultTriple
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
