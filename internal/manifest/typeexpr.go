package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"fortio.org/safecast"

	"abilower/internal/types"
)

// typeParser reads type expressions written the way types.Label prints them:
//
//	type   := name suffix*
//	suffix := "*" | "[" "]" | "[" N "]" | ("delegate" | "function") "(" [type {"," type}] ")"
type typeParser struct {
	src   string
	pos   int
	scope *scope
}

// scope resolves names to TypeIDs: declared nominals first, then builtins.
type scope struct {
	in       *types.Interner
	nominals map[string]types.TypeID
}

func newScope(in *types.Interner) *scope {
	return &scope{in: in, nominals: make(map[string]types.TypeID, 8)}
}

func (s *scope) builtin(name string) (types.TypeID, bool) {
	b := s.in.Builtins()
	switch strings.ToLower(name) {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "byte":
		return b.Byte, true
	case "ubyte":
		return b.Ubyte, true
	case "short":
		return b.Short, true
	case "ushort":
		return b.Ushort, true
	case "int":
		return b.Int, true
	case "uint":
		return b.Uint, true
	case "long":
		return b.Long, true
	case "ulong", "size_t":
		return b.Ulong, true
	case "char":
		return b.Char, true
	case "wchar":
		return b.Wchar, true
	case "dchar":
		return b.Dchar, true
	case "float":
		return b.Float, true
	case "double":
		return b.Double, true
	case "real":
		return b.Real, true
	case "ifloat":
		return b.Ifloat, true
	case "idouble":
		return b.Idouble, true
	case "ireal":
		return b.Ireal, true
	case "cfloat":
		return b.Cfloat, true
	case "cdouble":
		return b.Cdouble, true
	case "creal":
		return b.Creal, true
	case types.CLongDoubleName:
		return b.CLongDouble, true
	}
	return types.NoTypeID, false
}

func (s *scope) lookup(name string) (types.TypeID, bool) {
	if id, ok := s.nominals[name]; ok {
		return id, true
	}
	return s.builtin(name)
}

// ParseType parses one type expression.
func (s *scope) ParseType(src string) (types.TypeID, error) {
	p := &typeParser{src: normalizeName(src), scope: s}
	id, err := p.parseType()
	if err != nil {
		return types.NoTypeID, fmt.Errorf("type %q: %w", src, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: unexpected %q", src, p.src[p.pos:])
	}
	return id, nil
}

func (p *typeParser) parseType() (types.TypeID, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return types.NoTypeID, fmt.Errorf("missing type name")
		}
		return types.NoTypeID, fmt.Errorf("expected a type name at %q", p.src[p.pos:])
	}
	id, ok := p.scope.lookup(name)
	if !ok {
		return types.NoTypeID, fmt.Errorf("unknown type %q", name)
	}
	in := p.scope.in
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return id, nil
		}
		switch c := p.src[p.pos]; {
		case c == '*':
			p.pos++
			id = in.Intern(types.MakePointer(id))
		case c == '[':
			p.pos++
			p.skipSpace()
			count := types.ArrayDynamicLength
			if digits := p.digits(); digits != "" {
				n, err := strconv.ParseUint(digits, 10, 64)
				if err != nil {
					return types.NoTypeID, err
				}
				c32, err := safecast.Conv[uint32](n)
				if err != nil || c32 == types.ArrayDynamicLength {
					return types.NoTypeID, fmt.Errorf("array length %s out of range", digits)
				}
				count = c32
				p.skipSpace()
			}
			if !p.eat(']') {
				return types.NoTypeID, fmt.Errorf("expected ']'")
			}
			id = in.Intern(types.MakeArray(id, count))
		case isIdentStart(rune(c)):
			save := p.pos
			word := p.ident()
			if word != "delegate" && word != "function" {
				p.pos = save
				return id, nil
			}
			params, err := p.paramList()
			if err != nil {
				return types.NoTypeID, fmt.Errorf("%s: %w", word, err)
			}
			fn := in.RegisterFn(params, id)
			if word == "delegate" {
				id = in.Intern(types.MakeDelegate(fn))
			} else {
				id = fn
			}
		default:
			return id, nil
		}
	}
}

func (p *typeParser) paramList() ([]types.TypeID, error) {
	p.skipSpace()
	if !p.eat('(') {
		return nil, fmt.Errorf("expected '('")
	}
	var params []types.TypeID
	p.skipSpace()
	if p.eat(')') {
		return params, nil
	}
	for {
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		p.skipSpace()
		if p.eat(')') {
			return params, nil
		}
		if !p.eat(',') {
			return nil, fmt.Errorf("expected ',' or ')'")
		}
	}
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) eat(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) ident() string {
	start := p.pos
	for i, r := range p.src[p.pos:] {
		if !(isIdentStart(r) || (i > 0 && unicode.IsDigit(r))) {
			p.pos = start + i
			return p.src[start:p.pos]
		}
	}
	p.pos = len(p.src)
	return p.src[start:]
}

func (p *typeParser) digits() string {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
