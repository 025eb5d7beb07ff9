package shape

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a GraphQL type reference such as "Int!", "[Thing!]"
// or "String". Named types are looked up first among the built-in
// scalars, then in types.
//
// A reference without "!" is nullable and becomes Optional.
func ParseType(ref string, types map[string]*Record) (Shape, error) {
	p := &typeParser{src: ref, types: types}
	s, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type %q: unexpected %q at offset %d", ref, p.src[p.pos:], p.pos)
	}
	return s, nil
}

type typeParser struct {
	src   string
	pos   int
	types map[string]*Record
}

func (p *typeParser) parse() (Shape, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("type %q: expected a type", p.src)
	}

	var s Shape
	if p.src[p.pos] == '[' {
		p.pos++
		inner, err := p.parse()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ']' {
			return nil, fmt.Errorf("type %q: missing ']'", p.src)
		}
		p.pos++
		s = List{Inner: inner}
	} else {
		name := p.name()
		if name == "" {
			return nil, fmt.Errorf("type %q: unexpected %q at offset %d", p.src, p.src[p.pos:], p.pos)
		}
		named, err := p.lookup(name)
		if err != nil {
			return nil, err
		}
		s = named
	}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '!' {
		p.pos++
		return s, nil
	}
	return Optional{Inner: s}, nil
}

func (p *typeParser) lookup(name string) (Shape, error) {
	if k, ok := ParseScalarKind(name); ok {
		return Scalar{Kind: k}, nil
	}
	if r, ok := p.types[name]; ok {
		return r, nil
	}
	return nil, &UnknownTypeError{Name: name}
}

func (p *typeParser) name() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

// UnknownTypeError reports a reference to a type that is neither a
// built-in scalar nor a declared record.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}
