// Package shape describes the expected structure of resolved values.
//
// A Shape is one of Scalar, Optional, List or *Record. Shapes are produced
// by the compiler from a schema and consumed by the engine; they carry no
// data of their own.
package shape

import (
	"fmt"
	"strings"
)

// Shape is a closed set of result descriptions.
type Shape interface {
	// String renders the shape as a GraphQL type reference, e.g. "[Thing!]!".
	String() string
	shape()
}

// ScalarKind is a primitive value kind.
type ScalarKind int

const (
	Boolean ScalarKind = iota + 1
	Int
	Float
	String
	// ID is the identifier kind. It accepts strings and numbers and
	// always resolves to a string.
	ID
)

var scalarNames = map[ScalarKind]string{
	Boolean: "Boolean",
	Int:     "Int",
	Float:   "Float",
	String:  "String",
	ID:      "ID",
}

// String returns the GraphQL name of the kind.
func (k ScalarKind) String() string {
	if name, ok := scalarNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ScalarKind(%d)", int(k))
}

// ParseScalarKind maps a GraphQL scalar name to its kind.
func ParseScalarKind(name string) (ScalarKind, bool) {
	for k, n := range scalarNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Scalar is a required primitive value.
type Scalar struct {
	Kind ScalarKind
}

// Optional makes its inner shape nullable. Missing or broken data
// resolves to Null instead of failing.
type Optional struct {
	Inner Shape
}

// List is a required sequence of inner values.
type List struct {
	Inner Shape
}

// Record is a required mapping with declared fields, in declaration order.
type Record struct {
	Name   string
	Fields []Field
}

// Field is one named member of a Record.
type Field struct {
	Name      string
	Shape     Shape
	Directive *Directive
}

// Role says how a name-derived value is used.
type Role int

const (
	// RoleFilename writes the element name into the field.
	RoleFilename Role = iota + 1

	// RoleIdentifier writes the element name into the field and lets the
	// list be keyed by it: a mapping in place of a sequence becomes one
	// element per key.
	RoleIdentifier
)

// String returns the schema spelling of the role.
func (r Role) String() string {
	switch r {
	case RoleFilename:
		return "filename"
	case RoleIdentifier:
		return "identifier"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole maps a schema spelling to its role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "filename":
		return RoleFilename, true
	case "identifier":
		return RoleIdentifier, true
	}
	return 0, false
}

// Directive is a per-field annotation.
type Directive struct {
	// DeriveFromName seeds the field with the list element's name.
	DeriveFromName bool
	Role           Role
}

// Derives reports whether f takes a default from the element name.
func (f Field) Derives() bool {
	return f.Directive != nil && f.Directive.DeriveFromName
}

// IsIdentifier reports whether f is an identifier-role derived field.
func (f Field) IsIdentifier() bool {
	return f.Derives() && f.Directive.Role == RoleIdentifier
}

func (Scalar) shape()   {}
func (Optional) shape() {}
func (List) shape()     {}
func (*Record) shape()  {}

func (s Scalar) String() string {
	return s.Kind.String() + "!"
}

func (o Optional) String() string {
	if o.Inner == nil {
		return ""
	}
	return strings.TrimSuffix(o.Inner.String(), "!")
}

func (l List) String() string {
	inner := "?"
	if l.Inner != nil {
		inner = l.Inner.String()
	}
	return "[" + inner + "]!"
}

func (r *Record) String() string {
	return r.Name + "!"
}

// Field returns the field called name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Derived returns the fields seeded from the element name.
func (r *Record) Derived() []Field {
	var out []Field
	for _, f := range r.Fields {
		if f.Derives() {
			out = append(out, f)
		}
	}
	return out
}

// HasIdentifier reports whether any field has the identifier role.
func (r *Record) HasIdentifier() bool {
	for _, f := range r.Fields {
		if f.IsIdentifier() {
			return true
		}
	}
	return false
}

// Unwrap strips Optional wrappers and reports whether any were present.
func Unwrap(s Shape) (Shape, bool) {
	optional := false
	for {
		o, ok := s.(Optional)
		if !ok {
			return s, optional
		}
		s = o.Inner
		optional = true
	}
}

// ElementRecord returns the record at the core of s, looking through
// Optional and List wrappers.
func ElementRecord(s Shape) (*Record, bool) {
	for {
		switch v := s.(type) {
		case Optional:
			s = v.Inner
		case List:
			s = v.Inner
		case *Record:
			return v, true
		default:
			return nil, false
		}
	}
}
