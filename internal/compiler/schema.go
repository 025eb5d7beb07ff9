package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/confql/internal/shape"
)

// CompileSchema parses a CUE value into a shape.Schema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the schema document itself:
//
//	query: "Query"
//	types: {
//		Thing: {
//			name: {type: "String", derive: "filename"}
//			size: "Float!"
//		}
//		Query: things: "[Thing!]!"
//	}
//
// A field is either a type reference string or a struct with a "type"
// reference and an optional "derive" role ("filename" or "identifier").
func CompileSchema(v cue.Value) (*shape.Schema, error) {
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := &shape.Schema{
		Types: make(map[string]*shape.Record),
		Query: shape.DefaultQueryType,
	}

	if q := v.LookupPath(cue.ParsePath("query")); q.Exists() {
		name, err := q.String()
		if err != nil {
			return nil, &CompileError{Field: "query", Message: "query must be a type name string", Pos: q.Pos()}
		}
		schema.Query = name
	}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "types is required",
			Pos:     v.Pos(),
		}
	}

	// Declare every record first so fields can reference types declared
	// later, or their own type.
	type pending struct {
		record *shape.Record
		value  cue.Value
	}
	var records []pending

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		if _, ok := shape.ParseScalarKind(name); ok {
			return nil, &CompileError{
				Field:   "types." + name,
				Message: fmt.Sprintf("%s is a built-in scalar and cannot be redeclared", name),
				Pos:     iter.Value().Pos(),
			}
		}
		r := &shape.Record{Name: name}
		schema.Types[name] = r
		records = append(records, pending{record: r, value: iter.Value()})
	}

	for _, p := range records {
		fields, err := compileFields(p.record.Name, p.value, schema.Types)
		if err != nil {
			return nil, err
		}
		p.record.Fields = fields
	}

	return schema, nil
}

// CompileSchemaSource compiles CUE source text into a shape.Schema.
// filename is used for error positions only.
func CompileSchemaSource(filename string, src []byte) (*shape.Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileSchema(v)
}

func compileFields(typeName string, v cue.Value, types map[string]*shape.Record) ([]shape.Field, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   "types." + typeName,
			Message: "type must be a struct of fields",
			Pos:     v.Pos(),
		}
	}

	var fields []shape.Field
	for iter.Next() {
		f, err := compileField(typeName, iter.Label(), iter.Value(), types)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func compileField(typeName, name string, v cue.Value, types map[string]*shape.Record) (shape.Field, error) {
	path := "types." + typeName + "." + name
	field := shape.Field{Name: name}
	if err := v.Err(); err != nil {
		return field, formatCUEError(err)
	}

	refVal := v
	if v.IncompleteKind() == cue.StructKind {
		refVal = v.LookupPath(cue.ParsePath("type"))
		if !refVal.Exists() {
			return field, &CompileError{
				Field:   path + ".type",
				Message: "type is required",
				Pos:     v.Pos(),
			}
		}

		if d := v.LookupPath(cue.ParsePath("derive")); d.Exists() {
			s, err := d.String()
			if err != nil {
				return field, formatCUEError(err)
			}
			role, ok := shape.ParseRole(s)
			if !ok {
				return field, &CompileError{
					Field:   path + ".derive",
					Message: fmt.Sprintf("unknown derive role %q (want filename or identifier)", s),
					Pos:     d.Pos(),
				}
			}
			field.Directive = &shape.Directive{DeriveFromName: true, Role: role}
		}
	}

	ref, err := refVal.String()
	if err != nil {
		return field, &CompileError{
			Field:   path,
			Message: "field must be a type reference string or a struct with a type",
			Pos:     refVal.Pos(),
		}
	}

	s, err := shape.ParseType(ref, types)
	if err != nil {
		return field, &CompileError{
			Field:   path,
			Message: err.Error(),
			Pos:     refVal.Pos(),
		}
	}
	field.Shape = s
	return field, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// IsCompileError reports whether err carries a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
