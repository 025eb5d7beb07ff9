package compiler

import (
	"fmt"

	"github.com/roach88/confql/internal/shape"
)

// Validation error codes (E100-E199)
const (
	ErrMissingQueryType     = "E100" // query type not declared
	ErrEmptyRecord          = "E101" // record declares no fields
	ErrDirectiveOnNonScalar = "E102" // derive on a list or record field
	ErrDuplicateIdentifier  = "E103" // more than one identifier field
	ErrDuplicateField       = "E104" // field name declared twice
	ErrUnknownType          = "E105" // record not declared in the schema
	ErrInvalidDirective     = "E106" // unknown derive role
	ErrMissingShape         = "E107" // field without a shape
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
	Code    string `json:"code" yaml:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled schema for problems the engine cannot
// resolve around. Returns all errors found (does not fail-fast), in
// type name order.
func Validate(schema *shape.Schema) []ValidationError {
	var errs []ValidationError

	if _, ok := schema.QueryRecord(); !ok {
		errs = append(errs, ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("query type %q is not declared", schema.Query),
			Code:    ErrMissingQueryType,
		})
	}

	for _, name := range schema.TypeNames() {
		errs = append(errs, validateRecord(schema, name, schema.Types[name])...)
	}
	return errs
}

func validateRecord(schema *shape.Schema, name string, r *shape.Record) []ValidationError {
	var errs []ValidationError
	prefix := "types." + name

	if len(r.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: fmt.Sprintf("type %q declares no fields", name),
			Code:    ErrEmptyRecord,
		})
	}

	seen := make(map[string]bool)
	identifiers := 0
	for _, f := range r.Fields {
		path := prefix + "." + f.Name

		// E104: duplicate field
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
			})
		}
		seen[f.Name] = true

		if f.Shape == nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: "field has no type",
				Code:    ErrMissingShape,
			})
			continue
		}

		// E105: every record reached by a field must be declared
		if rec, ok := shape.ElementRecord(f.Shape); ok {
			if declared := schema.Types[rec.Name]; declared != rec {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("type %q is not declared in the schema", rec.Name),
					Code:    ErrUnknownType,
				})
			}
		}

		if f.Directive == nil {
			continue
		}

		// E106: role must be known
		switch f.Directive.Role {
		case shape.RoleFilename, shape.RoleIdentifier:
		default:
			errs = append(errs, ValidationError{
				Field:   path + ".derive",
				Message: fmt.Sprintf("unknown derive role %v", f.Directive.Role),
				Code:    ErrInvalidDirective,
			})
		}

		// E102: a name can only seed a scalar
		if inner, _ := shape.Unwrap(f.Shape); !isScalar(inner) {
			errs = append(errs, ValidationError{
				Field:   path + ".derive",
				Message: fmt.Sprintf("derive requires a scalar field, got %s", f.Shape),
				Code:    ErrDirectiveOnNonScalar,
			})
		}

		if f.IsIdentifier() {
			identifiers++
		}
	}

	// E103: at most one identifier
	if identifiers > 1 {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: fmt.Sprintf("type %q has %d identifier fields, at most one is allowed", name, identifiers),
			Code:    ErrDuplicateIdentifier,
		})
	}

	return errs
}

func isScalar(s shape.Shape) bool {
	_, ok := s.(shape.Scalar)
	return ok
}
