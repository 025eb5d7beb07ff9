package shape

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultQueryType is the query type name used when a schema names none.
const DefaultQueryType = "Query"

// Schema is a set of record declarations with one designated query type
// whose fields are the top-level addresses.
type Schema struct {
	Types map[string]*Record
	Query string
}

// QueryRecord returns the query type.
func (s *Schema) QueryRecord() (*Record, bool) {
	r, ok := s.Types[s.queryName()]
	return r, ok
}

// TypeNames returns the declared type names, sorted.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the shape of the field at address, starting from the
// query type. Optional wrappers of intermediate fields are looked through.
// Crossing a list consumes one segment as the element name, so
// "things.widget.size" addresses the size of the widget element of things.
// The empty address is the query type itself.
func (s *Schema) Lookup(address []string) (Shape, error) {
	root, ok := s.QueryRecord()
	if !ok {
		return nil, fmt.Errorf("schema has no query type %q", s.queryName())
	}

	var cur Shape = root
	for i, name := range address {
		inner, _ := Unwrap(cur)
		switch sh := inner.(type) {
		case List:
			cur = sh.Inner
		case *Record:
			f, ok := sh.Field(name)
			if !ok {
				return nil, fmt.Errorf("%s: type %s has no field %q", strings.Join(address[:i+1], "."), sh.Name, name)
			}
			cur = f.Shape
		default:
			return nil, fmt.Errorf("%s: %s is not a record or list", strings.Join(address[:i+1], "."), cur)
		}
	}
	return cur, nil
}

func (s *Schema) queryName() string {
	if s.Query == "" {
		return DefaultQueryType
	}
	return s.Query
}
