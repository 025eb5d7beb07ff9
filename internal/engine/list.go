package engine

import (
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/confql/internal/cursor"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// collectList walks the cursor chain for a list. Explicit sequences at any
// level concatenate. At the complete level the list is materialized from
// the directory's siblings when the index provides no sequence.
//
// Lists of records with an identifier field are keyed: every level is held
// as a mapping from element name to element data and deeper levels merge
// on top by name. The mapping becomes a sequence once, after the walk.
func (r *resolver) collectList(c cursor.Cursor, l shape.List, path []string) (ir.Value, error) {
	rec := elementRecord(l.Inner)
	if rec == nil || !rec.HasIdentifier() {
		return r.layered(c, path, levels{
			complete: func(c cursor.Cursor, v ir.Value) (ir.Value, error) {
				return r.completeList(c, v, l.Inner, path)
			},
		})
	}

	v, err := r.layered(c, path, levels{
		normalize: func(_ cursor.Cursor, v ir.Value) (ir.Value, error) {
			return keyBy(v, rec), nil
		},
		complete: func(c cursor.Cursor, v ir.Value) (ir.Value, error) {
			return r.completeKeyed(c, v, l.Inner, rec, path)
		},
		merge: func(broad, deeper ir.Value) (ir.Value, error) {
			return r.mergeKeyed(broad, deeper, rec, path)
		},
	})
	if err != nil {
		return nil, err
	}
	if m, ok := v.(ir.Mapping); ok {
		return r.unkey(m, rec, path), nil
	}
	return v, nil
}

func (r *resolver) completeList(c cursor.Cursor, v ir.Value, inner shape.Shape, path []string) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Null:
		return r.enumerate(c, inner, path)
	case ir.Sequence:
		return val, nil
	}
	return nil, withPath(ir.NewIncompatibleMergeError(ir.Sequence{}, v), path)
}

// enumerate turns every sibling under c into one element. Elements that
// fail to resolve are dropped.
func (r *resolver) enumerate(c cursor.Cursor, inner shape.Shape, path []string) (ir.Value, error) {
	rec := elementRecord(inner)
	names, err := c.Siblings()
	if err != nil {
		return nil, err
	}

	out := make(ir.Sequence, 0, len(names))
	for _, name := range names {
		elem, err := r.element(c.Element(name), name, ir.Null{}, inner, path)
		if err == nil {
			elem, err = seedUnder(rec, name, elem)
		}
		if err != nil {
			if isCanceled(err) {
				return nil, err
			}
			r.dropElement(path, name, err)
			continue
		}
		out = append(out, elem)
	}

	r.log.Debug("list enumerated", "path", dotted(path), "siblings", len(names), "elements", len(out))
	return out, nil
}

// completeKeyed keys the complete level of a keyed list by element name.
// Unless the index holds an explicit sequence, every sibling under c is
// collected and merged on top of the index entry of the same name.
func (r *resolver) completeKeyed(c cursor.Cursor, v ir.Value, inner shape.Shape, rec *shape.Record, path []string) (ir.Value, error) {
	var m ir.Mapping
	switch val := v.(type) {
	case ir.Null:
		m = ir.Mapping{}
	case ir.Mapping:
		m = val
	case ir.Sequence:
		return keyBy(val, rec), nil
	default:
		return nil, withPath(ir.NewIncompatibleMergeError(ir.Sequence{}, v), path)
	}

	names, err := c.Siblings()
	if err != nil {
		return nil, err
	}

	out := make(ir.Mapping, len(m)+len(names))
	for name, data := range m {
		out[name] = data
	}
	for _, name := range names {
		elem, err := r.element(c.Element(name), name, ir.OrNull(m[name]), inner, path)
		if err != nil {
			if isCanceled(err) {
				return nil, err
			}
			r.dropElement(path, name, err)
			delete(out, name)
			continue
		}
		out[name] = elem
	}

	r.log.Debug("keyed list collected", "path", dotted(path), "siblings", len(names), "elements", len(out))
	return out, nil
}

// mergeKeyed merges two levels of a keyed list. Keyed levels merge element
// by element with the deeper data on top; an element whose levels do not
// merge is dropped. A level that stayed a sequence concatenates.
func (r *resolver) mergeKeyed(broad, deeper ir.Value, rec *shape.Record, path []string) (ir.Value, error) {
	switch {
	case ir.IsNull(broad):
		return deeper, nil
	case ir.IsNull(deeper):
		return broad, nil
	}

	bm, bok := broad.(ir.Mapping)
	dm, dok := deeper.(ir.Mapping)
	switch {
	case bok && dok:
		out := make(ir.Mapping, len(bm)+len(dm))
		for name, data := range bm {
			out[name] = data
		}
		for name, data := range dm {
			merged, err := ir.Merge(ir.OrNull(out[name]), data)
			if err != nil {
				r.dropElement(path, name, withPath(err, appendPath(path, name)))
				delete(out, name)
				continue
			}
			out[name] = merged
		}
		return out, nil
	case bok:
		broad = r.unkey(bm, rec, path)
	case dok:
		deeper = r.unkey(dm, rec, path)
	}

	merged, err := ir.Merge(broad, deeper)
	if err != nil {
		return nil, withPath(err, path)
	}
	return merged, nil
}

// unkey turns a keyed list into a sequence ordered by element name, seeding
// the derived fields of every element.
func (r *resolver) unkey(m ir.Mapping, rec *shape.Record, path []string) ir.Sequence {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(ir.Sequence, 0, len(names))
	for _, name := range names {
		elem, err := seedUnder(rec, name, m[name])
		if err != nil {
			r.dropElement(path, name, err)
			continue
		}
		out = append(out, elem)
	}
	return out
}

// keyBy turns an explicit sequence into a mapping keyed by each element's
// identifier value. Sequences with an element lacking a usable identifier
// stay sequences. Elements sharing an identifier merge in order.
func keyBy(v ir.Value, rec *shape.Record) ir.Value {
	seq, ok := v.(ir.Sequence)
	if !ok || len(seq) == 0 {
		return v
	}
	id, ok := identifierField(rec)
	if !ok {
		return v
	}

	out := make(ir.Mapping, len(seq))
	for _, elem := range seq {
		m, ok := elem.(ir.Mapping)
		if !ok {
			return v
		}
		var name string
		switch key := m[id.Name].(type) {
		case ir.String:
			name = string(key)
		case ir.Number:
			name = key.String()
		default:
			return v
		}
		merged, err := ir.Merge(ir.OrNull(out[name]), m)
		if err != nil {
			return v
		}
		out[name] = merged
	}
	return out
}

func identifierField(rec *shape.Record) (shape.Field, bool) {
	for _, f := range rec.Fields {
		if f.IsIdentifier() {
			return f, true
		}
	}
	return shape.Field{}, false
}

// element collects one element from its own cursor and merges it on top
// of base.
func (r *resolver) element(c cursor.Cursor, name string, base ir.Value, inner shape.Shape, path []string) (ir.Value, error) {
	v, err := r.collect(c, inner, appendPath(path, name))
	if err != nil {
		return nil, err
	}
	if v, err = ir.Merge(base, v); err != nil {
		return nil, withPath(err, appendPath(path, name))
	}
	return v, nil
}

func (r *resolver) dropElement(path []string, name string, err error) {
	r.log.Warn("dropping list element", "path", dotted(path), "element", name, "error", err)
}

// seedUnder merges v on top of the values derived from the element name,
// so explicit data overrides them.
func seedUnder(rec *shape.Record, name string, v ir.Value) (ir.Value, error) {
	seed := seedFor(rec, name)
	if ir.IsNull(seed) {
		return ir.OrNull(v), nil
	}
	return ir.Merge(seed, v)
}

// seedFor returns a mapping of every derived field of rec to the element
// name, or Null when rec derives nothing.
func seedFor(rec *shape.Record, name string) ir.Value {
	if rec == nil {
		return ir.Null{}
	}
	derived := rec.Derived()
	if len(derived) == 0 {
		return ir.Null{}
	}

	name = norm.NFC.String(name)
	seed := make(ir.Mapping, len(derived))
	for _, f := range derived {
		seed[f.Name] = seedValue(f.Shape, name)
	}
	return seed
}

// seedValue parses name for numeric and boolean fields. Names that do not
// parse stay strings.
func seedValue(s shape.Shape, name string) ir.Value {
	inner, _ := shape.Unwrap(s)
	if sc, ok := inner.(shape.Scalar); ok {
		switch sc.Kind {
		case shape.Int, shape.Float:
			if f, err := strconv.ParseFloat(name, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				return ir.Number(f)
			}
		case shape.Boolean:
			if b, err := strconv.ParseBool(name); err == nil {
				return ir.Bool(b)
			}
		}
	}
	return ir.String(name)
}

// elementRecord returns the record of a list's elements, looking through
// Optional only.
func elementRecord(inner shape.Shape) *shape.Record {
	s, _ := shape.Unwrap(inner)
	rec, _ := s.(*shape.Record)
	return rec
}
