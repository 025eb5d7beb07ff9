package engine

import (
	"math"
	"strconv"

	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// check validates a collected value against s and returns the value the
// caller sees: records hold exactly their declared fields, ID numbers
// become strings, failed optional values become Null and failed list
// elements are dropped.
func (r *resolver) check(v ir.Value, s shape.Shape, path []string) (ir.Value, error) {
	switch sh := s.(type) {
	case shape.Optional:
		if ir.IsNull(v) {
			return ir.Null{}, nil
		}
		out, err := r.check(v, sh.Inner, path)
		if err != nil {
			r.log.Debug("optional value invalid", "path", dotted(path), "error", err)
			return ir.Null{}, nil
		}
		return out, nil

	case shape.Scalar:
		if ir.IsNull(v) {
			return nil, r.missing(path)
		}
		return checkScalar(v, sh.Kind, path)

	case *shape.Record:
		if ir.IsNull(v) {
			return nil, r.missing(path)
		}
		m, ok := v.(ir.Mapping)
		if !ok {
			return nil, ir.NewTypeMismatchError(path, sh.Name, v)
		}
		out := make(ir.Mapping, len(sh.Fields))
		for _, f := range sh.Fields {
			fv, err := r.check(m[f.Name], f.Shape, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			out[f.Name] = fv
		}
		return out, nil

	case shape.List:
		if ir.IsNull(v) {
			return ir.Sequence{}, nil
		}
		seq, ok := v.(ir.Sequence)
		if !ok {
			return nil, ir.NewTypeMismatchError(path, sh.String(), v)
		}
		out := make(ir.Sequence, 0, len(seq))
		for i, elem := range seq {
			ev, err := r.check(elem, sh.Inner, appendPath(path, strconv.Itoa(i)))
			if err != nil {
				r.dropElement(path, strconv.Itoa(i), err)
				continue
			}
			out = append(out, ev)
		}
		return out, nil
	}
	return nil, ir.NewTypeMismatchError(path, shapeName(s), v)
}

// missing reports a required value that is absent. A read error skipped
// on the way to path (or to any of its parents) is more useful than
// DATA_NOT_FOUND, so it is returned instead.
func (r *resolver) missing(path []string) error {
	for i := len(path); i >= 0; i-- {
		if err, ok := r.suppressed[dotted(path[:i])]; ok {
			return err
		}
	}
	return ir.NewDataNotFoundError(path)
}

func checkScalar(v ir.Value, kind shape.ScalarKind, path []string) (ir.Value, error) {
	switch kind {
	case shape.Boolean:
		if b, ok := v.(ir.Bool); ok {
			return b, nil
		}
	case shape.String:
		if s, ok := v.(ir.String); ok {
			return s, nil
		}
	case shape.Float:
		if n, ok := v.(ir.Number); ok {
			return n, nil
		}
	case shape.Int:
		if n, ok := v.(ir.Number); ok && n.IsIntegral() && n >= math.MinInt32 && n <= math.MaxInt32 {
			return n, nil
		}
	case shape.ID:
		switch id := v.(type) {
		case ir.String:
			return id, nil
		case ir.Number:
			return ir.String(id.String()), nil
		}
	}
	return nil, ir.NewTypeMismatchError(path, kind.String(), v)
}
