package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/confql/internal/cursor"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// resolver holds the state of one query. It is used from a single
// goroutine.
type resolver struct {
	ctx context.Context
	log *slog.Logger

	// suppressed holds read errors skipped during collection, keyed by
	// dotted query path. The check phase reports them in place of
	// DATA_NOT_FOUND when the value they hid is required.
	suppressed map[string]error
}

// levels customizes the broad-to-specific walk for one shape.
type levels struct {
	// normalize rewrites a level's value before it is merged. It is not
	// called at the complete level.
	normalize func(c cursor.Cursor, v ir.Value) (ir.Value, error)

	// complete produces the value at the complete level from what the
	// directory's index document holds there.
	complete func(c cursor.Cursor, v ir.Value) (ir.Value, error)

	// merge combines a level with the deeper levels. Defaults to ir.Merge.
	merge func(broad, deeper ir.Value) (ir.Value, error)
}

func (r *resolver) resolve(c cursor.Cursor, s shape.Shape, path []string) (ir.Value, error) {
	v, err := r.collect(c, s, path)
	if err != nil {
		return nil, err
	}
	return r.check(v, s, path)
}

// collect gathers the raw value for s from c and every cursor after it.
func (r *resolver) collect(c cursor.Cursor, s shape.Shape, path []string) (ir.Value, error) {
	switch sh := s.(type) {
	case shape.Optional:
		v, err := r.collect(c, sh.Inner, path)
		if err != nil {
			if isCanceled(err) {
				return nil, err
			}
			r.log.Debug("optional value unresolved", "path", dotted(path), "error", err)
			return ir.Null{}, nil
		}
		return v, nil

	case shape.Scalar:
		return r.layered(c, path, levels{})

	case *shape.Record:
		return r.layered(c, path, levels{
			complete: func(c cursor.Cursor, v ir.Value) (ir.Value, error) {
				return r.completeRecord(c, v, sh, path)
			},
		})

	case shape.List:
		return r.collectList(c, sh, path)

	case nil:
		return nil, fmt.Errorf("no shape for %q", dotted(path))

	default:
		return nil, fmt.Errorf("unsupported shape %T", s)
	}
}

// layered reads the value at c, recurses into the next cursor and merges
// the deeper value on top.
func (r *resolver) layered(c cursor.Cursor, path []string, hooks levels) (ir.Value, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	value, err := r.read(c, path)
	if err != nil {
		return nil, err
	}

	if c.IsComplete() {
		if hooks.complete == nil {
			return value, nil
		}
		return hooks.complete(c, value)
	}

	if hooks.normalize != nil {
		if value, err = hooks.normalize(c, value); err != nil {
			return nil, err
		}
	}

	next, ok := c.Advance()
	if !ok {
		return value, nil
	}

	deeper, err := r.layered(next, path, hooks)
	if err != nil {
		return nil, err
	}

	if hooks.merge != nil {
		return hooks.merge(value, deeper)
	}
	merged, err := ir.Merge(value, deeper)
	if err != nil {
		return nil, withPath(err, path)
	}
	return merged, nil
}

// read loads the value visible at c. Absence reads as Null. Unreadable
// documents read as Null and are remembered under path.
func (r *resolver) read(c cursor.Cursor, path []string) (ir.Value, error) {
	v, err := c.ReadHere()
	switch {
	case err == nil:
		r.log.Debug("read", "document", c.Document(), "mode", c.Mode().String(), "kind", ir.KindOf(v).String())
		return ir.OrNull(v), nil
	case ir.IsAbsence(err):
		return ir.Null{}, nil
	case ir.IsReadError(err):
		r.log.Warn("skipping unreadable document", "document", c.Document(), "path", dotted(path), "error", err)
		r.suppress(path, err)
		return ir.Null{}, nil
	default:
		return nil, err
	}
}

func (r *resolver) suppress(path []string, err error) {
	key := dotted(path)
	if _, ok := r.suppressed[key]; !ok {
		r.suppressed[key] = err
	}
}

// completeRecord resolves every declared field from its own cursor and
// merges it under the field's key.
func (r *resolver) completeRecord(c cursor.Cursor, value ir.Value, rec *shape.Record, path []string) (ir.Value, error) {
	for _, f := range rec.Fields {
		fv, err := r.collect(c.Join(f.Name), f.Shape, appendPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		if value, err = ir.MergeAt(value, f.Name, fv); err != nil {
			return nil, withPath(err, path)
		}
	}
	return value, nil
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}
