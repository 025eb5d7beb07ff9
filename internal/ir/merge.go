package ir

// Merge combines src into dst and returns the result.
//
// Rules, in order:
//   - src Null: dst is returned unchanged (absence never overrides presence)
//   - dst Null: a copy of src is returned
//   - same scalar kind: src replaces dst
//   - both Sequence: dst elements followed by src elements
//   - both Mapping: keys of src are merged recursively into dst
//   - anything else: INCOMPATIBLE_MERGE carrying both operands
//
// Mapping merges mutate dst in place. src is never aliased into the result,
// so callers may keep using src afterwards. Callers control precedence:
// the more specific value is always the src argument.
func Merge(dst, src Value) (Value, error) {
	if IsNull(src) {
		return OrNull(dst), nil
	}
	if IsNull(dst) {
		return Clone(src), nil
	}

	switch d := dst.(type) {
	case Bool:
		if s, ok := src.(Bool); ok {
			return s, nil
		}
	case Number:
		if s, ok := src.(Number); ok {
			return s, nil
		}
	case String:
		if s, ok := src.(String); ok {
			return s, nil
		}
	case Sequence:
		if s, ok := src.(Sequence); ok {
			out := make(Sequence, 0, len(d)+len(s))
			out = append(out, d...)
			for _, elem := range s {
				out = append(out, Clone(elem))
			}
			return out, nil
		}
	case Mapping:
		if s, ok := src.(Mapping); ok {
			return mergeMapping(d, s)
		}
	}

	return nil, NewIncompatibleMergeError(dst, src)
}

// mergeMapping merges src into dst key by key, in sorted key order so
// that the first reported conflict is deterministic.
func mergeMapping(dst, src Mapping) (Value, error) {
	if dst == nil {
		dst = make(Mapping, len(src))
	}
	for _, k := range src.SortedKeys() {
		existing, ok := dst[k]
		if !ok {
			dst[k] = Clone(src[k])
			continue
		}
		merged, err := Merge(existing, src[k])
		if err != nil {
			return nil, prefixPath(err, k)
		}
		dst[k] = merged
	}
	return dst, nil
}

// MergeAt merges src into dst under key.
//
// A Null dst becomes a single-key Mapping. A Mapping dst merges src into
// the existing entry, or inserts it. Any other dst fails with
// CANNOT_MERGE_INTO_NON_MAPPING.
func MergeAt(dst Value, key string, src Value) (Value, error) {
	switch d := dst.(type) {
	case nil, Null:
		return Mapping{key: Clone(src)}, nil
	case Mapping:
		if d == nil {
			return Mapping{key: Clone(src)}, nil
		}
		existing, ok := d[key]
		if !ok {
			d[key] = Clone(src)
			return d, nil
		}
		merged, err := Merge(existing, src)
		if err != nil {
			return nil, prefixPath(err, key)
		}
		d[key] = merged
		return d, nil
	default:
		return nil, NewCannotMergeIntoNonMappingError(dst, key)
	}
}

// prefixPath records the mapping key under which a merge error happened.
func prefixPath(err error, key string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	if e.Path == "" {
		e.Path = key
	} else {
		e.Path = key + "." + e.Path
	}
	return e
}
