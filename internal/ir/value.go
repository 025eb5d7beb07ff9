package ir

import (
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a sealed interface representing parsed document content.
// Only Null, Bool, Number, String, Sequence, and Mapping implement this.
//
// A nil Value is treated as Null everywhere in this package.
type Value interface {
	Kind() Kind
	value() // Sealed - only these types implement it
}

// Null represents absent data.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

// Bool represents a boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// Number represents any numeric document value.
// Integers read from documents are stored as integral Numbers.
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (Number) value()     {}

// IsIntegral reports whether n has no fractional part and fits in an int64.
func (n Number) IsIntegral() bool {
	f := float64(n)
	return !math.IsInf(f, 0) && f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64
}

// String formats n in its shortest round-trip form.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String represents a string.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Sequence represents an ordered list of values.
type Sequence []Value

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) value()     {}

// Mapping represents string-keyed values. Key order is irrelevant;
// use SortedKeys() for deterministic iteration.
type Mapping map[string]Value

func (Mapping) Kind() Kind { return KindMapping }
func (Mapping) value()     {}

// Pair is a key-value pair for Mapping construction.
type Pair struct {
	Key   string
	Value Value
}

// O is a shorthand for Pair.
// Example: NewMapping(O("name", String("widget")), O("size", Number(1.1)))
func O(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMapping creates a Mapping from key-value pairs. Later pairs win.
func NewMapping(pairs ...Pair) Mapping {
	m := make(Mapping, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

// NewSequence creates a Sequence from values.
func NewSequence(vals ...Value) Sequence {
	return Sequence(vals)
}

// KindOf returns the kind of v, treating nil as KindNull.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// IsNull reports whether v is absent (nil or Null).
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

// OrNull returns v, or Null if v is nil.
func OrNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Sequence:
		if val == nil {
			return Sequence(nil)
		}
		out := make(Sequence, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Mapping:
		if val == nil {
			return Mapping(nil)
		}
		out := make(Mapping, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal.
// Mapping key order is irrelevant; nil and Null are equal.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil, Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Sequence:
		bv := b.(Sequence)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Mapping:
		bv := b.(Mapping)
		if len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, ok := bv[k]
			if !ok || !Equal(elem, other) {
				return false
			}
		}
		return true
	}
	return false
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a different order.
func (m Mapping) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
