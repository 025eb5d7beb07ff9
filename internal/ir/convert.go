package ir

import (
	"encoding/json"
	"fmt"
	"time"
)

// FromNative converts a decoded Go value into a Value.
//
// Accepted inputs are the shapes produced by common decoders: nil, bool,
// every integer and float kind, string, json.Number, time.Time (as an
// RFC 3339 string), []any, map[string]any and map[any]any (keys are
// formatted with %v). Values that are already Values pass through.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Number(val), nil
	case int8:
		return Number(val), nil
	case int16:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case uint8:
		return Number(val), nil
	case uint16:
		return Number(val), nil
	case uint32:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", val, err)
		}
		return Number(f), nil
	case time.Time:
		return String(val.Format(time.RFC3339Nano)), nil
	case []any:
		seq := make(Sequence, len(val))
		for i, elem := range val {
			converted, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = converted
		}
		return seq, nil
	case map[string]any:
		m := make(Mapping, len(val))
		for k, elem := range val {
			converted, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			m[k] = converted
		}
		return m, nil
	case map[any]any:
		m := make(Mapping, len(val))
		for k, elem := range val {
			key := fmt.Sprintf("%v", k)
			converted, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			m[key] = converted
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToNative converts a Value into plain Go values: nil, bool, float64,
// string, []any and map[string]any.
func ToNative(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Sequence:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToNative(elem)
		}
		return out
	case Mapping:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToNative(elem)
		}
		return out
	default:
		return nil
	}
}
