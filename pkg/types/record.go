package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// Record is one row of a table: field name to value. Stored records hold only
// normalized values: nil, bool, string, float64, []any, and map[string]any,
// nested arbitrarily. NormalizeRecord produces that form from the looser
// values callers and decoders hand in.
type Record map[string]any

// Clone returns a deep copy of the record. A nil record clones to nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a normalized value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = CloneValue(elem)
		}
		return out
	case Record:
		return map[string]any(val.Clone())
	default:
		return v
	}
}

// NormalizeRecord deep-copies r into normalized form. Integers of every width,
// float32, and json.Number become float64; Records and typed slices become
// map[string]any and []any. Values with no JSON equivalent return an error
// wrapping ErrInvalidData.
func NormalizeRecord(r map[string]any) (Record, error) {
	if r == nil {
		return Record{}, nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		nv, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// Normalize converts a single value into normalized form, copying containers.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return val, nil
	case float64:
		return checkFinite(val)
	case float32:
		return checkFinite(float64(val))
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrInvalidData, val)
		}
		return checkFinite(f)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			nv, err := Normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			nm, err := NormalizeRecord(m)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = map[string]any(nm)
		}
		return out, nil
	case map[string]any:
		nm, err := NormalizeRecord(val)
		if err != nil {
			return nil, err
		}
		return map[string]any(nm), nil
	case Record:
		nm, err := NormalizeRecord(val)
		if err != nil {
			return nil, err
		}
		return map[string]any(nm), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidData, v)
	}
}

func checkFinite(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number", ErrInvalidData)
	}
	return f, nil
}
