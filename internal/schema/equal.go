package schema

import "github.com/mesh-intelligence/pantry/pkg/types"

// Equal reports deep structural equality of two normalized values.
// Primitives compare by value. Arrays compare element-wise and objects
// compare key-wise; an array never equals an object, even one whose keys look
// like indices.
func Equal(a, b any) bool {
	if rec, ok := a.(types.Record); ok {
		a = map[string]any(rec)
	}
	if rec, ok := b.(types.Record); ok {
		b = map[string]any(rec)
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		return ok && equalSeq(av, bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && equalMap(av, bv)
	default:
		return false
	}
}

func equalSeq(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalMap(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}
