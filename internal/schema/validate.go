package schema

import (
	"math"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Permissive address syntax: RFC 5322 atext runs separated by dots on both
// sides of a single @.
const atext = "[a-zA-Z0-9!#$%&'*+,\\-./=?^_`{|}~]+"

var (
	emailRegexp = regexp.MustCompile(`^` + atext + `(\.` + atext + `)*@` + atext + `(\.` + atext + `)*$`)
	dateRegexp  = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)
)

// Validate compiles desc and reports whether value conforms to it. value is
// normalized first, so Go integers and typed slices are accepted. Use Compile
// once and Node.Validate when checking many values against one descriptor.
func Validate(desc map[string]any, value any) (bool, error) {
	n, err := Compile(desc)
	if err != nil {
		return false, err
	}
	v, err := types.Normalize(value)
	if err != nil {
		return false, err
	}
	return n.Validate(v), nil
}

// Validate reports whether a normalized value satisfies every rule of n.
// Validate has no side effects and never mutates v.
func (n *Node) Validate(v any) bool {
	if n == nil {
		return true
	}
	if rec, ok := v.(types.Record); ok {
		v = map[string]any(rec)
	}
	for _, r := range n.Rules {
		if !check(r, v) {
			return false
		}
	}
	return true
}

func check(r Rule, v any) bool {
	switch r := r.(type) {
	case Type:
		return checkType(r.Kind, v)
	case Const:
		return Equal(r.Value, v)
	case Enum:
		for _, want := range r.Values {
			if Equal(want, v) {
				return true
			}
		}
		return false
	case MultipleOf:
		f, ok := v.(float64)
		return ok && math.Mod(f, r.Divisor) == 0
	case Minimum:
		f, ok := v.(float64)
		return ok && f >= r.Min
	case Maximum:
		f, ok := v.(float64)
		return ok && f <= r.Max
	case Length:
		n, ok := size(v)
		return ok && n == r.N
	case MinimumLength:
		n, ok := size(v)
		return ok && n >= r.N
	case MaximumLength:
		n, ok := size(v)
		return ok && n <= r.N
	case Pattern:
		s, ok := v.(string)
		return ok && r.Regexp.MatchString(s)
	case Contains:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		for _, elem := range arr {
			if r.Node.Validate(elem) {
				return true
			}
		}
		return false
	case Items:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		for _, elem := range arr {
			if !r.Node.Validate(elem) {
				return false
			}
		}
		return true
	case PrefixItems:
		arr, ok := v.([]any)
		if !ok || len(arr) < len(r.Nodes) {
			return false
		}
		for i, n := range r.Nodes {
			if !n.Validate(arr[i]) {
				return false
			}
		}
		return true
	case Unique:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		for i := range arr {
			for j := i + 1; j < len(arr); j++ {
				if Equal(arr[i], arr[j]) {
					return false
				}
			}
		}
		return true
	case Properties:
		obj, ok := v.(map[string]any)
		if !ok {
			return true
		}
		for name, n := range r.Fields {
			if fv, present := obj[name]; present && !n.Validate(fv) {
				return false
			}
		}
		return true
	case Required:
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for _, name := range r.Fields {
			if _, present := obj[name]; !present {
				return false
			}
		}
		return true
	case DependentRequired:
		obj, ok := v.(map[string]any)
		if !ok {
			return true
		}
		for key, deps := range r.Fields {
			if _, present := obj[key]; !present {
				continue
			}
			for _, dep := range deps {
				if _, present := obj[dep]; !present {
					return false
				}
			}
		}
		return true
	case DependentSchemas:
		obj, ok := v.(map[string]any)
		if !ok {
			return true
		}
		for key, n := range r.Nodes {
			if _, present := obj[key]; present && !n.Validate(obj) {
				return false
			}
		}
		return true
	case AnyOf:
		for _, n := range r.Nodes {
			if n.Validate(v) {
				return true
			}
		}
		return false
	case AllOf:
		for _, n := range r.Nodes {
			if !n.Validate(v) {
				return false
			}
		}
		return true
	case OneOf:
		matched := 0
		for _, n := range r.Nodes {
			if n.Validate(v) {
				matched++
				if matched > 1 {
					return false
				}
			}
		}
		return matched == 1
	case Not:
		return !r.Node.Validate(v)
	case Conditional:
		if r.If.Validate(v) {
			return r.Then.Validate(v)
		}
		return r.Else.Validate(v)
	default:
		return false
	}
}

func checkType(k Kind, v any) bool {
	switch k {
	case KindNull:
		return v == nil
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindDate:
		s, ok := v.(string)
		return ok && dateRegexp.MatchString(s)
	case KindEmail:
		s, ok := v.(string)
		return ok && emailRegexp.MatchString(s)
	case KindNumber:
		_, ok := v.(float64)
		return ok
	case KindInteger:
		f, ok := v.(float64)
		return ok && f == math.Trunc(f)
	case KindArray:
		_, ok := v.([]any)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

// size counts code points of an NFC-normalized string or elements of an array.
func size(v any) (int, bool) {
	switch val := v.(type) {
	case string:
		return utf8.RuneCountInString(norm.NFC.String(val)), true
	case []any:
		return len(val), true
	default:
		return 0, false
	}
}
