package schema

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// keywordOrder fixes evaluation order: cheap primitive checks first, then
// structural keywords, then combinators.
var keywordOrder = []string{
	"type", "const", "enum",
	"multipleOf", "minimum", "maximum",
	"length", "minimumLength", "maximumLength", "pattern",
	"contains", "items", "prefixItems", "unique",
	"properties", "required", "dependentRequired", "dependentSchemas",
	"anyOf", "allOf", "oneOf", "not", "if",
}

// Compile turns a schema descriptor into a rule tree. Malformed keyword
// values return an error wrapping types.ErrInvalidSchema.
func Compile(desc map[string]any) (*Node, error) {
	norm, err := types.NormalizeRecord(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidSchema, err)
	}
	return compileNode(norm, "#")
}

func compileNode(desc map[string]any, path string) (*Node, error) {
	n := &Node{}
	for _, kw := range keywordOrder {
		val, ok := desc[kw]
		if !ok {
			continue
		}
		r, err := compileKeyword(desc, kw, val, path+"/"+kw)
		if err != nil {
			return nil, err
		}
		if r != nil {
			n.Rules = append(n.Rules, r)
		}
	}
	if _, ok := desc["if"]; !ok {
		for _, kw := range []string{"then", "else"} {
			if _, ok := desc[kw]; ok {
				// then/else without if are inert; still reject malformed ones.
				if _, err := subNode(desc[kw], path+"/"+kw); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

func compileKeyword(desc map[string]any, kw string, val any, path string) (Rule, error) {
	switch kw {
	case "type":
		s, ok := val.(string)
		if !ok || !knownKinds[Kind(s)] {
			return nil, invalid(path, "unknown type %v", val)
		}
		return Type{Kind: Kind(s)}, nil
	case "const":
		return Const{Value: val}, nil
	case "enum":
		list, ok := val.([]any)
		if !ok {
			return nil, invalid(path, "must be an array")
		}
		return Enum{Values: list}, nil
	case "multipleOf":
		f, ok := val.(float64)
		if !ok || f <= 0 {
			return nil, invalid(path, "must be a positive number")
		}
		return MultipleOf{Divisor: f}, nil
	case "minimum":
		f, ok := val.(float64)
		if !ok {
			return nil, invalid(path, "must be a number")
		}
		return Minimum{Min: f}, nil
	case "maximum":
		f, ok := val.(float64)
		if !ok {
			return nil, invalid(path, "must be a number")
		}
		return Maximum{Max: f}, nil
	case "length", "minimumLength", "maximumLength":
		n, ok := count(val)
		if !ok {
			return nil, invalid(path, "must be a non-negative integer")
		}
		switch kw {
		case "length":
			return Length{N: n}, nil
		case "minimumLength":
			return MinimumLength{N: n}, nil
		default:
			return MaximumLength{N: n}, nil
		}
	case "pattern":
		s, ok := val.(string)
		if !ok {
			return nil, invalid(path, "must be a string")
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, invalid(path, "%v", err)
		}
		return Pattern{Regexp: re}, nil
	case "contains":
		n, err := subNode(val, path)
		if err != nil {
			return nil, err
		}
		return Contains{Node: n}, nil
	case "items":
		n, err := subNode(val, path)
		if err != nil {
			return nil, err
		}
		return Items{Node: n}, nil
	case "prefixItems":
		nodes, err := subNodes(val, path)
		if err != nil {
			return nil, err
		}
		return PrefixItems{Nodes: nodes}, nil
	case "unique":
		b, ok := val.(bool)
		if !ok {
			return nil, invalid(path, "must be a boolean")
		}
		if !b {
			return nil, nil
		}
		return Unique{}, nil
	case "properties":
		m, ok := val.(map[string]any)
		if !ok {
			return nil, invalid(path, "must be an object")
		}
		fields := make(map[string]*Node, len(m))
		for _, name := range sortedKeys(m) {
			n, err := subNode(m[name], path+"/"+name)
			if err != nil {
				return nil, err
			}
			fields[name] = n
		}
		return Properties{Fields: fields}, nil
	case "required":
		fields, ok := stringList(val)
		if !ok {
			return nil, invalid(path, "must be an array of strings")
		}
		return Required{Fields: fields}, nil
	case "dependentRequired":
		m, ok := val.(map[string]any)
		if !ok {
			return nil, invalid(path, "must be an object")
		}
		deps := make(map[string][]string, len(m))
		for k, v := range m {
			fields, ok := stringList(v)
			if !ok {
				return nil, invalid(path+"/"+k, "must be an array of strings")
			}
			deps[k] = fields
		}
		return DependentRequired{Fields: deps}, nil
	case "dependentSchemas":
		m, ok := val.(map[string]any)
		if !ok {
			return nil, invalid(path, "must be an object")
		}
		deps := make(map[string]*Node, len(m))
		for _, k := range sortedKeys(m) {
			n, err := subNode(m[k], path+"/"+k)
			if err != nil {
				return nil, err
			}
			deps[k] = n
		}
		return DependentSchemas{Nodes: deps}, nil
	case "anyOf", "allOf", "oneOf":
		nodes, err := subNodes(val, path)
		if err != nil {
			return nil, err
		}
		switch kw {
		case "anyOf":
			return AnyOf{Nodes: nodes}, nil
		case "allOf":
			return AllOf{Nodes: nodes}, nil
		default:
			return OneOf{Nodes: nodes}, nil
		}
	case "not":
		n, err := subNode(val, path)
		if err != nil {
			return nil, err
		}
		return Not{Node: n}, nil
	case "if":
		cond := Conditional{}
		var err error
		if cond.If, err = subNode(val, path); err != nil {
			return nil, err
		}
		base := path[:len(path)-len("/if")]
		if v, ok := desc["then"]; ok {
			if cond.Then, err = subNode(v, base+"/then"); err != nil {
				return nil, err
			}
		}
		if v, ok := desc["else"]; ok {
			if cond.Else, err = subNode(v, base+"/else"); err != nil {
				return nil, err
			}
		}
		return cond, nil
	}
	return nil, invalid(path, "unhandled keyword")
}

func subNode(val any, path string) (*Node, error) {
	m, ok := val.(map[string]any)
	if !ok {
		return nil, invalid(path, "must be a schema object")
	}
	return compileNode(m, path)
}

func subNodes(val any, path string) ([]*Node, error) {
	list, ok := val.([]any)
	if !ok {
		return nil, invalid(path, "must be an array of schema objects")
	}
	nodes := make([]*Node, len(list))
	for i, elem := range list {
		n, err := subNode(elem, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// count accepts an integer-valued, non-negative number.
func count(val any) (int, bool) {
	f, ok := val.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func stringList(val any) ([]string, bool) {
	list, ok := val.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(list))
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", types.ErrInvalidSchema, path, fmt.Sprintf(format, args...))
}
