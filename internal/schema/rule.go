package schema

import "regexp"

// Kind names a primitive accepted by the type keyword.
type Kind string

// Kinds accepted by the type keyword.
const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindString  Kind = "string"
	KindDate    Kind = "date"
	KindEmail   Kind = "email"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

var knownKinds = map[Kind]bool{
	KindNull:    true,
	KindBoolean: true,
	KindString:  true,
	KindDate:    true,
	KindEmail:   true,
	KindNumber:  true,
	KindInteger: true,
	KindArray:   true,
	KindObject:  true,
}

// Node is a compiled rule node: the conjunction of its Rules. A nil Node
// accepts every value.
type Node struct {
	Rules []Rule
}

// Rule is one keyword constraint. The set of implementations is closed; only
// the types in this file implement it.
type Rule interface {
	rule()
}

// Type checks the primitive kind of a value.
type Type struct{ Kind Kind }

// Const requires deep equality with Value.
type Const struct{ Value any }

// Enum requires deep equality with one of Values.
type Enum struct{ Values []any }

// MultipleOf requires a number exactly divisible by Divisor.
type MultipleOf struct{ Divisor float64 }

// Minimum requires a number >= Min.
type Minimum struct{ Min float64 }

// Maximum requires a number <= Max.
type Maximum struct{ Max float64 }

// Length requires a string or array of exactly N elements.
type Length struct{ N int }

// MinimumLength requires a string or array of at least N elements.
type MinimumLength struct{ N int }

// MaximumLength requires a string or array of at most N elements.
type MaximumLength struct{ N int }

// Pattern requires a string matching Regexp anywhere.
type Pattern struct{ Regexp *regexp.Regexp }

// Contains requires at least one array element to satisfy Node.
type Contains struct{ Node *Node }

// Items requires every array element to satisfy Node.
type Items struct{ Node *Node }

// PrefixItems requires the first len(Nodes) array elements to satisfy the
// positional Nodes. Shorter arrays fail.
type PrefixItems struct{ Nodes []*Node }

// Unique requires array elements to be pairwise unequal.
type Unique struct{}

// Properties validates each listed field that is present in an object.
// Fields absent from Fields are not checked.
type Properties struct{ Fields map[string]*Node }

// Required requires every named field to be present in an object.
type Required struct{ Fields []string }

// DependentRequired requires, for each present key, the fields it maps to.
type DependentRequired struct{ Fields map[string][]string }

// DependentSchemas validates the whole object against the node mapped to
// each present key.
type DependentSchemas struct{ Nodes map[string]*Node }

// AnyOf requires at least one of Nodes to validate.
type AnyOf struct{ Nodes []*Node }

// AllOf requires every one of Nodes to validate.
type AllOf struct{ Nodes []*Node }

// OneOf requires exactly one of Nodes to validate.
type OneOf struct{ Nodes []*Node }

// Not requires Node to reject the value.
type Not struct{ Node *Node }

// Conditional applies Then when If validates and Else otherwise. A nil Then
// or Else accepts.
type Conditional struct{ If, Then, Else *Node }

func (Type) rule()              {}
func (Const) rule()             {}
func (Enum) rule()              {}
func (MultipleOf) rule()        {}
func (Minimum) rule()           {}
func (Maximum) rule()           {}
func (Length) rule()            {}
func (MinimumLength) rule()     {}
func (MaximumLength) rule()     {}
func (Pattern) rule()           {}
func (Contains) rule()          {}
func (Items) rule()             {}
func (PrefixItems) rule()       {}
func (Unique) rule()            {}
func (Properties) rule()        {}
func (Required) rule()          {}
func (DependentRequired) rule() {}
func (DependentSchemas) rule()  {}
func (AnyOf) rule()             {}
func (AllOf) rule()             {}
func (OneOf) rule()             {}
func (Not) rule()               {}
func (Conditional) rule()       {}
