// Package schema compiles declarative schema descriptors into rule trees and
// validates values against them.
//
// A descriptor is a JSON-like map using keywords close to JSON Schema: type,
// const, enum, multipleOf, minimum, maximum, length, minimumLength,
// maximumLength, pattern, items, prefixItems, contains, unique, properties,
// required, dependentRequired, dependentSchemas, anyOf, allOf, oneOf, not, and
// if/then/else. Compile turns a descriptor into a Node whose Rules are drawn
// from a closed set of variant types; Validate is a pure conjunction over
// them. Keywords absent from a descriptor impose no constraint, and keywords
// the grammar does not know are ignored as annotations.
//
// A keyword applied to a value of the wrong kind fails: minimum on a string,
// items on an object, and required on an array all reject the value.
//
// The package has no knowledge of tables or stores. CompileTable adds the
// table-level metadata (default, autoIncrement, autoUUID, primaryKey,
// foreignKeys) that the store enforces across rows.
package schema
