// Package store implements the relational record store: named tables of
// schema-validated records with primary-key uniqueness and foreign-key
// referential integrity.
//
// Every write runs the same pipeline. Insert layers auto-increment values,
// generated UUIDs, schema defaults, and caller fields; the resulting row must
// satisfy the table's schema, must not repeat an existing primary key, and
// must resolve each of its foreign keys. Update and Delete compute their
// whole candidate set, check it, and only then replace the table, so each
// operation either fully applies or leaves the store untouched.
//
// Reads hand out deep copies. Predicates also see copies, so nothing outside
// the package can reach stored rows.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package store
