package types

import "errors"

// Predicate reports whether a record belongs to the result of a read, update,
// or delete. Predicates receive a private copy of the stored record. A nil
// Predicate matches every record.
type Predicate func(Record) bool

// Reader is the read-only contract consumers use to obtain validated rows.
// Presentation layers, catalog queries, and the MCP server depend on Reader
// rather than on the store's internal storage.
type Reader interface {
	// Select returns copies of every record matching pred, in table order.
	Select(table string, pred Predicate) ([]Record, error)

	// Find returns a copy of the first record matching pred.
	// Returns ErrNotFound if nothing matches.
	Find(table string, pred Predicate) (Record, error)

	// Link resolves the foreign key named fk of record and returns a copy of
	// the referenced row. Returns ErrForeignKeyNotFound if the table declares
	// no such key and ErrNotFound if the referenced row is absent.
	Link(table string, record Record, fk string) (Record, error)
}

// Schema errors: the call names a table or foreign key that does not fit the
// current catalog.
var (
	ErrTableNotFound      = errors.New("no such table")
	ErrTableExists        = errors.New("table already exists")
	ErrForeignKeyNotFound = errors.New("no such foreign key")
	ErrInvalidSchema      = errors.New("invalid schema")
)

// Write errors.
var (
	ErrValidation  = errors.New("record failed validation")
	ErrReferenced  = errors.New("referential integrity violation")
	ErrInvalidData = errors.New("unsupported value")
	ErrNotFound    = errors.New("record not found")
)

// Persistence errors.
var (
	ErrFormat     = errors.New("invalid store format")
	ErrNoSnapshot = errors.New("no snapshot saved")
)
