package store

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Store holds tables and their compiled schemas.
type Store struct {
	tables  map[string]*table
	log     *zap.Logger
	newUUID func() string
}

// table is one named sequence of rows. seq is the last auto-increment value
// handed out; it only grows, so values freed by deletes are never reused.
type table struct {
	schema *schema.TableSchema
	rows   []types.Record
	seq    int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for rejected writes and catalog changes.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUUIDGenerator replaces the UUID v7 generator used for autoUUID fields.
func WithUUIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newUUID = gen
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tables:  make(map[string]*table),
		log:     zap.NewNop(),
		newUUID: newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateTable adds an empty table governed by desc. The schema is immutable
// afterwards. Every foreign key must target an existing table or the new
// table itself.
func (s *Store) CreateTable(name string, desc map[string]any) error {
	if name == "" {
		return fmt.Errorf("%w: empty table name", types.ErrInvalidSchema)
	}
	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("%w: %q", types.ErrTableExists, name)
	}
	ts, err := schema.CompileTable(desc)
	if err != nil {
		return fmt.Errorf("table %q: %w", name, err)
	}
	for _, fk := range ts.ForeignKeys {
		if fk.ForeignTable == name {
			continue
		}
		if _, ok := s.tables[fk.ForeignTable]; !ok {
			return fmt.Errorf("table %q: foreign key %q: %w: %q", name, fk.Name, types.ErrTableNotFound, fk.ForeignTable)
		}
	}
	s.tables[name] = &table{schema: ts}
	s.log.Debug("table created", zap.String("table", name))
	return nil
}

// DropTable removes a table and its schema. It fails with ErrReferenced when
// any other table declares a foreign key targeting it, whether or not any row
// currently uses that key.
func (s *Store) DropTable(name string) error {
	if _, err := s.table(name); err != nil {
		return err
	}
	for _, other := range s.sortedNames() {
		if other == name {
			continue
		}
		if s.tables[other].schema.References(name) {
			return fmt.Errorf("%w: cannot drop %q: referenced by foreign key in table %q", types.ErrReferenced, name, other)
		}
	}
	delete(s.tables, name)
	s.log.Debug("table dropped", zap.String("table", name))
	return nil
}

// Tables returns the table names in lexical order.
func (s *Store) Tables() []string {
	return s.sortedNames()
}

// Schema returns a copy of the descriptor a table was created with.
func (s *Store) Schema(name string) (map[string]any, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	return t.schema.Raw(), nil
}

// Count returns the number of rows in a table.
func (s *Store) Count(name string) (int, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	return len(t.rows), nil
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrTableNotFound, name)
	}
	return t, nil
}

func (s *Store) sortedNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
