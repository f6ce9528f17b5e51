package store

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() types.Snapshot {
	snap := types.Snapshot{
		Tables:    make(map[string][]types.Record, len(s.tables)),
		Schemas:   make(map[string]map[string]any, len(s.tables)),
		Sequences: make(map[string]int64),
	}
	for name, t := range s.tables {
		rows := make([]types.Record, len(t.rows))
		for i, row := range t.rows {
			rows[i] = row.Clone()
		}
		snap.Tables[name] = rows
		snap.Schemas[name] = t.schema.Raw()
		if t.seq > 0 {
			snap.Sequences[name] = t.seq
		}
	}
	return snap
}

// Load replaces the store's contents with snap. The snapshot must carry both
// tables and schemas for the same set of names, and every row must satisfy
// its schema, primary key, and foreign keys; otherwise Load returns an error
// wrapping ErrFormat and the store is unchanged. Missing sequences are
// recovered from the largest auto-increment value in each table.
func (s *Store) Load(snap types.Snapshot) error {
	if snap.Tables == nil {
		return fmt.Errorf("%w: missing tables", types.ErrFormat)
	}
	if snap.Schemas == nil {
		return fmt.Errorf("%w: missing schemas", types.ErrFormat)
	}

	staged := &Store{
		tables:  make(map[string]*table, len(snap.Schemas)),
		log:     s.log,
		newUUID: s.newUUID,
	}
	for name, desc := range snap.Schemas {
		if _, ok := snap.Tables[name]; !ok {
			return fmt.Errorf("%w: schema %q has no table", types.ErrFormat, name)
		}
		ts, err := schema.CompileTable(desc)
		if err != nil {
			return fmt.Errorf("%w: table %q: %w", types.ErrFormat, name, err)
		}
		staged.tables[name] = &table{schema: ts, seq: snap.Sequences[name]}
	}
	for name, rows := range snap.Tables {
		t, ok := staged.tables[name]
		if !ok {
			return fmt.Errorf("%w: table %q has no schema", types.ErrFormat, name)
		}
		t.rows = make([]types.Record, len(rows))
		for i, row := range rows {
			nr, err := types.NormalizeRecord(row)
			if err != nil {
				return fmt.Errorf("%w: table %q row %d: %w", types.ErrFormat, name, i, err)
			}
			t.rows[i] = nr
		}
	}

	names := staged.sortedNames()
	for _, name := range names {
		t := staged.tables[name]
		for _, fk := range t.schema.ForeignKeys {
			if _, ok := staged.tables[fk.ForeignTable]; !ok {
				return fmt.Errorf("%w: table %q: foreign key %q targets missing table %q",
					types.ErrFormat, name, fk.Name, fk.ForeignTable)
			}
		}
	}
	for _, name := range names {
		t := staged.tables[name]
		for i := range t.rows {
			if err := staged.checkRow(name, t, t.rows, i); err != nil {
				return fmt.Errorf("%w: table %q row %d: %w", types.ErrFormat, name, i, err)
			}
			t.advanceSeq(t.rows[i])
		}
	}

	s.tables = staged.tables
	s.log.Debug("store loaded", zap.Int("tables", len(names)))
	return nil
}

// Serialize encodes the whole store as one JSON document of the form
// {"tables": {...}, "schemas": {...}, "sequences": {...}}.
func (s *Store) Serialize() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Restore replaces the store's contents with a document produced by
// Serialize. A document lacking tables or schemas, or one that does not
// decode, yields an error wrapping ErrFormat.
func (s *Store) Restore(blob []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(blob, &top); err != nil {
		return fmt.Errorf("%w: restore: %w", types.ErrFormat, err)
	}
	for _, field := range []string{"tables", "schemas"} {
		if _, ok := top[field]; !ok {
			return fmt.Errorf("%w: restore: missing %q", types.ErrFormat, field)
		}
	}
	var snap types.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("%w: restore: %w", types.ErrFormat, err)
	}
	return s.Load(snap)
}

// SequenceOf returns the last auto-increment value a table handed out.
func (s *Store) SequenceOf(name string) (int64, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	return t.seq, nil
}
