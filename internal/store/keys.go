package store

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// checkRow validates rows[i] as a member of table name whose full contents
// would be rows. The row must satisfy the schema, must not share its primary
// key with any other entry of rows, and must resolve every declared foreign
// key. A missing native-key field never resolves. Self-referencing foreign
// keys resolve against rows.
func (s *Store) checkRow(name string, t *table, rows []types.Record, i int) error {
	row := rows[i]
	if !t.schema.Validate(row) {
		return fmt.Errorf("%w: %s: record does not match schema", types.ErrValidation, name)
	}
	if pk := t.schema.PrimaryKey; len(pk) > 0 {
		for j, other := range rows {
			if j != i && sameKey(row, other, pk) {
				return fmt.Errorf("%w: %s: duplicate primary key %v", types.ErrValidation, name, keyValues(row, pk))
			}
		}
	}
	for _, fk := range t.schema.ForeignKeys {
		targets, err := s.targetRows(name, rows, fk)
		if err != nil {
			return err
		}
		if _, ok := resolve(row, fk, targets); !ok {
			return fmt.Errorf("%w: %s: foreign key %q has no match in %q for %v",
				types.ErrValidation, name, fk.Name, fk.ForeignTable, keyValues(row, fk.NativeKey))
		}
	}
	return nil
}

// targetRows returns the rows a foreign key of table name resolves against.
// pending stands in for the table's own rows when the key is self-referencing.
func (s *Store) targetRows(name string, pending []types.Record, fk schema.ForeignKey) ([]types.Record, error) {
	if fk.ForeignTable == name {
		return pending, nil
	}
	ft, err := s.table(fk.ForeignTable)
	if err != nil {
		return nil, err
	}
	return ft.rows, nil
}

// checkReferrers verifies that every row holding a foreign key into table
// name still resolves when the table's contents become next.
func (s *Store) checkReferrers(name string, next []types.Record) error {
	for _, other := range s.sortedNames() {
		ot := s.tables[other]
		rows := ot.rows
		if other == name {
			rows = next
		}
		for _, fk := range ot.schema.ForeignKeys {
			if fk.ForeignTable != name {
				continue
			}
			for _, row := range rows {
				if _, ok := resolve(row, fk, next); !ok {
					return fmt.Errorf("%w: row of %q would lose its %q reference %v",
						types.ErrReferenced, other, fk.Name, keyValues(row, fk.NativeKey))
				}
			}
		}
	}
	return nil
}

// resolve returns the first target row whose ForeignKey fields equal row's
// NativeKey fields position by position. Primary keys keep targets unique
// when ForeignKey is the target's primary key; otherwise the first match in
// table order wins.
func resolve(row types.Record, fk schema.ForeignKey, targets []types.Record) (types.Record, bool) {
	for _, target := range targets {
		if references(row, fk, target) {
			return target, true
		}
	}
	return nil, false
}

func references(row types.Record, fk schema.ForeignKey, target types.Record) bool {
	for i, native := range fk.NativeKey {
		nv, ok := row[native]
		if !ok {
			return false
		}
		tv, ok := target[fk.ForeignKey[i]]
		if !ok || !schema.Equal(nv, tv) {
			return false
		}
	}
	return true
}

// sameKey compares two rows on fields. An absent field equals only another
// absent field.
func sameKey(a, b types.Record, fields []string) bool {
	for _, f := range fields {
		av, aok := a[f]
		bv, bok := b[f]
		if aok != bok || (aok && !schema.Equal(av, bv)) {
			return false
		}
	}
	return true
}

func keyValues(row types.Record, fields []string) []any {
	vals := make([]any, len(fields))
	for i, f := range fields {
		vals[i] = row[f]
	}
	return vals
}
