package store

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

var _ types.Reader = (*Store)(nil)

// Select returns copies of every row matching pred, in table order.
func (s *Store) Select(name string, pred types.Predicate) ([]types.Record, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(t.rows))
	for _, row := range t.rows {
		cp := row.Clone()
		if pred == nil || pred(cp) {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

// Find returns a copy of the first row matching pred, or ErrNotFound.
func (s *Store) Find(name string, pred types.Predicate) (types.Record, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		if matches(pred, row) {
			return row.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: in %q", types.ErrNotFound, name)
}

// Link follows the foreign key fk declared by table name from record to the
// row it references and returns a copy of that row. It returns
// ErrForeignKeyNotFound when the table declares no such key and ErrNotFound
// when record carries no reference or the referenced row is absent.
func (s *Store) Link(name string, record types.Record, fk string) (types.Record, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	key, ok := t.schema.ForeignKeyByName(fk)
	if !ok {
		return nil, fmt.Errorf("%w: %q in table %q", types.ErrForeignKeyNotFound, fk, name)
	}
	rec, err := types.NormalizeRecord(record)
	if err != nil {
		return nil, err
	}
	ft, err := s.table(key.ForeignTable)
	if err != nil {
		return nil, err
	}
	if target, ok := resolve(rec, key, ft.rows); ok {
		return target.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %q link %q", types.ErrNotFound, name, fk)
}

// Match returns a predicate selecting rows whose fields deep-equal every
// entry of filter. An empty filter matches every row.
func Match(filter map[string]any) (types.Predicate, error) {
	want, err := types.NormalizeRecord(filter)
	if err != nil {
		return nil, err
	}
	return func(row types.Record) bool {
		for k, v := range want {
			got, ok := row[k]
			if !ok || !schema.Equal(got, v) {
				return false
			}
		}
		return true
	}, nil
}
