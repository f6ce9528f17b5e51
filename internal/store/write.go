package store

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Insert builds a row from, in increasing precedence, the table's next
// auto-increment value, fresh UUIDs for autoUUID fields, the schema default,
// and data. The row is appended when it passes every check and a copy is
// returned. On failure Insert returns a nil record, an error wrapping
// ErrValidation (or ErrInvalidData for values with no JSON form), and leaves
// the table untouched.
func (s *Store) Insert(name string, data map[string]any) (types.Record, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	input, err := types.NormalizeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("insert into %q: %w", name, err)
	}

	next := t.seq + 1
	row := make(types.Record, len(input)+len(t.schema.Default))
	for _, f := range t.schema.AutoIncrement {
		row[f] = float64(next)
	}
	for _, f := range t.schema.AutoUUID {
		if _, ok := input[f]; !ok {
			row[f] = s.newUUID()
		}
	}
	for k, v := range t.schema.Default {
		row[k] = types.CloneValue(v)
	}
	for k, v := range input {
		row[k] = v
	}

	// Appending may write past len(t.rows) but never changes t.rows itself.
	candidate := append(t.rows, row)
	if err := s.checkRow(name, t, candidate, len(candidate)-1); err != nil {
		s.log.Debug("insert rejected", zap.String("table", name), zap.Error(err))
		return nil, err
	}

	t.rows = candidate
	t.seq = next
	t.advanceSeq(row)
	return row.Clone(), nil
}

// Update overwrites the fields of patch on every row matching pred. All
// patched rows are checked against the table as it would look afterwards; if
// any fails, nothing changes and Update returns 0 with an error wrapping
// ErrValidation. An update that would leave another row's foreign key
// dangling fails with ErrReferenced.
func (s *Store) Update(name string, pred types.Predicate, patch map[string]any) (int, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	fields, err := types.NormalizeRecord(patch)
	if err != nil {
		return 0, fmt.Errorf("update %q: %w", name, err)
	}

	next := make([]types.Record, len(t.rows))
	var matched []int
	for i, row := range t.rows {
		if !matches(pred, row) {
			next[i] = row
			continue
		}
		updated := row.Clone()
		for k, v := range fields {
			updated[k] = types.CloneValue(v)
		}
		next[i] = updated
		matched = append(matched, i)
	}
	if len(matched) == 0 {
		return 0, nil
	}

	for _, i := range matched {
		if err := s.checkRow(name, t, next, i); err != nil {
			s.log.Debug("update rejected", zap.String("table", name), zap.Error(err))
			return 0, err
		}
	}
	if err := s.checkReferrers(name, next); err != nil {
		s.log.Debug("update rejected", zap.String("table", name), zap.Error(err))
		return 0, err
	}

	t.rows = next
	for _, i := range matched {
		t.advanceSeq(next[i])
	}
	return len(matched), nil
}

// Delete removes every row matching pred and returns how many were removed.
// It fails with ErrReferenced, removing nothing, when a row of any table
// (including surviving rows of this one) references a row marked for removal.
func (s *Store) Delete(name string, pred types.Predicate) (int, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}

	var remove, keep []types.Record
	for _, row := range t.rows {
		if matches(pred, row) {
			remove = append(remove, row)
		} else {
			keep = append(keep, row)
		}
	}
	if len(remove) == 0 {
		return 0, nil
	}

	for _, other := range s.sortedNames() {
		ot := s.tables[other]
		rows := ot.rows
		if other == name {
			rows = keep
		}
		for _, fk := range ot.schema.ForeignKeys {
			if fk.ForeignTable != name {
				continue
			}
			for _, row := range rows {
				if _, ok := resolve(row, fk, remove); ok {
					err := fmt.Errorf("%w: cannot delete from %q: row is referenced by table %q", types.ErrReferenced, name, other)
					s.log.Debug("delete rejected", zap.String("table", name), zap.Error(err))
					return 0, err
				}
			}
		}
	}

	t.rows = keep
	return len(remove), nil
}

// advanceSeq moves the sequence past any integer the row holds in an
// auto-increment field, so caller-supplied keys are never handed out again.
func (t *table) advanceSeq(row types.Record) {
	for _, f := range t.schema.AutoIncrement {
		v, ok := row[f].(float64)
		if !ok || v != math.Trunc(v) || v > math.MaxInt64 {
			continue
		}
		if n := int64(v); n > t.seq {
			t.seq = n
		}
	}
}

// matches evaluates pred against a private copy of row.
func matches(pred types.Predicate, row types.Record) bool {
	return pred == nil || pred(row.Clone())
}
