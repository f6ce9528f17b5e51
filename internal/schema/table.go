package schema

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// ForeignKey binds NativeKey fields of a table to ForeignKey fields of rows in
// ForeignTable, pairing them by position.
type ForeignKey struct {
	Name         string
	NativeKey    []string
	ForeignKey   []string
	ForeignTable string
}

// TableSchema is a compiled table descriptor: the rule tree every row must
// satisfy plus the row-comparing constraints the store enforces.
type TableSchema struct {
	Root          *Node
	Default       types.Record
	AutoIncrement []string
	AutoUUID      []string
	PrimaryKey    []string
	ForeignKeys   []ForeignKey

	raw map[string]any
}

// CompileTable compiles a table descriptor. Errors wrap types.ErrInvalidSchema.
func CompileTable(desc map[string]any) (*TableSchema, error) {
	norm, err := types.NormalizeRecord(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidSchema, err)
	}
	root, err := compileNode(norm, "#")
	if err != nil {
		return nil, err
	}
	ts := &TableSchema{Root: root, raw: norm}

	if v, ok := norm["default"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, invalid("#/default", "must be an object")
		}
		ts.Default = types.Record(m)
	}
	if ts.AutoIncrement, err = fieldList(norm, "autoIncrement"); err != nil {
		return nil, err
	}
	if ts.AutoUUID, err = fieldList(norm, "autoUUID"); err != nil {
		return nil, err
	}
	if ts.PrimaryKey, err = fieldList(norm, "primaryKey"); err != nil {
		return nil, err
	}
	if ts.ForeignKeys, err = foreignKeys(norm); err != nil {
		return nil, err
	}
	return ts, nil
}

// Raw returns a deep copy of the descriptor the schema was compiled from.
func (s *TableSchema) Raw() map[string]any {
	return map[string]any(types.Record(s.raw).Clone())
}

// ForeignKeyByName returns the foreign key declared under name.
func (s *TableSchema) ForeignKeyByName(name string) (ForeignKey, bool) {
	for _, fk := range s.ForeignKeys {
		if fk.Name == name {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// References reports whether any foreign key of s targets table.
func (s *TableSchema) References(table string) bool {
	for _, fk := range s.ForeignKeys {
		if fk.ForeignTable == table {
			return true
		}
	}
	return false
}

// Validate reports whether rec satisfies the table's rule tree.
func (s *TableSchema) Validate(rec types.Record) bool {
	return s.Root.Validate(map[string]any(rec))
}

func fieldList(desc map[string]any, kw string) ([]string, error) {
	v, ok := desc[kw]
	if !ok {
		return nil, nil
	}
	fields, ok := stringList(v)
	if !ok {
		return nil, invalid("#/"+kw, "must be an array of strings")
	}
	return fields, nil
}

func foreignKeys(desc map[string]any) ([]ForeignKey, error) {
	v, ok := desc["foreignKeys"]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, invalid("#/foreignKeys", "must be an array")
	}
	fks := make([]ForeignKey, 0, len(list))
	seen := make(map[string]bool)
	for i, elem := range list {
		path := fmt.Sprintf("#/foreignKeys/%d", i)
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, invalid(path, "must be an object")
		}
		var fk ForeignKey
		if name, ok := m["name"]; ok {
			if fk.Name, ok = name.(string); !ok {
				return nil, invalid(path+"/name", "must be a string")
			}
		}
		if fk.Name != "" {
			if seen[fk.Name] {
				return nil, invalid(path+"/name", "duplicate foreign key %q", fk.Name)
			}
			seen[fk.Name] = true
		}
		if fk.NativeKey, ok = stringList(m["nativeKey"]); !ok || len(fk.NativeKey) == 0 {
			return nil, invalid(path+"/nativeKey", "must be a non-empty array of strings")
		}
		if fk.ForeignKey, ok = stringList(m["foreignKey"]); !ok || len(fk.ForeignKey) != len(fk.NativeKey) {
			return nil, invalid(path+"/foreignKey", "must pair with nativeKey")
		}
		if fk.ForeignTable, ok = m["foreignTable"].(string); !ok || fk.ForeignTable == "" {
			return nil, invalid(path+"/foreignTable", "must be a table name")
		}
		fks = append(fks, fk)
	}
	return fks, nil
}
