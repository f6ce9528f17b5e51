package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func courseTeacherDesc() map[string]any {
	return map[string]any{
		"primaryKey": []any{"CourseID", "TeacherID"},
		"foreignKeys": []any{
			map[string]any{"name": "course", "nativeKey": []any{"CourseID"}, "foreignKey": []any{"CourseID"}, "foreignTable": "Course"},
			map[string]any{"name": "teacher", "nativeKey": []any{"TeacherID"}, "foreignKey": []any{"TeacherID"}, "foreignTable": "Teacher"},
		},
		"properties": map[string]any{
			"CourseID":  map[string]any{"type": "integer"},
			"TeacherID": map[string]any{"type": "integer"},
		},
		"required": []any{"CourseID", "TeacherID"},
	}
}

func TestCompileTable(t *testing.T) {
	ts, err := CompileTable(map[string]any{
		"default":       map[string]any{"Active": true},
		"autoIncrement": []string{"ID"},
		"autoUUID":      []any{"Slug"},
		"primaryKey":    []any{"ID"},
		"properties":    map[string]any{"ID": map[string]any{"type": "integer"}},
	})
	require.NoError(t, err)

	assert.Equal(t, types.Record{"Active": true}, ts.Default)
	assert.Equal(t, []string{"ID"}, ts.AutoIncrement)
	assert.Equal(t, []string{"Slug"}, ts.AutoUUID)
	assert.Equal(t, []string{"ID"}, ts.PrimaryKey)
	assert.Empty(t, ts.ForeignKeys)

	assert.True(t, ts.Validate(types.Record{"ID": 1.0}))
	assert.False(t, ts.Validate(types.Record{"ID": "1"}))
}

func TestCompileTable_ForeignKeys(t *testing.T) {
	ts, err := CompileTable(courseTeacherDesc())
	require.NoError(t, err)
	require.Len(t, ts.ForeignKeys, 2)

	fk, ok := ts.ForeignKeyByName("teacher")
	require.True(t, ok)
	assert.Equal(t, ForeignKey{
		Name:         "teacher",
		NativeKey:    []string{"TeacherID"},
		ForeignKey:   []string{"TeacherID"},
		ForeignTable: "Teacher",
	}, fk)

	_, ok = ts.ForeignKeyByName("location")
	assert.False(t, ok)
	assert.True(t, ts.References("Course"))
	assert.False(t, ts.References("Location"))
}

func TestCompileTable_Rejects(t *testing.T) {
	fk := func(m map[string]any) map[string]any {
		return map[string]any{"foreignKeys": []any{m}}
	}
	tests := []struct {
		name string
		desc map[string]any
	}{
		{"default not object", map[string]any{"default": []any{}}},
		{"primaryKey not strings", map[string]any{"primaryKey": []any{1}}},
		{"autoIncrement not list", map[string]any{"autoIncrement": "ID"}},
		{"foreignKeys not list", map[string]any{"foreignKeys": map[string]any{}}},
		{"empty nativeKey", fk(map[string]any{"nativeKey": []any{}, "foreignKey": []any{}, "foreignTable": "T"})},
		{"unpaired keys", fk(map[string]any{"nativeKey": []any{"A", "B"}, "foreignKey": []any{"A"}, "foreignTable": "T"})},
		{"missing foreignTable", fk(map[string]any{"nativeKey": []any{"A"}, "foreignKey": []any{"A"}})},
		{"name not string", fk(map[string]any{"name": 1, "nativeKey": []any{"A"}, "foreignKey": []any{"A"}, "foreignTable": "T"})},
		{"duplicate names", map[string]any{"foreignKeys": []any{
			map[string]any{"name": "x", "nativeKey": []any{"A"}, "foreignKey": []any{"A"}, "foreignTable": "T"},
			map[string]any{"name": "x", "nativeKey": []any{"B"}, "foreignKey": []any{"B"}, "foreignTable": "T"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTable(tt.desc)
			if !errors.Is(err, types.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestTableSchema_RawIsCopy(t *testing.T) {
	ts, err := CompileTable(courseTeacherDesc())
	require.NoError(t, err)

	raw := ts.Raw()
	raw["primaryKey"].([]any)[0] = "Other"

	assert.Equal(t, []any{"CourseID", "TeacherID"}, ts.Raw()["primaryKey"])
}
