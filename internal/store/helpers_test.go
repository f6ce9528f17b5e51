package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func courseSchema() map[string]any {
	return map[string]any{
		"primaryKey":    []any{"CourseID"},
		"autoIncrement": []any{"CourseID"},
		"properties": map[string]any{
			"CourseID": map[string]any{"type": "integer"},
			"Name":     map[string]any{"type": "string"},
		},
		"required": []any{"Name"},
	}
}

func teacherSchema() map[string]any {
	return map[string]any{
		"primaryKey":    []any{"TeacherID"},
		"autoIncrement": []any{"TeacherID"},
		"properties": map[string]any{
			"TeacherID": map[string]any{"type": "integer"},
			"Name":      map[string]any{"type": "string"},
			"Email":     map[string]any{"type": "email"},
		},
		"required": []any{"Name"},
	}
}

func courseTeacherSchema() map[string]any {
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

// newCatalog returns a store with Course, Teacher, and CourseTeacher tables
// holding courses Math (1) and Art (2) and teacher Ada (1).
func newCatalog(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))
	require.NoError(t, s.CreateTable("Teacher", teacherSchema()))
	require.NoError(t, s.CreateTable("CourseTeacher", courseTeacherSchema()))
	mustInsert(t, s, "Course", map[string]any{"Name": "Math"})
	mustInsert(t, s, "Course", map[string]any{"Name": "Art"})
	mustInsert(t, s, "Teacher", map[string]any{"Name": "Ada"})
	return s
}

func mustInsert(t *testing.T, s *Store, table string, data map[string]any) types.Record {
	t.Helper()
	rec, err := s.Insert(table, data)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func field(name string, want any) types.Predicate {
	p, err := Match(map[string]any{name: want})
	if err != nil {
		panic(err)
	}
	return p
}
