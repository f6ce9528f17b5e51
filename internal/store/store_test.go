package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func TestCreateTable(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))

	err := s.CreateTable("Course", courseSchema())
	assert.ErrorIs(t, err, types.ErrTableExists)

	err = s.CreateTable("Bad", map[string]any{"type": "nope"})
	assert.ErrorIs(t, err, types.ErrInvalidSchema)

	err = s.CreateTable("", courseSchema())
	assert.ErrorIs(t, err, types.ErrInvalidSchema)

	err = s.CreateTable("CourseTeacher", courseTeacherSchema())
	assert.ErrorIs(t, err, types.ErrTableNotFound, "Teacher does not exist yet")

	assert.Equal(t, []string{"Course"}, s.Tables())
}

func TestCreateTable_SelfReference(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Category", map[string]any{
		"primaryKey":    []any{"ID"},
		"autoIncrement": []any{"ID"},
		"foreignKeys": []any{
			map[string]any{"name": "parent", "nativeKey": []any{"ParentID"}, "foreignKey": []any{"ID"}, "foreignTable": "Category"},
		},
	}))

	_, err := s.Insert("Category", map[string]any{})
	assert.ErrorIs(t, err, types.ErrValidation, "an absent ParentID never resolves")

	root := mustInsert(t, s, "Category", map[string]any{"ParentID": 1})
	assert.Equal(t, 1.0, root["ID"], "the root resolves to itself")
	child := mustInsert(t, s, "Category", map[string]any{"ParentID": root["ID"]})
	assert.Equal(t, 2.0, child["ID"])

	_, err = s.Insert("Category", map[string]any{"ParentID": 99})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = s.Delete("Category", field("ID", 1))
	assert.ErrorIs(t, err, types.ErrReferenced, "surviving child references the root")

	n, err := s.Delete("Category", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "deleting parent and child together is allowed")

	require.NoError(t, s.DropTable("Category"), "a self reference does not block dropping")
}

func TestOperationsRequireTable(t *testing.T) {
	s := New()
	_, err := s.Insert("Missing", map[string]any{})
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Update("Missing", nil, map[string]any{})
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Delete("Missing", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Select("Missing", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Find("Missing", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Link("Missing", types.Record{}, "x")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	assert.ErrorIs(t, s.DropTable("Missing"), types.ErrTableNotFound)
	_, err = s.Schema("Missing")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	_, err = s.Count("Missing")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

// Scenario: auto-increment assigns 1 to the first course.
func TestInsert_AutoIncrement(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))

	rec, err := s.Insert("Course", map[string]any{"Name": "Math"})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"CourseID": 1.0, "Name": "Math"}, rec)
}

// Scenario: the second course gets 2; a duplicate key is rejected.
func TestInsert_PrimaryKeyCollision(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))
	mustInsert(t, s, "Course", map[string]any{"Name": "Math"})

	rec, err := s.Insert("Course", map[string]any{"Name": "Art"})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"CourseID": 2.0, "Name": "Art"}, rec)

	rec, err = s.Insert("Course", map[string]any{"CourseID": 1, "Name": "Dup"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, types.ErrValidation)

	rows, err := s.Select("Course", nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Record{
		{"CourseID": 1.0, "Name": "Math"},
		{"CourseID": 2.0, "Name": "Art"},
	}, rows)
}

func TestInsert_DefaultsLayering(t *testing.T) {
	s := New(WithUUIDGenerator(func() string { return "uuid-1" }))
	require.NoError(t, s.CreateTable("News", map[string]any{
		"autoIncrement": []any{"NewsID"},
		"autoUUID":      []any{"Slug"},
		"default":       map[string]any{"Published": false, "Tags": []any{"general"}, "NewsID": 100},
	}))

	rec := mustInsert(t, s, "News", map[string]any{"Title": "Open day"})
	assert.Equal(t, types.Record{
		"NewsID":    100.0,
		"Slug":      "uuid-1",
		"Published": false,
		"Tags":      []any{"general"},
		"Title":     "Open day",
	}, rec, "defaults override auto-increment values")

	rec = mustInsert(t, s, "News", map[string]any{"NewsID": 7, "Published": true, "Slug": "given"})
	assert.Equal(t, 7.0, rec["NewsID"], "caller fields win")
	assert.Equal(t, true, rec["Published"])
	assert.Equal(t, "given", rec["Slug"])

	// Mutating a returned default must not leak into the schema default.
	rec["Tags"].([]any)[0] = "changed"
	again := mustInsert(t, s, "News", map[string]any{"NewsID": 8})
	assert.Equal(t, []any{"general"}, again["Tags"])
}

func TestInsert_GeneratesUUIDv7(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Doc", map[string]any{"autoUUID": []any{"ID"}}))
	rec := mustInsert(t, s, "Doc", map[string]any{})
	id, ok := rec["ID"].(string)
	require.True(t, ok)
	assert.Len(t, id, 36)
	assert.Equal(t, byte('7'), id[14], "version nibble")
}

func TestInsert_SchemaFailure(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))

	rec, err := s.Insert("Course", map[string]any{"Name": 42})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = s.Insert("Course", map[string]any{"CourseID": 1})
	assert.ErrorIs(t, err, types.ErrValidation, "Name is required")

	_, err = s.Insert("Course", map[string]any{"Name": "x", "When": make(chan int)})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	n, err := s.Count("Course")
	require.NoError(t, err)
	assert.Zero(t, n)

	// Failed inserts do not consume sequence values.
	rec = mustInsert(t, s, "Course", map[string]any{"Name": "Math"})
	assert.Equal(t, 1.0, rec["CourseID"])
}

func TestInsert_SequenceNeverReused(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Course", courseSchema()))
	mustInsert(t, s, "Course", map[string]any{"Name": "A"})
	mustInsert(t, s, "Course", map[string]any{"Name": "B"})

	n, err := s.Delete("Course", field("CourseID", 2))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rec := mustInsert(t, s, "Course", map[string]any{"Name": "C"})
	assert.Equal(t, 3.0, rec["CourseID"], "freed value 2 is not reused")

	mustInsert(t, s, "Course", map[string]any{"CourseID": 10, "Name": "Explicit"})
	rec = mustInsert(t, s, "Course", map[string]any{"Name": "D"})
	assert.Equal(t, 11.0, rec["CourseID"], "sequence jumps past caller-supplied keys")

	seq, err := s.SequenceOf("Course")
	require.NoError(t, err)
	assert.Equal(t, int64(11), seq)
}

// Scenario: a CourseTeacher row must reference an existing course.
func TestInsert_ForeignKey(t *testing.T) {
	s := newCatalog(t)

	_, err := s.Insert("CourseTeacher", map[string]any{"CourseID": 99, "TeacherID": 1})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = s.Insert("CourseTeacher", map[string]any{"CourseID": 1, "TeacherID": 99})
	assert.ErrorIs(t, err, types.ErrValidation)

	rec := mustInsert(t, s, "CourseTeacher", map[string]any{"CourseID": 1, "TeacherID": 1})
	assert.Equal(t, types.Record{"CourseID": 1.0, "TeacherID": 1.0}, rec)

	_, err = s.Insert("CourseTeacher", map[string]any{"CourseID": 1, "TeacherID": 1})
	assert.ErrorIs(t, err, types.ErrValidation, "composite primary key")
}

func TestInsert_ForeignKeyFieldMissing(t *testing.T) {
	s := newCatalog(t)
	require.NoError(t, s.CreateTable("Event", map[string]any{
		"foreignKeys": []any{
			map[string]any{"name": "course", "nativeKey": []any{"CourseID"}, "foreignKey": []any{"CourseID"}, "foreignTable": "Course"},
		},
	}))

	rec, err := s.Insert("Event", map[string]any{"Title": "Open day"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, types.ErrValidation, "an absent native key never resolves")

	_, err = s.Insert("Event", map[string]any{"CourseID": nil})
	assert.ErrorIs(t, err, types.ErrValidation, "a present null is a value and must resolve")

	n, err := s.Count("Event")
	require.NoError(t, err)
	assert.Zero(t, n)

	mustInsert(t, s, "Event", map[string]any{"Title": "Open day", "CourseID": 1})
}

// Scenario: deleting a referenced course fails until the reference is gone.
func TestDelete_ReferentialIntegrity(t *testing.T) {
	s := newCatalog(t)
	mustInsert(t, s, "CourseTeacher", map[string]any{"CourseID": 1, "TeacherID": 1})

	before, err := s.Select("Course", nil)
	require.NoError(t, err)

	n, err := s.Delete("Course", field("CourseID", 1))
	assert.ErrorIs(t, err, types.ErrReferenced)
	assert.Zero(t, n)

	after, err := s.Select("Course", nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	n, err = s.Delete("CourseTeacher", field("CourseID", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Delete("Course", field("CourseID", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := s.Select("Course", nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Record{{"CourseID": 2.0, "Name": "Art"}}, rows)
}

func TestDelete_NoMatch(t *testing.T) {
	s := newCatalog(t)
	n, err := s.Delete("Course", field("CourseID", 42))
	require.NoError(t, err)
	assert.Zero(t, n)
}

// Scenario: an update that breaks the schema changes nothing.
func TestUpdate_Atomicity(t *testing.T) {
	s := newCatalog(t)

	n, err := s.Update("Course", field("CourseID", 2), map[string]any{"Name": 42})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, n)

	rec, err := s.Find("Course", field("CourseID", 2))
	require.NoError(t, err)
	assert.Equal(t, "Art", rec["Name"])
}

func TestUpdate_BatchIsAllOrNothing(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateTable("Item", map[string]any{
		"properties": map[string]any{"Qty": map[string]any{"maximum": 10}},
	}))
	mustInsert(t, s, "Item", map[string]any{"Name": "a", "Qty": 1})
	mustInsert(t, s, "Item", map[string]any{"Name": "b", "Qty": 9})
	before, err := s.Select("Item", nil)
	require.NoError(t, err)

	// The patch is valid for a but the predicate also matches b.
	_, err = s.Update("Item", nil, map[string]any{"Qty": 11})
	assert.ErrorIs(t, err, types.ErrValidation)

	after, err := s.Select("Item", nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	n, err := s.Update("Item", nil, map[string]any{"Qty": 5, "Checked": true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	rows, err := s.Select("Item", nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Record{
		{"Name": "a", "Qty": 5.0, "Checked": true},
		{"Name": "b", "Qty": 5.0, "Checked": true},
	}, rows)
}

func TestUpdate_PrimaryKey(t *testing.T) {
	s := newCatalog(t)

	n, err := s.Update("Course", field("CourseID", 2), map[string]any{"Name": "Fine Art"})
	require.NoError(t, err, "a row does not collide with its own key")
	assert.Equal(t, 1, n)

	_, err = s.Update("Course", field("CourseID", 2), map[string]any{"CourseID": 1})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = s.Update("Course", nil, map[string]any{"CourseID": 5})
	assert.ErrorIs(t, err, types.ErrValidation, "two patched rows may not share a key")

	n, err = s.Update("Course", field("CourseID", 2), map[string]any{"CourseID": 7})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec := mustInsert(t, s, "Course", map[string]any{"Name": "New"})
	assert.Equal(t, 8.0, rec["CourseID"], "updated keys advance the sequence")
}

func TestUpdate_ForeignKeys(t *testing.T) {
	s := newCatalog(t)
	mustInsert(t, s, "CourseTeacher", map[string]any{"CourseID": 1, "TeacherID": 1})

	_, err := s.Update("CourseTeacher", nil, map[string]any{"CourseID": 99})
	assert.ErrorIs(t, err, types.ErrValidation)

	n, err := s.Update("CourseTeacher", nil, map[string]any{"CourseID": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Update("Course", field("CourseID", 2), map[string]any{"CourseID": 20})
	assert.ErrorIs(t, err, types.ErrReferenced, "CourseTeacher would dangle")

	rec, err := s.Find("Course", field("Name", "Art"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec["CourseID"])
}

func TestDropTable(t *testing.T) {
	s := newCatalog(t)

	err := s.DropTable("Course")
	assert.ErrorIs(t, err, types.ErrReferenced, "schema-level check with no rows referencing")

	require.NoError(t, s.DropTable("CourseTeacher"))
	require.NoError(t, s.DropTable("Course"))
	assert.Equal(t, []string{"Teacher"}, s.Tables())

	_, err = s.Select("Course", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	require.NoError(t, s.CreateTable("Course", courseSchema()), "name is free again")
}

func TestSchema_ReturnsCopy(t *testing.T) {
	s := newCatalog(t)
	desc, err := s.Schema("Course")
	require.NoError(t, err)
	desc["required"] = []any{"Other"}

	again, err := s.Schema("Course")
	require.NoError(t, err)
	assert.Equal(t, []any{"Name"}, again["required"])
}
