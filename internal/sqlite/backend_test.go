package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func sampleSnapshot() types.Snapshot {
	return types.Snapshot{
		Tables: map[string][]types.Record{
			"Course": {
				{"CourseID": 1.0, "Name": "Math"},
				{"CourseID": 2.0, "Name": "Art", "Meta": map[string]any{"room": nil}},
			},
			"Empty": {},
		},
		Schemas: map[string]map[string]any{
			"Course": {"primaryKey": []any{"CourseID"}, "autoIncrement": []any{"CourseID"}},
			"Empty":  {},
		},
		Sequences: map[string]int64{"Course": 2},
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	require.NoError(t, err)
	defer b.Close()

	_, err = os.Stat(filepath.Join(dir, DBFile))
	assert.NoError(t, err)

	_, err = b.Load()
	assert.ErrorIs(t, err, types.ErrNoSnapshot)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	require.NoError(t, err)

	want := sampleSnapshot()
	require.NoError(t, b.Save(want))
	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Contents survive reopening.
	require.NoError(t, b.Close())
	b, err = Open(dir)
	require.NoError(t, err)
	defer b.Close()
	got, err = b.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_Replaces(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(sampleSnapshot()))
	next := types.Snapshot{
		Tables:    map[string][]types.Record{"Note": {{"Text": "hi"}}},
		Schemas:   map[string]map[string]any{"Note": {}},
		Sequences: map[string]int64{},
	}
	require.NoError(t, b.Save(next))

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestSave_RowsWithoutSchemaRollBack(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(sampleSnapshot()))
	err = b.Save(types.Snapshot{
		Tables:  map[string][]types.Record{"Orphan": {{}}},
		Schemas: map[string]map[string]any{},
	})
	assert.ErrorIs(t, err, types.ErrFormat)

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got, "failed save leaves previous contents")
}

func TestClose(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Save(sampleSnapshot()), os.ErrClosed)
	_, err = b.Load()
	assert.ErrorIs(t, err, os.ErrClosed)
}
