package jsonfile

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
			"Course": {{"CourseID": 1.0, "Name": "Math", "Tags": []any{"core"}}},
		},
		Schemas: map[string]map[string]any{
			"Course": {"primaryKey": []any{"CourseID"}, "autoIncrement": []any{"CourseID"}},
		},
		Sequences: map[string]int64{"Course": 1},
	}
}

func TestLoad_Empty(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load()
	assert.ErrorIs(t, err, types.ErrNoSnapshot)
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b, err := Open(dir)
	require.NoError(t, err)

	want := sampleSnapshot()
	require.NoError(t, b.Save(want))
	for _, name := range []string{TablesFile, SchemasFile, SequencesFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}

func TestLoad_WithoutSequences(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, b.Save(sampleSnapshot()))
	require.NoError(t, os.Remove(filepath.Join(dir, SequencesFile)))

	got, err := b.Load()
	require.NoError(t, err)
	assert.Nil(t, got.Sequences)
	assert.Len(t, got.Tables["Course"], 1)
}

func TestLoad_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"tables only", map[string]string{TablesFile: `{}`}},
		{"schemas only", map[string]string{SchemasFile: `{}`}},
		{"bad tables", map[string]string{TablesFile: `{"A": 1}`, SchemasFile: `{}`}},
		{"bad schemas", map[string]string{TablesFile: `{}`, SchemasFile: `[`}},
		{"bad sequences", map[string]string{TablesFile: `{}`, SchemasFile: `{}`, SequencesFile: `{"A":"x"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
			}
			b, err := Open(dir)
			require.NoError(t, err)

			_, err = b.Load()
			assert.ErrorIs(t, err, types.ErrFormat)
		})
	}
}

func TestClose(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "idempotent")

	assert.ErrorIs(t, b.Save(sampleSnapshot()), os.ErrClosed)
	_, err = b.Load()
	assert.ErrorIs(t, err, os.ErrClosed)
}
