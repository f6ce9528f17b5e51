// Package jsonfile persists store snapshots as plain JSON documents in a data
// directory: tables.json holds every table's rows, schemas.json every table's
// schema descriptor, and sequences.json the auto-increment counters.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mesh-intelligence/pantry/internal/atomicfile"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// File names inside the data directory.
const (
	TablesFile    = "tables.json"
	SchemasFile   = "schemas.json"
	SequencesFile = "sequences.json"
)

// Backend reads and writes the three snapshot files.
type Backend struct {
	mu     sync.Mutex
	dir    string
	closed bool
}

var _ types.Persister = (*Backend)(nil)

// Open returns a backend rooted at dir, creating the directory if needed.
func Open(dir string) (*Backend, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Backend{dir: dir}, nil
}

// Load reads the snapshot files. It returns ErrNoSnapshot when neither
// tables.json nor schemas.json exists, and ErrFormat when only one of them
// does or when a file does not decode. A missing sequences.json is allowed;
// the store recovers counters from the rows.
func (b *Backend) Load() (types.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.Snapshot{}, os.ErrClosed
	}

	var snap types.Snapshot
	foundTables, err := readJSON(filepath.Join(b.dir, TablesFile), &snap.Tables)
	if err != nil {
		return types.Snapshot{}, err
	}
	foundSchemas, err := readJSON(filepath.Join(b.dir, SchemasFile), &snap.Schemas)
	if err != nil {
		return types.Snapshot{}, err
	}
	switch {
	case !foundTables && !foundSchemas:
		return types.Snapshot{}, types.ErrNoSnapshot
	case !foundTables:
		return types.Snapshot{}, fmt.Errorf("%w: %s without %s", types.ErrFormat, SchemasFile, TablesFile)
	case !foundSchemas:
		return types.Snapshot{}, fmt.Errorf("%w: %s without %s", types.ErrFormat, TablesFile, SchemasFile)
	}
	if _, err := readJSON(filepath.Join(b.dir, SequencesFile), &snap.Sequences); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// Save writes each file atomically. Schemas are written before tables so a
// crash between the two never leaves rows without the schema they follow.
func (b *Backend) Save(snap types.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return os.ErrClosed
	}

	seqs := snap.Sequences
	if seqs == nil {
		seqs = map[string]int64{}
	}
	files := []struct {
		name string
		v    any
	}{
		{SequencesFile, seqs},
		{SchemasFile, snap.Schemas},
		{TablesFile, snap.Tables},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.name, err)
		}
		if err := atomicfile.WriteFile(filepath.Join(b.dir, f.name), append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Close marks the backend closed. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// readJSON decodes path into v. It reports false with no error when the file
// does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return true, fmt.Errorf("%w: %s: %w", types.ErrFormat, filepath.Base(path), err)
	}
	return true, nil
}
