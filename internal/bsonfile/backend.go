// Package bsonfile persists store snapshots as a single BSON document,
// snapshot.bson, in the data directory.
package bsonfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mesh-intelligence/pantry/internal/atomicfile"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// SnapshotFile is the document file name inside the data directory.
const SnapshotFile = "snapshot.bson"

// Backend reads and writes snapshot.bson.
type Backend struct {
	mu     sync.Mutex
	path   string
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
	return &Backend{path: filepath.Join(dir, SnapshotFile)}, nil
}

// Load decodes snapshot.bson, or returns ErrNoSnapshot when it does not exist.
func (b *Backend) Load() (types.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.Snapshot{}, os.ErrClosed
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.Snapshot{}, types.ErrNoSnapshot
	}
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("reading %s: %w", SnapshotFile, err)
	}
	return decode(data)
}

// Save encodes snap and atomically replaces snapshot.bson.
func (b *Backend) Save(snap types.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return os.ErrClosed
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(b.path, data)
}

// Close marks the backend closed. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func encode(snap types.Snapshot) ([]byte, error) {
	seqs := snap.Sequences
	if seqs == nil {
		seqs = map[string]int64{}
	}
	data, err := bson.Marshal(bson.M{
		"tables":    snap.Tables,
		"schemas":   snap.Schemas,
		"sequences": seqs,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding BSON: %w", err)
	}
	return data, nil
}

func decode(data []byte) (types.Snapshot, error) {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return types.Snapshot{}, fmt.Errorf("%w: decoding BSON: %w", types.ErrFormat, err)
	}

	tables, err := document(doc["tables"], "tables")
	if err != nil {
		return types.Snapshot{}, err
	}
	schemas, err := document(doc["schemas"], "schemas")
	if err != nil {
		return types.Snapshot{}, err
	}

	snap := types.Snapshot{
		Tables:  make(map[string][]types.Record, len(tables)),
		Schemas: make(map[string]map[string]any, len(schemas)),
	}
	for name, v := range tables {
		list, ok := v.([]any)
		if !ok {
			return types.Snapshot{}, fmt.Errorf("%w: rows of %q are not an array", types.ErrFormat, name)
		}
		rows := make([]types.Record, len(list))
		for i, elem := range list {
			m, ok := elem.(map[string]any)
			if !ok {
				return types.Snapshot{}, fmt.Errorf("%w: row %d of %q is not a document", types.ErrFormat, i, name)
			}
			rows[i] = types.Record(m)
		}
		snap.Tables[name] = rows
	}
	for name, v := range schemas {
		m, ok := v.(map[string]any)
		if !ok {
			return types.Snapshot{}, fmt.Errorf("%w: schema of %q is not a document", types.ErrFormat, name)
		}
		snap.Schemas[name] = m
	}

	if raw, ok := doc["sequences"]; ok && raw != nil {
		seqs, err := document(raw, "sequences")
		if err != nil {
			return types.Snapshot{}, err
		}
		snap.Sequences = make(map[string]int64, len(seqs))
		for name, v := range seqs {
			f, ok := v.(float64)
			if !ok {
				return types.Snapshot{}, fmt.Errorf("%w: sequence of %q is not a number", types.ErrFormat, name)
			}
			snap.Sequences[name] = int64(f)
		}
	}
	return snap, nil
}

// document converts a decoded BSON value that must be an embedded document.
func document(v any, field string) (map[string]any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: missing %q", types.ErrFormat, field)
	}
	conv, err := fromBSON(v)
	if err != nil {
		return nil, err
	}
	m, ok := conv.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a document", types.ErrFormat, field)
	}
	return m, nil
}

// fromBSON maps decoded BSON values onto the store's value kinds. Integers
// of either width become float64.
func fromBSON(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string, float64:
		return v, nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bson.A:
		out := make([]any, len(v))
		for i, elem := range v {
			c, err := fromBSON(elem)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			c, err := fromBSON(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = c
		}
		return out, nil
	case bson.M:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			c, err := fromBSON(elem)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case map[string]any:
		return fromBSON(bson.M(v))
	case []any:
		return fromBSON(bson.A(v))
	default:
		return nil, fmt.Errorf("%w: unsupported BSON value %T", types.ErrFormat, v)
	}
}
