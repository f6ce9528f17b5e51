// Package sqlite persists store snapshots in a SQLite database file. Each
// table becomes one pantry_tables row carrying its schema descriptor and
// sequence, and each record one pantry_rows row holding its JSON encoding.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// DBFile is the database file name inside the data directory.
const DBFile = "pantry.db"

// Backend stores snapshots in pantry.db.
type Backend struct {
	mu sync.Mutex
	db *sql.DB
}

var _ types.Persister = (*Backend)(nil)

// Open opens or creates pantry.db in dir and ensures the schema exists.
func Open(dir string) (*Backend, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, err
	}
	// One connection keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Backend{db: db}, nil
}

// Load reads every table with its rows in position order. It returns
// ErrNoSnapshot when the database holds no tables.
func (b *Backend) Load() (types.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return types.Snapshot{}, os.ErrClosed
	}

	snap := types.Snapshot{
		Tables:    make(map[string][]types.Record),
		Schemas:   make(map[string]map[string]any),
		Sequences: make(map[string]int64),
	}

	rows, err := b.db.Query(`SELECT name, schema, sequence FROM pantry_tables`)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("querying tables: %w", err)
	}
	for rows.Next() {
		var name, schemaText string
		var seq int64
		if err := rows.Scan(&name, &schemaText, &seq); err != nil {
			rows.Close()
			return types.Snapshot{}, fmt.Errorf("scanning table: %w", err)
		}
		var desc map[string]any
		if err := json.Unmarshal([]byte(schemaText), &desc); err != nil {
			rows.Close()
			return types.Snapshot{}, fmt.Errorf("%w: schema of %q: %w", types.ErrFormat, name, err)
		}
		snap.Schemas[name] = desc
		snap.Tables[name] = []types.Record{}
		if seq > 0 {
			snap.Sequences[name] = seq
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return types.Snapshot{}, fmt.Errorf("iterating tables: %w", err)
	}
	rows.Close()

	if len(snap.Schemas) == 0 {
		return types.Snapshot{}, types.ErrNoSnapshot
	}

	rows, err = b.db.Query(`SELECT table_name, record FROM pantry_rows ORDER BY table_name, position`)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, recordText string
		if err := rows.Scan(&name, &recordText); err != nil {
			return types.Snapshot{}, fmt.Errorf("scanning row: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(recordText), &rec); err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: row of %q: %w", types.ErrFormat, name, err)
		}
		snap.Tables[name] = append(snap.Tables[name], rec)
	}
	if err := rows.Err(); err != nil {
		return types.Snapshot{}, fmt.Errorf("iterating rows: %w", err)
	}
	return snap, nil
}

// Save replaces the database contents with snap in one transaction.
func (b *Backend) Save(snap types.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return os.ErrClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pantry_rows`); err != nil {
		return fmt.Errorf("clearing rows: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pantry_tables`); err != nil {
		return fmt.Errorf("clearing tables: %w", err)
	}

	insertTable, err := tx.Prepare(`INSERT INTO pantry_tables (name, schema, sequence) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing table insert: %w", err)
	}
	defer insertTable.Close()
	insertRow, err := tx.Prepare(`INSERT INTO pantry_rows (table_name, position, record) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing row insert: %w", err)
	}
	defer insertRow.Close()

	for name, desc := range snap.Schemas {
		schemaText, err := json.Marshal(desc)
		if err != nil {
			return fmt.Errorf("encoding schema of %q: %w", name, err)
		}
		if _, err := insertTable.Exec(name, string(schemaText), snap.Sequences[name]); err != nil {
			return fmt.Errorf("inserting table %q: %w", name, err)
		}
	}
	for name, records := range snap.Tables {
		if _, ok := snap.Schemas[name]; !ok {
			return fmt.Errorf("%w: table %q has no schema", types.ErrFormat, name)
		}
		for i, rec := range records {
			recordText, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding row %d of %q: %w", i, name, err)
			}
			if _, err := insertRow.Exec(name, i, string(recordText)); err != nil {
				return fmt.Errorf("inserting row %d of %q: %w", i, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

// Close closes the database. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
