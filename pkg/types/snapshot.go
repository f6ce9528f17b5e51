package types

// Snapshot is the whole state of a store in structured form: every table's
// rows, every table's raw schema descriptor, and the auto-increment sequence
// reached by each table. Its JSON encoding is the store's serialized blob.
type Snapshot struct {
	Tables    map[string][]Record       `json:"tables"`
	Schemas   map[string]map[string]any `json:"schemas"`
	Sequences map[string]int64          `json:"sequences,omitempty"`
}

// Persister saves and loads snapshots. Backends translate a Snapshot to their
// own storage layout; the store never performs I/O itself.
type Persister interface {
	// Load returns the last saved snapshot.
	// Returns ErrNoSnapshot if nothing has been saved yet.
	Load() (Snapshot, error)

	// Save replaces the stored snapshot.
	Save(snap Snapshot) error

	// Close releases backend resources. Idempotent.
	Close() error
}
