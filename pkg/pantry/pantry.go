// Package pantry is the public entry point for embedding a Pantry store with
// durable persistence.
//
// Example:
//
//	p, err := pantry.OpenBackend(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".pantry-db",
//	})
//	defer p.Close()
package pantry

import (
	"github.com/mesh-intelligence/pantry/internal/backend"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Version is the pantry release version.
const Version = "0.1.0"

// OpenBackend returns the snapshot persister selected by cfg.Backend, rooted
// at cfg.DataDir.
func OpenBackend(cfg types.Config) (types.Persister, error) {
	return backend.Open(cfg)
}
