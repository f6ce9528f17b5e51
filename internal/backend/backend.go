// Package backend opens the snapshot persister named by a Config.
package backend

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/bsonfile"
	"github.com/mesh-intelligence/pantry/internal/jsonfile"
	"github.com/mesh-intelligence/pantry/internal/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Open validates cfg and returns the persister for cfg.Backend rooted at
// cfg.DataDir.
func Open(cfg types.Config) (types.Persister, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendJSON:
		return jsonfile.Open(cfg.DataDir)
	case types.BackendSQLite:
		return sqlite.Open(cfg.DataDir)
	case types.BackendBSON:
		return bsonfile.Open(cfg.DataDir)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
