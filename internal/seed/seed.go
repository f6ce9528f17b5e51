// Package seed ships the course catalog schema set and a small sample data
// set, both embedded in the binary.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

//go:embed schemas.json
var schemasJSON []byte

//go:embed data.json
var dataJSON []byte

// Schemas returns a fresh copy of the seed schema descriptors keyed by table.
func Schemas() (map[string]map[string]any, error) {
	var schemas map[string]map[string]any
	if err := json.Unmarshal(schemasJSON, &schemas); err != nil {
		return nil, fmt.Errorf("decoding seed schemas: %w", err)
	}
	return schemas, nil
}

// Data returns a fresh copy of the sample rows keyed by table.
func Data() (map[string][]map[string]any, error) {
	var data map[string][]map[string]any
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, fmt.Errorf("decoding seed data: %w", err)
	}
	return data, nil
}

// Apply creates the seed tables in s in dependency order. With withData it
// then inserts the sample rows through the normal write path.
func Apply(s *store.Store, withData bool) error {
	schemas, err := Schemas()
	if err != nil {
		return err
	}
	for _, name := range types.SeedTableNames {
		if err := s.CreateTable(name, schemas[name]); err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
	}
	if !withData {
		return nil
	}

	data, err := Data()
	if err != nil {
		return err
	}
	for _, name := range types.SeedTableNames {
		for i, row := range data[name] {
			if _, err := s.Insert(name, row); err != nil {
				return fmt.Errorf("seeding %s row %d: %w", name, i, err)
			}
		}
	}
	return nil
}
