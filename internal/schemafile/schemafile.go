// Package schemafile reads table schema descriptors from JSON, YAML, or CUE
// files. Every format is reduced to the same normalized map the schema
// compiler accepts.
package schemafile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Format names a descriptor encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: unsupported schema file extension %q", types.ErrInvalidSchema, filepath.Ext(path))
	}
}

// Load reads one schema descriptor from path.
func Load(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Decode(data, format, filepath.Base(path))
}

// Decode parses data as format. name labels CUE diagnostics. The result must
// be an object; errors wrap ErrInvalidSchema.
func Decode(data []byte, format Format, name string) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
		}
	case FormatCUE:
		var err error
		if raw, err = decodeCUE(data, name); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", types.ErrInvalidSchema, format)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s: descriptor must be an object", types.ErrInvalidSchema, name)
	}
	rec, err := types.NormalizeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
	}
	return map[string]any(rec), nil
}

// decodeCUE evaluates a CUE document, which must be concrete, and exports it
// through its JSON form.
func decodeCUE(data []byte, name string) (map[string]any, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
	}
	out, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrInvalidSchema, name, err)
	}
	return raw, nil
}
