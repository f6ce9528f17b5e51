package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// writeJSON prints v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseObject decodes a JSON object argument. "-" reads it from stdin.
func (a *app) parseObject(arg string) (map[string]any, error) {
	text := arg
	if arg == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, sysErr(fmt.Errorf("read stdin: %w", err))
		}
		text = string(data)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", types.ErrInvalidData)
	}
	return obj, nil
}

// parseFilter turns key=value arguments into a predicate matching rows whose
// fields equal every value. Values that parse as JSON are compared as JSON;
// anything else is a string. No arguments match every row.
func parseFilter(args []string) (types.Predicate, error) {
	if len(args) == 0 {
		return nil, nil
	}
	filter := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: filter %q must have the form key=value", types.ErrInvalidData, arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		filter[key] = v
	}
	return store.Match(filter)
}
