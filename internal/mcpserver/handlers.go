package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Handlers serves tool calls against a Source. Calls are serialized because
// the store is not safe for concurrent use.
type Handlers struct {
	mu  sync.Mutex
	src Source
	log *zap.Logger
}

// NewHandlers returns handlers reading from src.
func NewHandlers(src Source, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{src: src, log: log}
}

// ListTables handles list_tables.
func (h *Handlers) ListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	names := h.src.Tables()
	h.mu.Unlock()
	return jsonResult(names)
}

// DescribeTable handles describe_table.
func (h *Handlers) DescribeTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	desc, err := h.src.Schema(table)
	if err != nil {
		return h.failure("describe_table", err), nil
	}
	rows, err := h.src.Select(table, nil)
	if err != nil {
		return h.failure("describe_table", err), nil
	}
	return jsonResult(map[string]any{
		"table":  table,
		"schema": desc,
		"rows":   len(rows),
	})
}

// SelectRows handles select_rows.
func (h *Handlers) SelectRows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
	}
	args := arguments(request)
	pred, err := filterArg(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid filter: %v", err)), nil
	}

	h.mu.Lock()
	rows, err := h.src.Select(table, pred)
	h.mu.Unlock()
	if err != nil {
		return h.failure("select_rows", err), nil
	}
	if limit, ok := args["limit"].(float64); ok && limit >= 0 && int(limit) < len(rows) {
		rows = rows[:int(limit)]
	}
	return jsonResult(rows)
}

// FindRow handles find_row.
func (h *Handlers) FindRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
	}
	pred, err := filterArg(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid filter: %v", err)), nil
	}

	h.mu.Lock()
	row, err := h.src.Find(table, pred)
	h.mu.Unlock()
	if err != nil {
		return h.failure("find_row", err), nil
	}
	return jsonResult(row)
}

// LinkRow handles link_row.
func (h *Handlers) LinkRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
	}
	recordText, err := request.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing record parameter: %v", err)), nil
	}
	fk, err := request.RequireString("foreign_key")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Missing foreign_key parameter: %v", err)), nil
	}
	var record types.Record
	if err := json.Unmarshal([]byte(recordText), &record); err != nil || record == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid record: must be a JSON object: %v", err)), nil
	}

	h.mu.Lock()
	row, err := h.src.Link(table, record, fk)
	h.mu.Unlock()
	if err != nil {
		return h.failure("link_row", err), nil
	}
	return jsonResult(row)
}

func (h *Handlers) failure(tool string, err error) *mcp.CallToolResult {
	h.log.Debug("tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func arguments(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return nil
}

// filterArg builds a predicate from the optional filter argument, given
// either as a JSON string or as an object.
func filterArg(args map[string]any) (types.Predicate, error) {
	raw, ok := args["filter"]
	if !ok || raw == nil {
		return nil, nil
	}
	var filter map[string]any
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(v), &filter); err != nil {
			return nil, err
		}
		if filter == nil {
			return nil, fmt.Errorf("filter must be a JSON object")
		}
	case map[string]any:
		filter = v
	default:
		return nil, fmt.Errorf("filter must be a JSON object, got %T", raw)
	}
	return store.Match(filter)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
