// Package mcpserver exposes a store to MCP clients as read-only tools. No
// tool mutates the store.
package mcpserver

import (
	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Source is the read surface the tools need: the row reader plus the table
// catalog.
type Source interface {
	types.Reader
	Tables() []string
	Schema(name string) (map[string]any, error)
}

// New builds an MCP server named name with every tool registered against src.
func New(name, version string, src Source, log *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	RegisterTools(s, NewHandlers(src, log))
	return s
}

// Serve runs s over stdin and stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// RegisterTools adds the read-only tools to s.
func RegisterTools(s *server.MCPServer, h *Handlers) {
	listTool := goMCP.NewTool("list_tables",
		goMCP.WithDescription("List the names of every table in the store"),
	)

	describeTool := goMCP.NewTool("describe_table",
		goMCP.WithDescription("Return the schema descriptor and row count of a table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to describe"),
		),
	)

	selectTool := goMCP.NewTool("select_rows",
		goMCP.WithDescription("Return the rows of a table whose fields equal every entry of an optional filter"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to read"),
		),
		goMCP.WithString("filter",
			goMCP.Description(`JSON object of field values rows must equal, e.g. {"CourseID": 1}`),
		),
		goMCP.WithNumber("limit",
			goMCP.Description("Maximum number of rows to return (default: all)"),
		),
	)

	findTool := goMCP.NewTool("find_row",
		goMCP.WithDescription("Return the first row of a table matching a filter"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to read"),
		),
		goMCP.WithString("filter",
			goMCP.Description("JSON object of field values the row must equal"),
		),
	)

	linkTool := goMCP.NewTool("link_row",
		goMCP.WithDescription("Follow a named foreign key from a record to the row it references"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Table declaring the foreign key"),
		),
		goMCP.WithString("record",
			goMCP.Required(),
			goMCP.Description("JSON object holding the foreign key's native fields"),
		),
		goMCP.WithString("foreign_key",
			goMCP.Required(),
			goMCP.Description("Name of the foreign key to follow"),
		),
	)

	s.AddTool(listTool, h.ListTables)
	s.AddTool(describeTool, h.DescribeTable)
	s.AddTool(selectTool, h.SelectRows)
	s.AddTool(findTool, h.FindRow)
	s.AddTool(linkTool, h.LinkRow)
}
