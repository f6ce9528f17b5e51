package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/mcpserver"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the store read-only to MCP clients over stdio",
		Long: "Start a Model Context Protocol server on stdin and stdout exposing the\n" +
			"list_tables, describe_table, select_rows, find_row, and link_row tools.\n" +
			"No tool modifies the store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			srv := mcpserver.New("pantry", pantry.Version, ss.store, a.log)
			a.log.Info("serving MCP over stdio", zap.String("backend", ss.cfg.Backend), zap.Int("tables", len(ss.store.Tables())))
			if err := mcpserver.Serve(srv); err != nil {
				return sysErr(fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}
}
