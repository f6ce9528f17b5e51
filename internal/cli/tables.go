package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/schemafile"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables with their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			names := ss.store.Tables()
			counts := make(map[string]int, len(names))
			for _, name := range names {
				n, err := ss.store.Count(name)
				if err != nil {
					return err
				}
				counts[name] = n
			}
			if a.jsonMode {
				return writeJSON(a.stdout, counts)
			}
			for _, name := range names {
				fmt.Fprintf(a.stdout, "%-24s %d\n", name, counts[name])
			}
			return nil
		},
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Print a table's schema descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			desc, err := ss.store.Schema(args[0])
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, desc)
		},
	}
}

func newCreateTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-table <name> <schema-file>",
		Short: "Create a table from a JSON, YAML, or CUE schema file",
		Example: `  pantry create-table Course course.yaml
  pantry create-table Course course.cue`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schemafile.Load(args[1])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			if err := ss.store.CreateTable(args[0], desc); err != nil {
				return err
			}
			if err := ss.commit(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Created table %s\n", args[0])
			return nil
		},
	}
}

func newDropTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-table <name>",
		Short: "Remove a table that no other table references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			if err := ss.store.DropTable(args[0]); err != nil {
				return err
			}
			if err := ss.commit(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Dropped table %s\n", args[0])
			return nil
		},
	}
}
