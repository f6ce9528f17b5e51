package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/atomicfile"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole store as one JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			blob, err := ss.store.Serialize()
			if err != nil {
				return sysErr(fmt.Errorf("serialize: %w", err))
			}
			if output == "" {
				_, err := fmt.Fprintln(a.stdout, string(blob))
				return err
			}
			if err := atomicfile.WriteFile(output, blob); err != nil {
				return sysErr(err)
			}
			fmt.Fprintf(a.stdout, "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the store with a document written by export",
		Long: "Replace every table with the contents of an exported document. The\n" +
			"document is validated in full first; on any error the store is unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			if err := ss.store.Restore(blob); err != nil {
				return err
			}
			if err := ss.commit(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Imported %d table(s)\n", len(ss.store.Tables()))
			return nil
		},
	}
}
