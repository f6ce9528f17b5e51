package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <json>",
		Short: "Insert a record and print it with defaults applied",
		Long:  "Insert a record given as a JSON object. Use - to read the object from stdin.",
		Example: `  pantry insert Course '{"Name": "Salsa", "CourseCategoryID": 1}'
  echo '{"Name": "Tango"}' | pantry insert Course -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.parseObject(args[1])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			rec, err := ss.store.Insert(args[0], data)
			if err != nil {
				return err
			}
			if err := ss.commit(); err != nil {
				return err
			}
			return writeJSON(a.stdout, rec)
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <json-patch> [key=value...]",
		Short: "Overwrite fields on every matching record",
		Long: "Apply a JSON object of field values to every record matching the filter.\n" +
			"Either every matching record passes validation and is updated, or none is.",
		Example: `  pantry update Course '{"Name": "Salsa II"}' CourseID=1`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := a.parseObject(args[1])
			if err != nil {
				return err
			}
			pred, err := parseFilter(args[2:])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			n, err := ss.store.Update(args[0], pred, patch)
			if err != nil {
				return err
			}
			if n > 0 {
				if err := ss.commit(); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "Updated %d record(s)\n", n)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> [key=value...]",
		Short: "Delete every matching record",
		Long: "Delete the records matching the filter. Nothing is deleted when any of\n" +
			"them is still referenced by a foreign key.",
		Example: `  pantry delete CourseTeacher CourseID=1`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parseFilter(args[1:])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			n, err := ss.store.Delete(args[0], pred)
			if err != nil {
				return err
			}
			if n > 0 {
				if err := ss.commit(); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "Deleted %d record(s)\n", n)
			return nil
		},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "select <table> [key=value...]",
		Short:   "Print every matching record as a JSON array",
		Example: `  pantry select Course CourseCategoryID=1`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parseFilter(args[1:])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			rows, err := ss.store.Select(args[0], pred)
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, rows)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "find <table> [key=value...]",
		Short:   "Print the first matching record",
		Example: `  pantry find Teacher Name="Ana Novak"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parseFilter(args[1:])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			rec, err := ss.store.Find(args[0], pred)
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, rec)
		},
	}
}

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link <table> <foreign-key> [key=value...]",
		Short: "Follow a foreign key from the first matching record",
		Long: "Find the first record of <table> matching the filter and print the row\n" +
			"its named foreign key references.",
		Example: `  pantry link ScheduleItem location ScheduleItemID=1`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := parseFilter(args[2:])
			if err != nil {
				return err
			}

			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			rec, err := ss.store.Find(args[0], pred)
			if err != nil {
				return err
			}
			target, err := ss.store.Link(args[0], rec, args[1])
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, target)
		},
	}
}
