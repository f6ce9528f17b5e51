package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/catalog"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

var errCatalogFlags = errors.New("exactly one selector flag is required")

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the course catalog tables",
	}
	cmd.AddCommand(newCatalogCoursesCmd(a))
	cmd.AddCommand(newCatalogTeachersCmd(a))
	cmd.AddCommand(newCatalogScheduleCmd(a))
	return cmd
}

func newCatalogCoursesCmd(a *app) *cobra.Command {
	var teacherID, categoryID int
	cmd := &cobra.Command{
		Use:     "courses",
		Short:   "List the courses of a teacher or a category",
		Example: "  pantry catalog courses --teacher 1\n  pantry catalog courses --category 2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byTeacher := cmd.Flags().Changed("teacher")
			if byTeacher == cmd.Flags().Changed("category") {
				return fmt.Errorf("%w: --teacher or --category", errCatalogFlags)
			}
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()
			c := catalog.New(ss.store)

			var rows []types.Record
			if byTeacher {
				teacher, err := findByID(ss.store, types.TeacherTable, "TeacherID", teacherID)
				if err != nil {
					return err
				}
				rows, err = c.CoursesOfTeacher(teacher)
				if err != nil {
					return err
				}
			} else {
				category, err := findByID(ss.store, types.CourseCategoryTable, "CourseCategoryID", categoryID)
				if err != nil {
					return err
				}
				rows, err = c.CoursesOfCategory(category)
				if err != nil {
					return err
				}
			}
			return writeJSON(a.stdout, rows)
		},
	}
	cmd.Flags().IntVar(&teacherID, "teacher", 0, "TeacherID")
	cmd.Flags().IntVar(&categoryID, "category", 0, "CourseCategoryID")
	return cmd
}

func newCatalogTeachersCmd(a *app) *cobra.Command {
	var categoryID, courseID int
	cmd := &cobra.Command{
		Use:     "teachers",
		Short:   "List the teachers of a category or a course",
		Example: "  pantry catalog teachers --category 1\n  pantry catalog teachers --course 2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCategory := cmd.Flags().Changed("category")
			if byCategory == cmd.Flags().Changed("course") {
				return fmt.Errorf("%w: --category or --course", errCatalogFlags)
			}
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()
			c := catalog.New(ss.store)

			var rows []types.Record
			if byCategory {
				category, err := findByID(ss.store, types.CourseCategoryTable, "CourseCategoryID", categoryID)
				if err != nil {
					return err
				}
				rows, err = c.TeachersOfCategory(category)
				if err != nil {
					return err
				}
			} else {
				course, err := findByID(ss.store, types.CourseTable, "CourseID", courseID)
				if err != nil {
					return err
				}
				rows, err = c.TeachersOfCourse(course)
				if err != nil {
					return err
				}
			}
			return writeJSON(a.stdout, rows)
		},
	}
	cmd.Flags().IntVar(&categoryID, "category", 0, "CourseCategoryID")
	cmd.Flags().IntVar(&courseID, "course", 0, "CourseID")
	return cmd
}

// scheduleEntry is the printed form of one catalog.Session.
type scheduleEntry struct {
	Day      any `json:"day"`
	Start    any `json:"start"`
	End      any `json:"end"`
	Course   any `json:"course"`
	Location any `json:"location"`
	Item     any `json:"item"`
}

func newCatalogScheduleCmd(a *app) *cobra.Command {
	var courseID int
	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "List when and where a course meets",
		Example: "  pantry catalog schedule --course 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := a.openSession()
			if err != nil {
				return err
			}
			defer ss.close()

			course, err := findByID(ss.store, types.CourseTable, "CourseID", courseID)
			if err != nil {
				return err
			}
			sessions, err := catalog.New(ss.store).ScheduleOf(course)
			if err != nil {
				return err
			}

			entries := make([]scheduleEntry, len(sessions))
			for i, s := range sessions {
				entries[i] = scheduleEntry{
					Day:      s.Item["Day"],
					Start:    s.Item["Start"],
					End:      s.Item["End"],
					Course:   s.Course["Name"],
					Location: s.Location["Name"],
					Item:     s.Item,
				}
			}
			return writeJSON(a.stdout, entries)
		},
	}
	cmd.Flags().IntVar(&courseID, "course", 0, "CourseID")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func findByID(s *store.Store, table, field string, id int) (types.Record, error) {
	pred, err := store.Match(map[string]any{field: id})
	if err != nil {
		return nil, err
	}
	return s.Find(table, pred)
}
