// Package catalog answers the course catalog questions the site asks of the
// store: which courses a teacher leads, which courses and teachers belong to a
// category, and when and where a course meets. Queries go through
// types.Reader only, so they see exactly the validated rows the store holds.
package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Foreign key names declared by the seed schemas.
const (
	fkCourse   = "course"
	fkTeacher  = "teacher"
	fkLocation = "location"
)

// Catalog runs queries against a Reader.
type Catalog struct {
	r types.Reader
}

// New returns a Catalog reading from r.
func New(r types.Reader) *Catalog {
	return &Catalog{r: r}
}

// Session is one scheduled meeting of a course with its course and location
// rows resolved. Location is nil when the item names no location.
type Session struct {
	Item     types.Record
	Course   types.Record
	Location types.Record
}

// CoursesOfTeacher returns the courses linked to teacher through a
// CourseTeacher row, in Course table order.
func (c *Catalog) CoursesOfTeacher(teacher types.Record) ([]types.Record, error) {
	teacherID, ok := teacher["TeacherID"]
	if !ok {
		return nil, fmt.Errorf("%w: teacher has no TeacherID", types.ErrInvalidData)
	}
	links, err := c.r.Select(types.CourseTeacherTable, func(ct types.Record) bool {
		return schema.Equal(ct["TeacherID"], teacherID)
	})
	if err != nil {
		return nil, err
	}
	return c.r.Select(types.CourseTable, func(course types.Record) bool {
		for _, ct := range links {
			if schema.Equal(ct["CourseID"], course["CourseID"]) {
				return true
			}
		}
		return false
	})
}

// CoursesOfCategory returns the courses whose CourseCategoryID matches
// category's.
func (c *Catalog) CoursesOfCategory(category types.Record) ([]types.Record, error) {
	categoryID, ok := category["CourseCategoryID"]
	if !ok {
		return nil, fmt.Errorf("%w: category has no CourseCategoryID", types.ErrInvalidData)
	}
	return c.r.Select(types.CourseTable, func(course types.Record) bool {
		v, ok := course["CourseCategoryID"]
		return ok && schema.Equal(v, categoryID)
	})
}

// TeachersOfCategory returns the teachers linked to at least one course of
// category, in Teacher table order and without duplicates.
func (c *Catalog) TeachersOfCategory(category types.Record) ([]types.Record, error) {
	courses, err := c.CoursesOfCategory(category)
	if err != nil {
		return nil, err
	}
	links, err := c.r.Select(types.CourseTeacherTable, func(ct types.Record) bool {
		for _, course := range courses {
			if schema.Equal(ct["CourseID"], course["CourseID"]) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return c.r.Select(types.TeacherTable, func(teacher types.Record) bool {
		for _, ct := range links {
			if schema.Equal(ct["TeacherID"], teacher["TeacherID"]) {
				return true
			}
		}
		return false
	})
}

// ScheduleOf returns the schedule items of course, each resolved through its
// course and location foreign keys, in ScheduleItem table order.
func (c *Catalog) ScheduleOf(course types.Record) ([]Session, error) {
	courseID, ok := course["CourseID"]
	if !ok {
		return nil, fmt.Errorf("%w: course has no CourseID", types.ErrInvalidData)
	}
	items, err := c.r.Select(types.ScheduleItemTable, func(item types.Record) bool {
		return schema.Equal(item["CourseID"], courseID)
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(items))
	for _, item := range items {
		s := Session{Item: item}
		if s.Course, err = c.r.Link(types.ScheduleItemTable, item, fkCourse); err != nil {
			return nil, fmt.Errorf("resolving course of schedule item: %w", err)
		}
		if s.Location, err = c.r.Link(types.ScheduleItemTable, item, fkLocation); err != nil {
			return nil, fmt.Errorf("resolving location of schedule item: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// TeachersOfCourse returns the teachers of course, resolved through the
// CourseTeacher teacher foreign key, in CourseTeacher table order.
func (c *Catalog) TeachersOfCourse(course types.Record) ([]types.Record, error) {
	courseID, ok := course["CourseID"]
	if !ok {
		return nil, fmt.Errorf("%w: course has no CourseID", types.ErrInvalidData)
	}
	links, err := c.r.Select(types.CourseTeacherTable, func(ct types.Record) bool {
		return schema.Equal(ct["CourseID"], courseID)
	})
	if err != nil {
		return nil, err
	}
	teachers := make([]types.Record, 0, len(links))
	for _, ct := range links {
		t, err := c.r.Link(types.CourseTeacherTable, ct, fkTeacher)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, nil
}
