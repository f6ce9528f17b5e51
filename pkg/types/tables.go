package types

// Table names of the course catalog that ships as the seed schema set.
const (
	CourseCategoryTable = "CourseCategory"
	CourseTable         = "Course"
	TeacherTable        = "Teacher"
	CourseTeacherTable  = "CourseTeacher"
	LocationTable       = "Location"
	ScheduleItemTable   = "ScheduleItem"
	NewsTable           = "News"
)

// SeedTableNames lists the seed tables in dependency order: every table
// appears after the tables its foreign keys reference.
var SeedTableNames = []string{
	CourseCategoryTable,
	CourseTable,
	TeacherTable,
	CourseTeacherTable,
	LocationTable,
	ScheduleItemTable,
	NewsTable,
}
