package model

import "slices"

// Course is a catalog entry. Code is the stable key (e.g. "CS101") and is
// sent to clients as "id".
type Course struct {
	Code string `json:"id"   yaml:"id"   db:"code"`
	Name string `json:"name" yaml:"name" db:"name"`
}

// Lecturer is a catalog entry together with the course codes they may teach.
type Lecturer struct {
	ID      int64    `json:"id"      yaml:"id"      db:"id"`
	Name    string   `json:"name"    yaml:"name"    db:"name"`
	Courses []string `json:"courses" yaml:"courses" db:"-"`
}

// Teaches reports whether the lecturer is eligible for the given course.
func (l *Lecturer) Teaches(courseCode string) bool {
	return slices.Contains(l.Courses, courseCode)
}

// Catalog is the full reference data set: courses sorted by code and
// lecturers sorted by id.
type Catalog struct {
	Courses   []Course   `json:"courses"   yaml:"courses"`
	Lecturers []Lecturer `json:"lecturers" yaml:"lecturers"`
}

// Course looks up a course by code.
func (c *Catalog) Course(code string) (Course, bool) {
	for _, course := range c.Courses {
		if course.Code == code {
			return course, true
		}
	}
	return Course{}, false
}

// Lecturer looks up a lecturer by id.
func (c *Catalog) Lecturer(id int64) (Lecturer, bool) {
	for _, l := range c.Lecturers {
		if l.ID == id {
			return l, true
		}
	}
	return Lecturer{}, false
}

// Empty reports whether the catalog has no courses.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Courses) == 0
}
