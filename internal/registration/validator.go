// Package registration holds the rules a student's course selection must
// satisfy before it can be saved.
//
// Validate is a pure function over a catalog snapshot: it never touches
// storage, so the service layer decides when the catalog is loaded and when
// the result is persisted.
//
// RULE ORDER:
// Rules run in a fixed order and the first violation is returned:
//  1. at least one selection
//  2. at most MaxSelections selections
//  3. no course twice
//  4. no lecturer twice
//  5. every course and lecturer exists and the lecturer teaches the course
//
// The order is observable: [{CS101,1},{MA201,1}] reports the duplicate
// lecturer even though lecturer 1 does not teach MA201 either.
package registration

import (
	"fmt"

	"github.com/sakif/course-registration/internal/model"
)

// MaxSelections is the most courses one student may register for.
const MaxSelections = 5

// Validate checks selections against the catalog. On success it returns the
// selections in their original order, enriched with course and lecturer
// names. On failure the error is a *ValidationError.
func Validate(selections []model.SelectionInput, catalog *model.Catalog) ([]model.Selection, error) {
	if len(selections) == 0 {
		return nil, ErrEmptySelection
	}
	if len(selections) > MaxSelections {
		return nil, ErrTooManyCourses
	}

	seenCourses := make(map[string]struct{}, len(selections))
	for _, s := range selections {
		if _, dup := seenCourses[s.CourseID]; dup {
			return nil, ErrDuplicateCourse
		}
		seenCourses[s.CourseID] = struct{}{}
	}

	seenLecturers := make(map[int64]struct{}, len(selections))
	for _, s := range selections {
		if _, dup := seenLecturers[s.LecturerID]; dup {
			return nil, ErrDuplicateLecturer
		}
		seenLecturers[s.LecturerID] = struct{}{}
	}

	idx := newIndex(catalog)
	validated := make([]model.Selection, 0, len(selections))
	for _, s := range selections {
		course, ok := idx.courses[s.CourseID]
		if !ok {
			return nil, invalidPairing(fmt.Sprintf("Course %s does not exist", s.CourseID))
		}
		lecturer, ok := idx.lecturers[s.LecturerID]
		if !ok {
			return nil, invalidPairing(fmt.Sprintf("Lecturer %d does not exist", s.LecturerID))
		}
		if !lecturer.Teaches(course.Code) {
			return nil, invalidPairing(fmt.Sprintf("%s does not teach %s", lecturer.Name, course.Name))
		}

		validated = append(validated, model.Selection{
			CourseID:     course.Code,
			CourseName:   course.Name,
			LecturerID:   lecturer.ID,
			LecturerName: lecturer.Name,
		})
	}

	return validated, nil
}

// index is a lookup view over a catalog, built once per Validate call.
type index struct {
	courses   map[string]model.Course
	lecturers map[int64]*model.Lecturer
}

func newIndex(catalog *model.Catalog) index {
	idx := index{
		courses:   make(map[string]model.Course),
		lecturers: make(map[int64]*model.Lecturer),
	}
	if catalog == nil {
		return idx
	}
	for _, c := range catalog.Courses {
		idx.courses[c.Code] = c
	}
	for i := range catalog.Lecturers {
		l := &catalog.Lecturers[i]
		idx.lecturers[l.ID] = l
	}
	return idx
}
