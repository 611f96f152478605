package model

import "time"

// SelectionInput is one (course, lecturer) pair as submitted by a client,
// before it has been checked against the catalog.
type SelectionInput struct {
	CourseID   string `json:"courseId"`
	LecturerID int64  `json:"lecturerId"`
}

// Selection is a validated pair, denormalized with display names at write
// time so a summary can be rendered without consulting the catalog.
type Selection struct {
	CourseID     string `json:"courseId"     db:"course_code"`
	CourseName   string `json:"courseName"   db:"course_name"`
	LecturerID   int64  `json:"lecturerId"   db:"lecturer_id"`
	LecturerName string `json:"lecturerName" db:"lecturer_name"`
}

// Registration is a user's committed selection set.
type Registration struct {
	UserID       string      `json:"userId"`
	Courses      []Selection `json:"courses"`
	RegisteredAt time.Time   `json:"registrationDate"`
}
