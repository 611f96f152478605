package registration

// Reason identifies which rule rejected a selection set.
type Reason string

const (
	ReasonEmptySelection    Reason = "EmptySelection"
	ReasonTooManyCourses    Reason = "TooManyCourses"
	ReasonDuplicateCourse   Reason = "DuplicateCourse"
	ReasonDuplicateLecturer Reason = "DuplicateLecturer"
	ReasonInvalidPairing    Reason = "InvalidPairing"
)

// ValidationError reports the first rule a selection set violated.
//
// Two ValidationErrors match under errors.Is when their reasons are equal,
// so callers compare against the exported sentinels:
//
//	if errors.Is(err, registration.ErrDuplicateCourse) { ... }
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrEmptySelection = &ValidationError{
		Reason:  ReasonEmptySelection,
		Message: "Please select at least one course",
	}
	ErrTooManyCourses = &ValidationError{
		Reason:  ReasonTooManyCourses,
		Message: "Cannot select more than 5 courses",
	}
	ErrDuplicateCourse = &ValidationError{
		Reason:  ReasonDuplicateCourse,
		Message: "Cannot select the same course more than once",
	}
	ErrDuplicateLecturer = &ValidationError{
		Reason:  ReasonDuplicateLecturer,
		Message: "Cannot choose the same lecturer for more than one course",
	}
	ErrInvalidPairing = &ValidationError{
		Reason:  ReasonInvalidPairing,
		Message: "Invalid course and lecturer pairing",
	}
)

func invalidPairing(message string) *ValidationError {
	return &ValidationError{Reason: ReasonInvalidPairing, Message: message}
}
