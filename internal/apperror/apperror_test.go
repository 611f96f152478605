package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var errTooMany = errors.New("Cannot select more than 5 courses")

func TestCategoryAndCauseMatching(t *testing.T) {
	wrapped := Wrap(ErrValidation, "TooManyCourses", errTooMany)

	cases := []struct {
		desc   string
		err    error
		target error
		want   bool
	}{
		{"not found category", NotFound("User"), ErrNotFound, true},
		{"validation category", ValidationFailed("email", "All fields are required"), ErrValidation, true},
		{"conflict category", Conflict("User", "email"), ErrConflict, true},
		{"forbidden category", Forbidden("You can only view your own registration"), ErrForbidden, true},
		{"unauthorized category", Unauthorized("Invalid email or password"), ErrUnauthorized, true},
		{"wrapped category", wrapped, ErrValidation, true},
		{"wrapped reason", wrapped, errTooMany, true},
		{"reason through fmt.Errorf", fmt.Errorf("registering: %w", NotFound("User").WithCause(errTooMany)), errTooMany, true},
		{"not found is not validation", NotFound("User"), ErrValidation, false},
		{"validation is not not found", ValidationFailed("name", "too long"), ErrNotFound, false},
		{"no cause attached", Unauthorized("x"), errTooMany, false},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			if got := errors.Is(c.err, c.target); got != c.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", c.err, c.target, got, c.want)
			}
		})
	}
}

func TestClientMessages(t *testing.T) {
	for err, want := range map[*AppError]string{
		NotFound("User"):                                   "User not found",
		ValidationFailed("name", "name is required"):       "name is required",
		Conflict("User", "email"):                          "User with this email already exists",
		Wrap(ErrValidation, "TooManyCourses", errTooMany):  "Cannot select more than 5 courses",
		Forbidden("You can only register courses for you"): "You can only register courses for you",
	} {
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	}
}

func TestUnwrapOrder(t *testing.T) {
	bare := NotFound("User").Unwrap()
	if len(bare) != 1 || bare[0] != ErrNotFound {
		t.Errorf("Unwrap() = %v, want [%v]", bare, ErrNotFound)
	}

	both := Wrap(ErrValidation, "TooManyCourses", errTooMany).Unwrap()
	if len(both) != 2 || both[0] != ErrValidation || both[1] != errTooMany {
		t.Errorf("Unwrap() = %v, want [%v %v]", both, ErrValidation, errTooMany)
	}
}

func TestAsRecoversCodeAndField(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(ErrValidation, "TooManyCourses", errTooMany).WithField("courseSelections"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() did not find *AppError")
	}
	if appErr.Code != "TooManyCourses" || appErr.Field != "courseSelections" {
		t.Errorf("Code, Field = %q, %q; want TooManyCourses, courseSelections", appErr.Code, appErr.Field)
	}
}
