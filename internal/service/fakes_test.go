package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/course-registration/internal/apperror"
	"github.com/sakif/course-registration/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository. It enforces the
// same uniqueness rules as the SQL store.
type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	// set to a non-nil error to simulate a database failure
	getErr     error
	replaceErr error

	// createConflict makes Create fail with a conflict on this field, as if
	// another sign-up won the race after the pre-checks passed
	createConflict string

	replaceCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createConflict != "" {
		return apperror.Conflict("User", f.createConflict)
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("User", "email")
		}
		if u.IDNumber == user.IDNumber {
			return apperror.Conflict("User", "idNumber")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	copied := *u
	copied.Selections = append([]model.Selection(nil), u.Selections...)
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (f *fakeUserRepo) ExistsByIDNumber(_ context.Context, idNumber string) (bool, error) {
	for _, u := range f.users {
		if u.IDNumber == idNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ReplaceSelections(_ context.Context, userID string, selections []model.Selection, at time.Time) error {
	f.replaceCalls++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("User")
	}
	u.Selections = append([]model.Selection(nil), selections...)
	u.RegisteredAt = &at
	return nil
}

// fakeCatalog serves a fixed catalog or a fixed error.
type fakeCatalog struct {
	catalog *model.Catalog
	err     error
}

func (f *fakeCatalog) LoadCatalog(context.Context) (*model.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
