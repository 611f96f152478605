package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/course-registration/internal/apperror"
	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, first_name, last_name, id_number, email, password_hash,
	registered_at, created_at, updated_at`

// selectionRow is one row of user_selections.
type selectionRow struct {
	UserID   string `db:"user_id"`
	Position int    `db:"position"`
	model.Selection
}

// Create inserts a new user, assigning its ID and timestamps.
//
// A duplicate email or ID number is reported as an apperror conflict with
// Field set to "email" or "idNumber". The UNIQUE constraints are the final
// word here, so two racing registrations cannot both succeed.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, id_number, email, password_hash, created_at, updated_at)
		 VALUES (:id, :first_name, :last_name, :id_number, :email, :password_hash, :created_at, :updated_at)`,
		user,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch {
			case strings.Contains(constraint, "email"):
				return apperror.Conflict("User", "email")
			case strings.Contains(constraint, "id_number"):
				return apperror.Conflict("User", "idNumber")
			}
			return apperror.Conflict("User", "id")
		}
		return fmt.Errorf("sqldb: inserting user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user and their current selections.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetByEmail retrieves a user by (already normalized) email.
// Returns apperror.ErrNotFound if no user has that email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, "email", email)
}

// ExistsByIDNumber reports whether any user holds the given ID number.
func (db *DB) ExistsByIDNumber(ctx context.Context, idNumber string) (bool, error) {
	var count int
	err := db.conn.GetContext(ctx, &count,
		db.rebind(`SELECT COUNT(*) FROM users WHERE id_number = ?`), idNumber)
	if err != nil {
		return false, fmt.Errorf("sqldb: checking id number: %w", err)
	}
	return count > 0, nil
}

// getUser loads the user row and its selections in one transaction, so the
// selection list always matches the registration timestamp.
func (db *DB) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &u,
			db.rebind(`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value)
		if err != nil {
			return err
		}

		var rows []selectionRow
		err = tx.SelectContext(ctx, &rows, db.rebind(
			`SELECT user_id, position, course_code, course_name, lecturer_id, lecturer_name
			 FROM user_selections WHERE user_id = ? ORDER BY position`), u.ID)
		if err != nil {
			return err
		}

		u.Selections = make([]model.Selection, 0, len(rows))
		for _, r := range rows {
			u.Selections = append(u.Selections, r.Selection)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqldb: getting user by %s: %w", column, err)
	}

	return &u, nil
}

// ReplaceSelections swaps the user's whole selection list and stamps the
// registration time in a single transaction. Readers see either the old
// list or the new one, never a mix. If the user does not exist nothing is
// written and an apperror not-found is returned.
func (db *DB) ReplaceSelections(ctx context.Context, userID string, selections []model.Selection, at time.Time) error {
	at = at.UTC()

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			db.rebind(`UPDATE users SET registered_at = ?, updated_at = ? WHERE id = ?`),
			at, at, userID)
		if err != nil {
			return fmt.Errorf("stamping registration: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("User")
		}

		if _, err := tx.ExecContext(ctx,
			db.rebind(`DELETE FROM user_selections WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("clearing selections: %w", err)
		}

		if len(selections) == 0 {
			return nil
		}

		rows := make([]selectionRow, len(selections))
		for i, s := range selections {
			rows[i] = selectionRow{UserID: userID, Position: i, Selection: s}
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO user_selections (user_id, position, course_code, course_name, lecturer_id, lecturer_name)
			 VALUES (:user_id, :position, :course_code, :course_name, :lecturer_id, :lecturer_name)`,
			rows,
		)
		if err != nil {
			return fmt.Errorf("inserting selections: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("sqldb: replacing selections for user %s: %w", userID, err)
	}

	return nil
}
