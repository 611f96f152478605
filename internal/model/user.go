// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered student account.
//
// Email and IDNumber are each unique across all users. PasswordHash is a
// bcrypt hash and never leaves the server. Selections hold the user's current
// registration in submission order; RegisteredAt is nil until the first
// successful save.
type User struct {
	ID           string      `json:"id"        db:"id"`
	FirstName    string      `json:"firstName" db:"first_name"`
	LastName     string      `json:"lastName"  db:"last_name"`
	IDNumber     string      `json:"idNumber"  db:"id_number"`
	Email        string      `json:"email"     db:"email"`
	PasswordHash string      `json:"-"         db:"password_hash"`
	Selections   []Selection `json:"-"         db:"-"`
	RegisteredAt *time.Time  `json:"registrationDate,omitempty" db:"registered_at"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// HasRegistration reports whether the user has saved at least one selection.
func (u *User) HasRegistration() bool {
	return len(u.Selections) > 0
}

// Registration returns the user's saved registration, or nil if there is none.
func (u *User) Registration() *Registration {
	if !u.HasRegistration() {
		return nil
	}
	reg := &Registration{
		UserID:  u.ID,
		Courses: u.Selections,
	}
	if u.RegisteredAt != nil {
		reg.RegisteredAt = *u.RegisteredAt
	}
	return reg
}
