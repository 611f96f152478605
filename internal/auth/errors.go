package auth

import "errors"

// Authentication failures surfaced by the service layer. They travel as the
// Cause of an *apperror.AppError so handlers can map the category while
// tests can still check the exact reason.
var (
	ErrDuplicateEmail     = errors.New("User with this email already exists")
	ErrDuplicateIDNumber  = errors.New("User with this ID number already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

// Token failures returned by TokenService.
var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenRevoked = errors.New("auth: token revoked")
)
