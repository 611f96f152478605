package service

import "errors"

// Domain reasons attached as the Cause of service-level AppErrors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationNotFound = errors.New("No registration found for this user")
)
