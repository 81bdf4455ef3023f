package services

import "errors"

// Sentinel errors for the failure classes handlers care about.
var (
	ErrInvalidCredentials = errors.New("username or password is incorrect")
	ErrAccountDisabled    = errors.New("that user account has been disabled")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError is a recoverable form-field failure. It carries the
// message shown next to the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
