package services

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the service layer. Handlers translate these to
// HTTP status codes; anything else is treated as an internal error.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateEmail     = errors.New("email is already taken")
	ErrDuplicateSlug      = errors.New("slug is already taken")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure
// on the given column (e.g. "users.username").
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
