package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Credential and authorization failures. Local login reports the same
// ErrInvalidCredentials for an unknown email and a wrong password so
// responses cannot be used to enumerate accounts.
var (
	ErrDuplicateEmail      = errors.New("user with same email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidID           = errors.New("invalid _id")
	ErrInvalidExternalID   = errors.New("invalid user_id")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ValidationError reports every failing input field, not only the
// first one.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation: " + strings.Join(e.Fields, "; ")
}

// PersistenceError wraps a directory I/O failure. Not retried here;
// the caller surfaces it as a server-side fault.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
