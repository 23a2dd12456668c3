package repo

import (
	"context"
	"errors"

	"github.com/tazhibayda/identity-service/internal/domain"
)

var (
	// ErrDuplicateEmail is returned by Create when another record
	// already holds the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned by Update when the id does not exist.
	ErrNotFound = errors.New("user not found")
)

// UserUpdate is a partial write. Nil fields are left untouched; a
// non-nil pointer writes its value, so clearing a field means pointing
// at the zero value.
type UserUpdate struct {
	ExternalID   *string
	Name         *string
	PasswordHash *string
	AuthType     *domain.AuthType
	SessionToken *string
	IsLoggedIn   *bool
}

// UserStore is the directory contract the auth core depends on. Finds
// return (nil, nil) when no record matches. Implementations guarantee
// single-record atomicity: a concurrent Update and Find on the same id
// never observe a half-written record.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (string, error)
	Update(ctx context.Context, id string, upd UserUpdate) error
}
