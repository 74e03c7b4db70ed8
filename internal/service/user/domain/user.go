// internal/service/user/domain/user.go
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrConflict   = errors.New("email already registered")
	ErrValidation = errors.New("validation failed")
)

// User is an account record. PasswordHash is opaque to this service's API:
// it is written at registration and never serialized back out.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

func NewUser(email, fullName, passwordHash string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Wrap(ErrValidation, "a valid email is required")
	}
	if passwordHash == "" {
		return nil, errors.Wrap(ErrValidation, "password is required")
	}
	return &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
}
