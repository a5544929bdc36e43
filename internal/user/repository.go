package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository is the credential store. Every method is a single point lookup or
// insert. Create must return ErrDuplicateEmail when the store's uniqueness
// constraint rejects the email, including when a concurrent request won the race.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, email string, passwordHash *string, provider string) (*User, error)
}
