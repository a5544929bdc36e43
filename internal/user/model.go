package user

import (
	"time"

	"github.com/google/uuid"
)

// Providers an account can be created through.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	// PasswordHash is nil for accounts that can only sign in through a federated provider.
	PasswordHash *string   `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasPassword reports whether the account can sign in with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
