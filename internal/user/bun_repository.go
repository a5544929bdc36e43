package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/placereviews/internal/database"
)

// BunRepository stores users in postgres through Bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Create inserts a new user. The unique index on email turns a concurrent
// duplicate into ErrDuplicateEmail.
func (r *BunRepository) Create(ctx context.Context, email string, passwordHash *string, provider string) (*User, error) {
	dbUser := &database.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Provider:     provider,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.db.NewInsert().Model(dbUser).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		Provider:     dbu.Provider,
		CreatedAt:    dbu.CreatedAt,
	}
}
