package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash *string   `bun:"password_hash"`
	Provider     string    `bun:"provider,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// Review is the reviews table row.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	PlaceName      string     `bun:"place_name,notnull"`
	Address        string     `bun:"address,notnull"`
	Latitude       float64    `bun:"latitude,notnull"`
	Longitude      float64    `bun:"longitude,notnull"`
	Rating         int        `bun:"rating,notnull"`
	ImageURL       *string    `bun:"image_url"`
	AuthorEmail    string     `bun:"author_email,notnull"`
	TokenIssuedAt  *time.Time `bun:"token_issued_at"`
	TokenExpiresAt time.Time  `bun:"token_expires_at,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
}

// Place is the places table row.
type Place struct {
	bun.BaseModel `bun:"table:places,alias:p"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	Name       string    `bun:"name,notnull"`
	Address    string    `bun:"address,notnull"`
	Latitude   float64   `bun:"latitude,notnull"`
	Longitude  float64   `bun:"longitude,notnull"`
	OwnerEmail string    `bun:"owner_email,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}
