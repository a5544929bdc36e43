package place

import (
	"time"

	"github.com/google/uuid"
)

// Place is a location registered by an authenticated user.
type Place struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
}

type NewPlace struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}
