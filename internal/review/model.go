package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a place review written by an authenticated user. AuthorEmail and
// the token timestamps always come from the caller's verified session.
type Review struct {
	ID             uuid.UUID  `json:"id"`
	PlaceName      string     `json:"place_name"`
	Address        string     `json:"address"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Rating         int        `json:"rating"`
	ImageURL       *string    `json:"image_url,omitempty"`
	AuthorEmail    string     `json:"author_email"`
	TokenIssuedAt  *time.Time `json:"token_issued_at,omitempty"`
	TokenExpiresAt time.Time  `json:"token_expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewReview is the client-supplied part of a review.
type NewReview struct {
	PlaceName string
	Address   string
	Latitude  float64
	Longitude float64
	Rating    int
	ImageURL  *string
}
