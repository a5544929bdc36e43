package review

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/placereviews/internal/database"
)

// BunRepository stores reviews in postgres through Bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Insert(ctx context.Context, rev *Review) error {
	row := &database.Review{
		ID:             rev.ID,
		PlaceName:      rev.PlaceName,
		Address:        rev.Address,
		Latitude:       rev.Latitude,
		Longitude:      rev.Longitude,
		Rating:         rev.Rating,
		ImageURL:       rev.ImageURL,
		AuthorEmail:    rev.AuthorEmail,
		TokenIssuedAt:  rev.TokenIssuedAt,
		TokenExpiresAt: rev.TokenExpiresAt,
		CreatedAt:      rev.CreatedAt,
	}

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *BunRepository) List(ctx context.Context) ([]Review, error) {
	var rows []database.Review
	if err := r.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews := make([]Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, Review{
			ID:             rows[i].ID,
			PlaceName:      rows[i].PlaceName,
			Address:        rows[i].Address,
			Latitude:       rows[i].Latitude,
			Longitude:      rows[i].Longitude,
			Rating:         rows[i].Rating,
			ImageURL:       rows[i].ImageURL,
			AuthorEmail:    rows[i].AuthorEmail,
			TokenIssuedAt:  rows[i].TokenIssuedAt,
			TokenExpiresAt: rows[i].TokenExpiresAt,
			CreatedAt:      rows[i].CreatedAt,
		})
	}
	return reviews, nil
}
