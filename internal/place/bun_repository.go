package place

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/placereviews/internal/database"
)

// BunRepository stores places in postgres through Bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Insert(ctx context.Context, p *Place) error {
	row := &database.Place{
		ID:         p.ID,
		Name:       p.Name,
		Address:    p.Address,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		OwnerEmail: p.OwnerEmail,
		CreatedAt:  p.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

func (r *BunRepository) List(ctx context.Context) ([]Place, error) {
	var rows []database.Place
	if err := r.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	places := make([]Place, 0, len(rows))
	for _, row := range rows {
		places = append(places, Place{
			ID:         row.ID,
			Name:       row.Name,
			Address:    row.Address,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
			OwnerEmail: row.OwnerEmail,
			CreatedAt:  row.CreatedAt,
		})
	}
	return places, nil
}
