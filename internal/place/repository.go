package place

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Place) error
	// List returns every place, newest first.
	List(ctx context.Context) ([]Place, error)
}
