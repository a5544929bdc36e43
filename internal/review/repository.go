package review

import "context"

// Repository persists reviews.
type Repository interface {
	Insert(ctx context.Context, r *Review) error
	// List returns every review, newest first.
	List(ctx context.Context) ([]Review, error)
}
